// Package registry wraps entity creation and destruction so every entity has
// a debug name and every physics object is released with its entity.
package registry

import (
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
)

const removedPrefix = "REMOVED FROM REGISTRY. Last name was: "

// Registry creates and destroys entities in one donburi world. Every entity
// it creates carries components.Name with its label.
type Registry struct {
	world donburi.World
	// last label of entities that are no longer alive, kept until the next
	// physics audit
	removed map[donburi.Entity]string
	log     *zap.Logger
}

// New returns a registry over world.
func New(world donburi.World, logger *zap.Logger) *Registry {
	return &Registry{
		world:   world,
		removed: make(map[donburi.Entity]string),
		log:     logging.OrNop(logger),
	}
}

// World returns the underlying donburi world.
func (r *Registry) World() donburi.World { return r.world }

// Create adds an entity labelled label with components.Name plus cs.
func (r *Registry) Create(label string, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(cs)+1)
	all = append(all, components.Name)
	for _, c := range cs {
		if c != components.Name {
			all = append(all, c)
		}
	}
	entry := r.world.Entry(r.world.Create(all...))
	components.Name.SetValue(entry, components.NameData{Label: label})
	r.log.Debug("entity created", zap.String("name", label), zap.Any("entity", entry.Entity()))
	return entry
}

// Destroy releases the entity's physics object, if any, and removes the
// entity. Destroying an invalid entity only logs a warning.
func (r *Registry) Destroy(e donburi.Entity) {
	if !r.world.Valid(e) {
		r.log.Warn("destroy of invalid entity ignored",
			zap.Any("entity", e),
			zap.String("name", r.NameOf(e)))
		return
	}

	entry := r.world.Entry(e)
	if entry.HasComponent(components.Physics) {
		if obj := components.Physics.Get(entry).Object; obj != nil {
			obj.Release()
		}
	}
	r.removed[e] = label(entry)
	r.world.Remove(e)
}

// DestroyWith destroys every entity that has component c and returns how many
// were destroyed.
func (r *Registry) DestroyWith(c donburi.IComponentType) int {
	var doomed []donburi.Entity
	donburi.NewQuery(filter.Contains(c)).Each(r.world, func(entry *donburi.Entry) {
		doomed = append(doomed, entry.Entity())
	})
	for _, e := range doomed {
		r.Destroy(e)
	}
	return len(doomed)
}

// Valid reports whether e is alive.
func (r *Registry) Valid(e donburi.Entity) bool {
	return r.world.Valid(e)
}

// NameOf returns the label of a live entity, or a marker with the last label
// of an entity that was destroyed through the registry.
func (r *Registry) NameOf(e donburi.Entity) string {
	if r.world.Valid(e) {
		return label(r.world.Entry(e))
	}
	return removedPrefix + r.removed[e]
}

// Census counts live labelled entities by label.
func (r *Registry) Census() map[string]int {
	census := make(map[string]int)
	components.Name.Each(r.world, func(entry *donburi.Entry) {
		census[components.Name.Get(entry).Label]++
	})
	return census
}

func label(entry *donburi.Entry) string {
	if !entry.HasComponent(components.Name) {
		return ""
	}
	return components.Name.Get(entry).Label
}

// LogCensus logs the live entity count per label at debug level.
func (r *Registry) LogCensus() {
	census := r.Census()
	labels := make([]string, 0, len(census))
	for label := range census {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		r.log.Debug("entity census", zap.String("name", label), zap.Int("count", census[label]))
	}
}

// AuditPhysics compares the live physics object count against baseline and
// returns the difference. A nonzero residual is logged as a leak.
func (r *Registry) AuditPhysics(baseline int64) int64 {
	residual := physics.LiveObjects() - baseline
	if residual != 0 {
		r.log.Warn("physics objects still alive",
			zap.Int64("residual", residual),
			zap.Int64("baseline", baseline))
	} else {
		r.log.Debug("all physics objects were destroyed")
	}
	// Names of entities removed before this point are no longer useful.
	clear(r.removed)
	return residual
}
