// Package tuner creates physics bodies for entities and applies body options
// to them one facet at a time.
package tuner

import (
	"errors"
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
)

// ErrNoBody is returned by Apply for entities without a physics object.
var ErrNoBody = errors.New("tuner: entity has no physics body")

type Tuner struct {
	world *physics.World
	log   *zap.Logger
}

func New(world *physics.World, logger *zap.Logger) *Tuner {
	return &Tuner{
		world: world,
		log:   logging.OrNop(logger),
	}
}

// CreatePhysicsBody creates a body at worldPos for entry, tags it with the
// entity, stores it in components.Physics and applies opts. A body already
// attached to entry is released first.
func (t *Tuner) CreatePhysicsBody(entry *donburi.Entry, worldPos math.Vec2, angle float64, opts physics.BodyOptions) (*physics.Object, error) {
	if entry.HasComponent(components.Physics) {
		if old := components.Physics.Get(entry).Object; old != nil {
			old.Release()
		}
	} else {
		entry.AddComponent(components.Physics)
	}

	pos := t.world.Transformer().WorldToPhysics(worldPos)
	obj := t.world.NewObject(pos, angle, entry.Entity())
	components.Physics.SetValue(entry, components.PhysicsData{Object: obj, Options: opts})

	if err := physics.Configure(obj, opts); err != nil {
		obj.Release()
		components.Physics.SetValue(entry, components.PhysicsData{})
		return nil, fmt.Errorf("create body for entity %v: %w", entry.Entity(), err)
	}
	return obj, nil
}

// Apply sets one facet of the entity's body options and returns the new
// snapshot.
func (t *Tuner) Apply(entry *donburi.Entry, opt physics.Option) (physics.BodyOptions, error) {
	if !entry.HasComponent(components.Physics) {
		return physics.BodyOptions{}, ErrNoBody
	}
	data := components.Physics.Get(entry)
	if data.Object == nil {
		return data.Options, ErrNoBody
	}

	next, err := physics.ApplyOption(data.Object, data.Options, opt)
	if err != nil {
		t.log.Debug("body option rejected", zap.Any("entity", entry.Entity()), zap.Error(err))
		return data.Options, err
	}
	data.Options = next
	return next, nil
}

// Options returns the options last applied to the entity's body.
func (t *Tuner) Options(entry *donburi.Entry) (physics.BodyOptions, bool) {
	if !entry.HasComponent(components.Physics) {
		return physics.BodyOptions{}, false
	}
	data := components.Physics.Get(entry)
	return data.Options, data.Object != nil
}

// World returns the physics world bodies are created in.
func (t *Tuner) World() *physics.World { return t.world }
