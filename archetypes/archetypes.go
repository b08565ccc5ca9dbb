package archetypes

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/tags"
)

var (
	Tile = newArchetype(
		tags.Tile,
		components.Tile,
		components.Render,
	)
	Player = newArchetype(
		tags.Player,
		components.Player,
	)
	Portal = newArchetype(
		tags.Portal,
		components.SpawnPoint,
	)
	Turret = newArchetype(
		tags.Turret,
		components.SpawnPoint,
	)
	Level = newArchetype(
		components.Level,
	)
	Camera = newArchetype(
		components.Camera,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

// Spawn creates an entity with the archetype's components plus cs, labelled
// for the registry's debug names.
func (a *archetype) Spawn(reg *registry.Registry, label string, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(a.components)+len(cs))
	all = append(all, a.components...)
	all = append(all, cs...)
	return reg.Create(label, all...)
}
