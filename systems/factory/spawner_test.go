package factory

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/level"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/tags"
	"github.com/automoto/tileworld/tuner"
)

func setup() (*Spawner, *registry.Registry) {
	reg := registry.New(donburi.NewWorld(), nil)
	pw := physics.NewWorld(physics.Config{Gravity: 10}, gamemath.NewTransformer(16), nil)
	return NewSpawner(reg, tuner.New(pw, nil), nil), reg
}

func TestTileBodyOptions(t *testing.T) {
	m := physics.Material{Density: 2, Friction: 0.5}
	base := level.SpawnTileOptions{Collidable: true, Destructible: true, BodySize: math.Vec2{X: 7, Y: 7}}

	opts := TileBodyOptions(base, m)
	assert.Equal(t, physics.MotionManual, opts.Motion)
	assert.Equal(t, physics.ShapeBox, opts.Shape)
	assert.Equal(t, m, opts.Material)
	assert.Equal(t, math.Vec2{X: 7, Y: 7}, opts.Hitbox.Size)
	assert.Equal(t, physics.AllCategories, opts.Filter.CollideWith)
	assert.Equal(t, tags.CategoryTerrain, opts.Filter.Category)

	dyn := base
	dyn.Dynamic = true
	assert.Equal(t, physics.MotionGravity, TileBodyOptions(dyn, m).Motion)

	fixed := dyn
	fixed.Destructible = false
	assert.Equal(t, physics.MotionManual, TileBodyOptions(fixed, m).Motion, "indestructible tiles never move")

	ghost := base
	ghost.Collidable = false
	assert.Zero(t, TileBodyOptions(ghost, m).Filter.CollideWith)
}

func TestSpawnTile(t *testing.T) {
	s, reg := setup()
	src := level.TileSource{Texture: image.NewNRGBA(image.Rect(0, 0, 64, 64)), Rect: image.Rect(8, 8, 16, 16)}

	e, err := s.SpawnTile(math.Vec2{X: 32, Y: 16}, math.Vec2{X: 8, Y: 8}, src, level.SpawnTileOptions{
		Layer:        "terrain",
		Collidable:   true,
		Destructible: true,
		ZOrder:       2,
		BodySize:     math.Vec2{X: 8, Y: 8},
		Cell:         image.Pt(3, 1),
		Mini:         image.Pt(1, 0),
	})
	require.NoError(t, err)

	entry := reg.World().Entry(e)
	assert.True(t, entry.HasComponent(tags.Tile))
	assert.Equal(t, "miniTile", reg.NameOf(e))

	tile := components.Tile.Get(entry)
	assert.Equal(t, components.TileData{Layer: "terrain", Destructible: true, Col: 3, Row: 1, MiniCol: 1}, *tile)

	render := components.Render.Get(entry)
	assert.Equal(t, src.Rect, render.Src)
	assert.Equal(t, 2, render.ZOrder)

	obj := components.Physics.Get(entry).Object
	assert.True(t, obj.IsStatic())
	assert.Equal(t, math.Vec2{X: 2, Y: 1}, obj.Position())
	assert.Equal(t, e, obj.Tag())

	reg.Destroy(e)
	assert.False(t, obj.Alive())
}

func TestSpawnObjects(t *testing.T) {
	s, reg := setup()

	p, err := s.SpawnPlayer(math.Vec2{X: 16, Y: 16}, "hero")
	require.NoError(t, err)
	assert.Equal(t, "player:hero", reg.NameOf(p))
	player := reg.World().Entry(p)
	assert.Equal(t, "hero", components.Player.Get(player).Name)
	pobj := components.Physics.Get(player).Object
	assert.True(t, pobj.IsDynamic())
	assert.Len(t, pobj.Sensors(), 1)
	assert.Equal(t, physics.AngleFixed, components.Physics.Get(player).Options.Angle)

	portal, err := s.SpawnPortal(math.Vec2{}, "exit")
	require.NoError(t, err)
	pe := reg.World().Entry(portal)
	assert.Equal(t, components.SpawnPointData{Kind: tags.ObjectPortal, Name: "exit"}, *components.SpawnPoint.Get(pe))
	assert.Equal(t, tags.CategoryPlayer, components.Physics.Get(pe).Object.Filter().Mask)

	turret, err := s.SpawnTurret(math.Vec2{}, "")
	require.NoError(t, err)
	assert.Equal(t, "turret", reg.NameOf(turret))
	assert.True(t, components.Physics.Get(reg.World().Entry(turret)).Object.IsStatic())
}

func TestCreateCamera(t *testing.T) {
	_, reg := setup()
	cam := CreateCamera(reg, math.Vec2{X: 10, Y: 20})
	data := components.Camera.Get(cam)
	assert.Equal(t, math.Vec2{X: 10, Y: 20}, data.Position)
	assert.Positive(t, data.Zoom)
}
