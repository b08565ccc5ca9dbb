package factory

import (
	"errors"
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/archetypes"
	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/level"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/tags"
	"github.com/automoto/tileworld/tuner"
)

// Hitbox sizes in world pixels.
var (
	PlayerSize = math.Vec2{X: 12, Y: 28}
	PortalSize = math.Vec2{X: 16, Y: 32}
	TurretSize = math.Vec2{X: 16, Y: 16}
)

// Spawner builds level entities through the registry and gives them bodies
// through the tuner.
type Spawner struct {
	reg      *registry.Registry
	tuner    *tuner.Tuner
	material physics.Material
	log      *zap.Logger
}

var _ level.Spawner = (*Spawner)(nil)

func NewSpawner(reg *registry.Registry, tn *tuner.Tuner, logger *zap.Logger) *Spawner {
	return &Spawner{
		reg:   reg,
		tuner: tn,
		material: physics.Material{
			Density:     config.Physics.Density,
			Friction:    config.Physics.Friction,
			Restitution: config.Physics.Restitution,
		},
		log: logging.OrNop(logger),
	}
}

// TileBodyOptions returns the body of one mini tile. Indestructible tiles
// never move. Tiles of non-collidable layers collide with nothing.
func TileBodyOptions(opts level.SpawnTileOptions, m physics.Material) physics.BodyOptions {
	body := physics.DefaultOptions()
	body.Material = m
	body.Shape = physics.ShapeBox
	body.Motion = physics.MotionManual
	if opts.Destructible && opts.Dynamic {
		body.Motion = physics.MotionGravity
	}
	body.Angle = physics.AngleFree
	body.Filter = physics.CollisionFilter{Category: tags.CategoryTerrain, CollideWith: physics.AllCategories}
	if !opts.Collidable {
		body.Filter.CollideWith = 0
	}
	body.Hitbox = physics.Hitbox{Size: opts.BodySize}
	return body
}

// PlayerBodyOptions returns an upright capsule with a ground sensor under it.
func PlayerBodyOptions(m physics.Material) physics.BodyOptions {
	body := physics.DefaultOptions()
	body.Material = m
	body.Shape = physics.ShapeCapsule
	body.Sensor = physics.SensorThinBelow
	body.Motion = physics.MotionGravity
	body.Angle = physics.AngleFixed
	body.Filter = physics.CollisionFilter{Category: tags.CategoryPlayer, CollideWith: physics.AllCategories}
	body.Hitbox = physics.Hitbox{Size: PlayerSize}
	return body
}

// PortalBodyOptions returns a static box that only players touch.
func PortalBodyOptions(m physics.Material) physics.BodyOptions {
	body := physics.DefaultOptions()
	body.Material = m
	body.Motion = physics.MotionManual
	body.Filter = physics.CollisionFilter{Category: tags.CategoryPortal, CollideWith: tags.CategoryPlayer}
	body.Hitbox = physics.Hitbox{Size: PortalSize}
	return body
}

// TurretBodyOptions returns a static box.
func TurretBodyOptions(m physics.Material) physics.BodyOptions {
	body := physics.DefaultOptions()
	body.Material = m
	body.Motion = physics.MotionManual
	body.Filter = physics.CollisionFilter{Category: tags.CategoryTurret, CollideWith: physics.AllCategories}
	body.Hitbox = physics.Hitbox{Size: TurretSize}
	return body
}

func (s *Spawner) SpawnTile(worldPos, size math.Vec2, src level.TileSource, opts level.SpawnTileOptions) (donburi.Entity, error) {
	tile := archetypes.Tile.Spawn(s.reg, "miniTile")
	components.Tile.SetValue(tile, components.TileData{
		Layer:        opts.Layer,
		Destructible: opts.Destructible,
		Col:          opts.Cell.X,
		Row:          opts.Cell.Y,
		MiniCol:      opts.Mini.X,
		MiniRow:      opts.Mini.Y,
	})
	components.Render.SetValue(tile, components.RenderData{
		Texture: src.Texture,
		Src:     src.Rect,
		Size:    size,
		ZOrder:  opts.ZOrder,
	})
	return s.attachBody(tile, worldPos, TileBodyOptions(opts, s.material))
}

func (s *Spawner) SpawnPlayer(worldPos math.Vec2, name string) (donburi.Entity, error) {
	player := archetypes.Player.Spawn(s.reg, label("player", name))
	components.Player.SetValue(player, components.PlayerData{Name: name})
	return s.attachBody(player, worldPos, PlayerBodyOptions(s.material))
}

func (s *Spawner) SpawnPortal(worldPos math.Vec2, name string) (donburi.Entity, error) {
	portal := archetypes.Portal.Spawn(s.reg, label("portal", name))
	components.SpawnPoint.SetValue(portal, components.SpawnPointData{Kind: tags.ObjectPortal, Name: name})
	return s.attachBody(portal, worldPos, PortalBodyOptions(s.material))
}

func (s *Spawner) SpawnTurret(worldPos math.Vec2, name string) (donburi.Entity, error) {
	turret := archetypes.Turret.Spawn(s.reg, label("turret", name))
	components.SpawnPoint.SetValue(turret, components.SpawnPointData{Kind: tags.ObjectTurret, Name: name})
	return s.attachBody(turret, worldPos, TurretBodyOptions(s.material))
}

// attachBody gives entry a body. A rejected option is a programming error
// and panics. Any other failure destroys the entity and is returned.
func (s *Spawner) attachBody(entry *donburi.Entry, worldPos math.Vec2, opts physics.BodyOptions) (donburi.Entity, error) {
	if _, err := s.tuner.CreatePhysicsBody(entry, worldPos, 0, opts); err != nil {
		name := s.reg.NameOf(entry.Entity())
		s.reg.Destroy(entry.Entity())
		if errors.Is(err, physics.ErrUnknownOption) {
			panic(fmt.Sprintf("factory: %s: %v", name, err))
		}
		var none donburi.Entity
		return none, err
	}
	return entry.Entity(), nil
}

func label(kind, name string) string {
	if name == "" {
		return kind
	}
	return kind + ":" + name
}
