// Package level turns a Tiled map into entities.
//
// Every tile of a configured tile layer is cut into N x N mini tiles. Each
// mini tile with at least one visible pixel becomes an entity with a render
// component and a physics body. Objects in object layers are handed to the
// matching spawn callback. The bodies' positions define the level bounds,
// which are padded by a buffer zone once all layers are parsed.
package level

import (
	"fmt"
	"image"
	"io/fs"
	"math/rand"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/archetypes"
	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/shared/leveldata"
	"github.com/automoto/tileworld/tags"
)

// Config holds the loader parameters.
type Config struct {
	SplitFactor            int
	PhysicalGap            float64   // world pixels
	BufferZone             math.Vec2 // physics units
	DynamicTileProbability float64
	Layers                 map[string]config.TileLayerConfig
}

// ConfigFromGlobals builds a Config from the config package.
func ConfigFromGlobals() Config {
	return Config{
		SplitFactor:            config.Level.TileSplitFactor,
		PhysicalGap:            config.Physics.PhysicalGap,
		BufferZone:             math.Vec2{X: config.Level.BufferZoneX, Y: config.Level.BufferZoneY},
		DynamicTileProbability: config.Level.DynamicTileProbability,
		Layers:                 config.Level.TileLayers,
	}
}

// Deps are the services a Loader works with.
type Deps struct {
	Registry  *registry.Registry
	Physics   *physics.World
	FS        fs.FS // map and tileset files
	Resources Resources
	Spawner   Spawner
	Listener  physics.ContactListener // attached to every recreated world
	Rand      *rand.Rand              // decides which destructible tiles start dynamic
	Logger    *zap.Logger
}

// Stats counts what the last load produced.
type Stats struct {
	Tiles     int // mini tiles created
	Invisible int // mini tiles skipped because all their pixels are transparent
	Objects   int // objects spawned
}

// Loader owns the level currently loaded into the registry.
type Loader struct {
	deps     Deps
	cfg      Config
	baseline int64
	log      *zap.Logger

	state      State
	info       assets.LevelInfo
	bounds     gamemath.Bounds
	stats      Stats
	background assets.Texture
	levelEntry *donburi.Entry
}

// NewLoader returns an idle loader. The current live physics object count is
// taken as the baseline for leak audits.
func NewLoader(deps Deps, cfg Config) *Loader {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.SplitFactor <= 0 {
		cfg.SplitFactor = 1
	}
	return &Loader{
		deps:     deps,
		cfg:      cfg,
		baseline: physics.LiveObjects(),
		log:      logging.OrNop(deps.Logger),
	}
}

func (l *Loader) State() State { return l.state }

// Stats returns the counters of the last load.
func (l *Loader) Stats() Stats { return l.stats }

// Level returns the descriptor of the loaded level.
func (l *Loader) Level() assets.LevelInfo { return l.info }

// Bounds returns the level bounds in physics space.
func (l *Loader) Bounds() gamemath.Bounds { return l.bounds }

// Background returns the background texture of the loaded level, if any.
func (l *Loader) Background() assets.Texture { return l.background }

// LoadMap replaces the current level with the one described by info. On
// error everything created so far is destroyed and the loader is idle again.
func (l *Loader) LoadMap(info assets.LevelInfo) error {
	if err := l.loadMap(info); err != nil {
		l.UnloadMap()
		l.info = assets.LevelInfo{}
		l.background = nil
		return fmt.Errorf("load level %s: %w", info.Name, err)
	}
	return nil
}

func (l *Loader) loadMap(info assets.LevelInfo) error {
	l.recreateWorld()
	l.info = info
	l.stats = Stats{}
	l.background = nil
	l.state = WorldRecreated

	m, err := leveldata.Load(l.deps.FS, info.MapPath)
	if err != nil {
		return err
	}
	if m.ForeignTiles > 0 {
		l.log.Warn("tiles from secondary tilesets are ignored",
			zap.String("path", info.MapPath),
			zap.Int("count", m.ForeignTiles))
	}

	texture, err := l.deps.Resources.Texture(m.TilesetImage)
	if err != nil {
		return fmt.Errorf("tileset texture: %w", err)
	}
	surface, err := l.deps.Resources.Surface(m.TilesetImage)
	if err != nil {
		return fmt.Errorf("tileset surface: %w", err)
	}
	if info.BackgroundPath != "" {
		if l.background, err = l.deps.Resources.Texture(info.BackgroundPath); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	l.state = TilesetResolved

	for _, layer := range m.Layers {
		layerCfg, ok := l.cfg.Layers[layer.Name]
		if !ok {
			l.log.Debug("tile layer ignored", zap.String("layer", layer.Name))
			continue
		}
		if err := l.parseTileLayer(m, layer, layerCfg, texture, surface); err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}
	for _, obj := range m.Objects {
		if err := l.parseObject(obj); err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}
	}
	l.state = LayersParsed

	l.finalizeBounds()
	l.state = BoundsFinalized

	l.logWarnings()
	l.levelEntry = archetypes.Level.Spawn(l.deps.Registry, "level")
	components.Level.SetValue(l.levelEntry, components.LevelData{
		Name:    info.Name,
		MapPath: info.MapPath,
		Bounds:  l.bounds,
	})

	LevelLoadedEvent.Publish(l.deps.Registry.World(), LevelLoaded{
		Name:       info.Name,
		MapPath:    info.MapPath,
		Tiles:      l.stats.Tiles,
		Invisible:  l.stats.Invisible,
		Bounds:     l.bounds,
		Background: l.background,
	})
	l.log.Info("level loaded",
		zap.String("name", info.Name),
		zap.String("path", info.MapPath),
		zap.Int("tiles", l.stats.Tiles),
		zap.Int("objects", l.stats.Objects))
	return nil
}

// UnloadMap destroys the level's entities and returns the number of physics
// objects still alive compared to the loader's baseline.
func (l *Loader) UnloadMap() int64 {
	l.bounds = gamemath.Bounds{}
	l.destroyLevel()
	l.state = Idle
	return l.deps.Registry.AuditPhysics(l.baseline)
}

func (l *Loader) recreateWorld() {
	l.destroyLevel()
	l.deps.Registry.AuditPhysics(l.baseline)
	l.deps.Physics.Recreate()
	l.bounds = gamemath.Bounds{}
	if l.deps.Listener != nil {
		l.deps.Physics.SetContactListener(l.deps.Listener)
	}
}

// destroyLevel removes rendered entities first, then whatever still has a
// body, then the level entity itself.
func (l *Loader) destroyLevel() {
	reg := l.deps.Registry
	reg.DestroyWith(components.Render)
	reg.DestroyWith(components.Physics)
	if l.levelEntry != nil {
		if reg.Valid(l.levelEntry.Entity()) {
			reg.Destroy(l.levelEntry.Entity())
		}
		l.levelEntry = nil
	}
}

func (l *Loader) parseTileLayer(m *leveldata.Map, layer leveldata.TileLayer, layerCfg config.TileLayerConfig, texture assets.Texture, surface image.Image) error {
	n := l.cfg.SplitFactor
	miniW := m.TileWidth / n
	miniH := m.TileHeight / n
	if miniW <= 0 || miniH <= 0 {
		return fmt.Errorf("tile %dx%d cannot be split %d times", m.TileWidth, m.TileHeight, n)
	}
	// Tileset tiles may be larger or smaller than map cells; they are scaled
	// to the cell.
	srcW := m.Tileset.TileWidth / n
	srcH := m.Tileset.TileHeight / n
	if srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("tileset tile %dx%d cannot be split %d times", m.Tileset.TileWidth, m.Tileset.TileHeight, n)
	}
	gap := l.cfg.PhysicalGap
	size := math.Vec2{X: float64(miniW), Y: float64(miniH)}
	bodySize := math.Vec2{X: size.X - gap, Y: size.Y - gap}
	tf := l.deps.Physics.Transformer()

	for row := 0; row < m.Height; row++ {
		for col := 0; col < m.Width; col++ {
			id := m.TileAt(layer, col, row)
			if id == leveldata.Empty {
				continue
			}

			src, err := m.Tileset.TileRect(id)
			if err != nil {
				return fmt.Errorf("tile (%d,%d): %w", col, row, err)
			}
			if !src.In(texture.Bounds()) {
				return fmt.Errorf("tile (%d,%d): tile %d at %v lies outside the %v tileset image", col, row, id, src, texture.Bounds())
			}

			for miniRow := 0; miniRow < n; miniRow++ {
				for miniCol := 0; miniCol < n; miniCol++ {
					mini := miniRect(src, miniCol, miniRow, srcW, srcH)
					if invisible(surface, mini) {
						l.stats.Invisible++
						continue
					}

					worldPos := math.Vec2{
						X: float64(col*m.TileWidth + miniCol*miniW),
						Y: float64(row*m.TileHeight + miniRow*miniH),
					}
					opts := SpawnTileOptions{
						Layer:        layer.Name,
						Collidable:   layerCfg.Collidable,
						Destructible: layerCfg.Destructible,
						Dynamic:      l.rollDynamic(layerCfg),
						ZOrder:       layerCfg.ZOrder,
						BodySize:     bodySize,
						Cell:         image.Pt(col, row),
						Mini:         image.Pt(miniCol, miniRow),
					}
					if _, err := l.deps.Spawner.SpawnTile(worldPos, size, TileSource{Texture: texture, Rect: mini}, opts); err != nil {
						return fmt.Errorf("tile (%d,%d): %w", col, row, err)
					}

					l.bounds = l.bounds.Extend(tf.WorldToPhysics(worldPos))
					l.stats.Tiles++
				}
			}
		}
	}
	return nil
}

func (l *Loader) rollDynamic(layerCfg config.TileLayerConfig) bool {
	if !layerCfg.Destructible || l.cfg.DynamicTileProbability <= 0 {
		return false
	}
	return l.deps.Rand.Float64() < l.cfg.DynamicTileProbability
}

func (l *Loader) parseObject(obj leveldata.Object) error {
	pos := math.Vec2{X: obj.X, Y: obj.Y}
	sp := l.deps.Spawner

	var err error
	switch obj.Type {
	case tags.ObjectPlayer, tags.ObjectPlayerPosition:
		_, err = sp.SpawnPlayer(pos, obj.Name)
	case tags.ObjectPortal:
		_, err = sp.SpawnPortal(pos, obj.Name)
	case tags.ObjectTurret:
		_, err = sp.SpawnTurret(pos, obj.Name)
	default:
		l.log.Debug("object ignored",
			zap.String("name", obj.Name),
			zap.String("type", obj.Type),
			zap.String("group", obj.Group))
		return nil
	}
	if err != nil {
		return err
	}
	l.stats.Objects++
	return nil
}

func (l *Loader) finalizeBounds() {
	l.log.Debug("level bounds",
		zap.Any("min", l.bounds.Min),
		zap.Any("max", l.bounds.Max),
		zap.Bool("empty", !l.bounds.Valid))
	l.bounds = l.bounds.Pad(l.cfg.BufferZone)
	l.log.Debug("level bounds with buffer zone",
		zap.Any("min", l.bounds.Min),
		zap.Any("max", l.bounds.Max),
		zap.Bool("empty", !l.bounds.Valid))
}

func (l *Loader) logWarnings() {
	if l.stats.Invisible > 0 {
		l.log.Warn("tiles with invisible pixels",
			zap.Int("invisible", l.stats.Invisible),
			zap.Int("created", l.stats.Tiles))
	}
	if l.stats.Tiles == 0 {
		l.log.Warn("no tiles were created during map loading", zap.String("path", l.info.MapPath))
		if l.stats.Invisible > 0 {
			l.log.Warn("all tiles are invisible")
		}
	}
}
