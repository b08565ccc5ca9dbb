package level

import (
	"image"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/assets"
)

// TileSource is the part of the tileset a mini tile is drawn from.
type TileSource struct {
	Texture assets.Texture
	Rect    image.Rectangle
}

// SpawnTileOptions tells the spawner how to build one mini tile.
type SpawnTileOptions struct {
	Layer        string
	Collidable   bool // false builds a body that collides with nothing
	Destructible bool
	Dynamic      bool // start as a dynamic body instead of a static one
	ZOrder       int

	// BodySize is the physical size in world pixels. It is the rendered size
	// minus the configured gap.
	BodySize math.Vec2

	Cell image.Point // tile cell in the layer
	Mini image.Point // mini tile inside the cell
}

// Spawner creates the entities a level is made of. Positions are in world
// pixels.
type Spawner interface {
	SpawnTile(worldPos, size math.Vec2, src TileSource, opts SpawnTileOptions) (donburi.Entity, error)
	SpawnPlayer(worldPos math.Vec2, name string) (donburi.Entity, error)
	SpawnPortal(worldPos math.Vec2, name string) (donburi.Entity, error)
	SpawnTurret(worldPos math.Vec2, name string) (donburi.Entity, error)
}

// Resources provides tileset images. Texture is used for drawing, Surface
// for reading pixels.
type Resources interface {
	Texture(path string) (assets.Texture, error)
	Surface(path string) (image.Image, error)
}
