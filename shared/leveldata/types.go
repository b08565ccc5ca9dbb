// Package leveldata decodes Tiled TMX maps into plain data.
// It has no dependencies on ebitengine, donburi, or cp. Pure data only.
package leveldata

import (
	"errors"
	"fmt"
	"image"

	"github.com/lafriks/go-tiled"
)

// ErrTileOutOfRange is returned by TileRect for ids the tileset does not hold.
var ErrTileOutOfRange = errors.New("tile id outside tileset")

// Empty marks a cell without a tile.
const Empty = -1

// Map is the part of a TMX document the level loader consumes.
type Map struct {
	Path       string
	Width      int // in cells
	Height     int
	TileWidth  int // in pixels
	TileHeight int

	// TilesetImage is the first tileset's image, relative to the FS root.
	TilesetImage string
	Tileset      Tileset

	Layers  []TileLayer
	Objects []Object

	// ForeignTiles counts cells that reference a tileset other than the
	// first one. They are stored as Empty.
	ForeignTiles int
}

// Tileset is the grid of the first tileset. Its tile size may differ from
// the map's.
type Tileset struct {
	TileWidth  int
	TileHeight int
	Margin     int
	Spacing    int
	Columns    int
	TileCount  int

	source *tiled.Tileset
}

// TileRect returns the pixel rectangle of local tile id inside the tileset
// image, honouring margin, spacing and column count.
func (t Tileset) TileRect(id int) (image.Rectangle, error) {
	if t.source == nil {
		return image.Rectangle{}, errors.New("tileset not loaded")
	}
	if id < 0 || (t.TileCount > 0 && id >= t.TileCount) {
		return image.Rectangle{}, fmt.Errorf("%w: %d of %d", ErrTileOutOfRange, id, t.TileCount)
	}
	return t.source.GetTileRect(uint32(id)), nil
}

// TileLayer holds local tile ids in row-major order.
type TileLayer struct {
	Name  string
	Tiles []int
}

// Object is one object from an object group.
type Object struct {
	Group         string
	ID            uint32
	Name          string
	Type          string // class, falling back to the legacy type attribute
	X, Y          float64
	Width, Height float64
	Properties    map[string]string
}

// TileAt returns the local tile id at (col, row) or Empty.
func (m *Map) TileAt(layer TileLayer, col, row int) int {
	if col < 0 || row < 0 || col >= m.Width || row >= m.Height {
		return Empty
	}
	i := row*m.Width + col
	if i >= len(layer.Tiles) {
		return Empty
	}
	return layer.Tiles[i]
}

// TileCount returns the number of non-empty cells across all layers.
func (m *Map) TileCount() int {
	n := 0
	for _, l := range m.Layers {
		for _, id := range l.Tiles {
			if id != Empty {
				n++
			}
		}
	}
	return n
}
