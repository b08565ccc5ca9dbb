package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/lafriks/go-tiled"
)

// ErrNoTileset is returned for maps whose first tileset has no image.
var ErrNoTileset = errors.New("map has no tileset image")

// Load parses the TMX file at tmxPath. External tilesets are read from fsys
// as well, and the tileset image path is resolved against the file that
// declares it.
func Load(fsys fs.FS, tmxPath string) (*Map, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	if len(levelMap.Tilesets) == 0 {
		return nil, fmt.Errorf("%s: %w", tmxPath, ErrNoTileset)
	}
	source := levelMap.Tilesets[0].Source
	// External tilesets are only read once a tile refers to them, so a map
	// without tiles would otherwise never open its .tsx.
	first, err := levelMap.TileGIDToTile(levelMap.Tilesets[0].FirstGID)
	if err != nil {
		return nil, fmt.Errorf("load tileset %s of %s: %w", source, tmxPath, err)
	}
	ts := first.Tileset
	if ts == nil || ts.Image == nil || ts.Image.Source == "" {
		return nil, fmt.Errorf("%s: %w", tmxPath, ErrNoTileset)
	}

	data := &Map{
		Path:         tmxPath,
		Width:        levelMap.Width,
		Height:       levelMap.Height,
		TileWidth:    levelMap.TileWidth,
		TileHeight:   levelMap.TileHeight,
		TilesetImage: resolveImage(tmxPath, source, ts.Image.Source),
		Tileset: Tileset{
			TileWidth:  ts.TileWidth,
			TileHeight: ts.TileHeight,
			Margin:     ts.Margin,
			Spacing:    ts.Spacing,
			Columns:    ts.Columns,
			TileCount:  ts.TileCount,
			source:     ts,
		},
	}

	for _, layer := range levelMap.Layers {
		tl := TileLayer{Name: layer.Name, Tiles: make([]int, len(layer.Tiles))}
		for i, tile := range layer.Tiles {
			switch {
			case tile == nil || tile.IsNil():
				tl.Tiles[i] = Empty
			case tile.Tileset != ts:
				tl.Tiles[i] = Empty
				data.ForeignTiles++
			default:
				tl.Tiles[i] = int(tile.ID)
			}
		}
		data.Layers = append(data.Layers, tl)
	}

	for _, og := range levelMap.ObjectGroups {
		for _, o := range og.Objects {
			objType := o.Class
			if objType == "" {
				objType = o.Type //nolint:staticcheck // older TMX files use type=
			}
			obj := Object{
				Group:  og.Name,
				ID:     o.ID,
				Name:   o.Name,
				Type:   objType,
				X:      o.X,
				Y:      o.Y,
				Width:  o.Width,
				Height: o.Height,
			}
			if len(o.Properties) > 0 {
				obj.Properties = make(map[string]string, len(o.Properties))
				for _, p := range o.Properties {
					obj.Properties[p.Name] = p.Value
				}
			}
			data.Objects = append(data.Objects, obj)
		}
	}

	return data, nil
}

// resolveImage joins the image source with the directory of the map, and with
// the directory of the .tsx file for external tilesets.
func resolveImage(tmxPath, tilesetSource, image string) string {
	dir := path.Dir(tmxPath)
	if tilesetSource != "" {
		dir = path.Join(dir, path.Dir(tilesetSource))
	}
	return path.Join(dir, image)
}
