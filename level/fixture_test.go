package level_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/level"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/systems/factory"
	"github.com/automoto/tileworld/tuner"
)

// Tileset used by every test map: 4 columns and 2 rows of 32px tiles.
// Global ids (first gid 1):
//
//	gid 2: fully transparent
//	gid 3: only the top-left 16x16 quarter is opaque
//	gid 5: fully opaque (first tile of the second row)
const (
	gidInvisible = 2
	gidQuarter   = 3
	gidOpaque    = 5
	scale        = 32.0
)

func tilesetPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 128, 64))
	opaque := color.NRGBA{R: 120, G: 90, B: 60, A: 255}
	for y := 32; y < 64; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, opaque)
		}
	}
	for y := 0; y < 16; y++ {
		for x := 64; x < 80; x++ {
			img.SetNRGBA(x, y, opaque)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type layerSpec struct {
	name string
	gids []int
}

type objectSpec struct {
	name, class string
	x, y        float64
}

// tmx renders a w x h map using the external tileset tiles.tsx.
func tmx(w, h int, layers []layerSpec, objects []objectSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="%d" height="%d" tilewidth="32" tileheight="32" infinite="0" nextlayerid="9" nextobjectid="99">
 <tileset firstgid="1" source="tiles.tsx"/>
`, w, h)
	for i, l := range layers {
		ids := make([]string, len(l.gids))
		for j, g := range l.gids {
			ids[j] = fmt.Sprint(g)
		}
		fmt.Fprintf(&b, ` <layer id="%d" name="%s" width="%d" height="%d">
  <data encoding="csv">
%s
</data>
 </layer>
`, i+1, l.name, w, h, strings.Join(ids, ","))
	}
	if len(objects) > 0 {
		b.WriteString(" <objectgroup id=\"8\" name=\"objects\">\n")
		for i, o := range objects {
			fmt.Fprintf(&b, "  <object id=\"%d\" name=\"%s\" class=\"%s\" x=\"%g\" y=\"%g\"/>\n", i+1, o.name, o.class, o.x, o.y)
		}
		b.WriteString(" </objectgroup>\n")
	}
	b.WriteString("</map>\n")
	return b.String()
}

const tilesTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="tiles" tilewidth="32" tileheight="32" tilecount="8" columns="4">
 <image source="tiles.png" width="128" height="64"/>
</tileset>
`

// spacedTSX is a 4x2 tileset of 16px tiles with a 1px margin and 2px spacing,
// drawn into 32px map cells by spacedMap.
const spacedTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="spaced" tilewidth="16" tileheight="16" spacing="2" margin="1" tilecount="8" columns="4">
 <image source="spaced.png" width="72" height="36"/>
</tileset>
`

func spacedMap(gid int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="1" height="1" tilewidth="32" tileheight="32" infinite="0" nextlayerid="2" nextobjectid="1">
 <tileset firstgid="1" source="spaced.tsx"/>
 <layer id="1" name="terrain" width="1" height="1">
  <data encoding="csv">
%d
</data>
 </layer>
</map>
`, gid)
}

// spacedPNG paints only local tile 1, which sits at (19,1)-(35,17).
func spacedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	opaque := color.NRGBA{R: 40, G: 160, B: 80, A: 255}
	for y := 1; y < 17; y++ {
		for x := 19; x < 35; x++ {
			img.SetNRGBA(x, y, opaque)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fixtureFS(t *testing.T, maps map[string]string) fstest.MapFS {
	t.Helper()
	fsys := fstest.MapFS{
		"levels/tiles.tsx": {Data: []byte(tilesTSX)},
		"levels/tiles.png": {Data: tilesetPNG(t)},
	}
	for name, doc := range maps {
		fsys["levels/"+name] = &fstest.MapFile{Data: []byte(doc)}
	}
	return fsys
}

type harness struct {
	world   donburi.World
	reg     *registry.Registry
	physics *physics.World
	loader  *level.Loader
	spawner *recordingSpawner
	logs    *observer.ObservedLogs
}

func testConfig() level.Config {
	return level.Config{
		SplitFactor: 2,
		BufferZone:  math.Vec2{X: 1, Y: 1},
		Layers: map[string]config.TileLayerConfig{
			"terrain": {Collidable: true, Destructible: true},
			"decor":   {Collidable: false, Destructible: false, ZOrder: 1},
		},
	}
}

func newHarness(t *testing.T, fsys fstest.MapFS, cfg level.Config) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	world := donburi.NewWorld()
	reg := registry.New(world, logger)
	pw := physics.NewWorld(physics.Config{Gravity: 10, Iterations: 10}, gamemath.NewTransformer(scale), logger)
	sp := &recordingSpawner{Spawner: factory.NewSpawner(reg, tuner.New(pw, logger), logger)}

	loader := level.NewLoader(level.Deps{
		Registry:  reg,
		Physics:   pw,
		FS:        fsys,
		Resources: assets.NewManager(fsys, logger),
		Spawner:   sp,
		Logger:    logger,
	}, cfg)

	return &harness{world: world, reg: reg, physics: pw, loader: loader, spawner: sp, logs: logs}
}

// recordingSpawner passes every call to the real factory and remembers it.
type recordingSpawner struct {
	*factory.Spawner
	tiles   []level.SpawnTileOptions
	rects   []image.Rectangle
	players []string
	portals []string
	turrets []string
}

func (r *recordingSpawner) SpawnTile(pos, size math.Vec2, src level.TileSource, opts level.SpawnTileOptions) (donburi.Entity, error) {
	r.tiles = append(r.tiles, opts)
	r.rects = append(r.rects, src.Rect)
	return r.Spawner.SpawnTile(pos, size, src, opts)
}

func (r *recordingSpawner) SpawnPlayer(pos math.Vec2, name string) (donburi.Entity, error) {
	r.players = append(r.players, name)
	return r.Spawner.SpawnPlayer(pos, name)
}

func (r *recordingSpawner) SpawnPortal(pos math.Vec2, name string) (donburi.Entity, error) {
	r.portals = append(r.portals, name)
	return r.Spawner.SpawnPortal(pos, name)
}

func (r *recordingSpawner) SpawnTurret(pos math.Vec2, name string) (donburi.Entity, error) {
	r.turrets = append(r.turrets, name)
	return r.Spawner.SpawnTurret(pos, name)
}
