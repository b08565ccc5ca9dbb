package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"maps"
	"path"
	"slices"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"

	"github.com/automoto/tileworld/logging"
)

// ErrLevelNotFound is returned by Level for names missing from the manifest.
var ErrLevelNotFound = errors.New("assets: level not found")

// Texture is a drawable image. The viewer stores *ebiten.Image values here;
// headless code keeps the decoded image itself.
type Texture interface {
	Bounds() image.Rectangle
}

// LevelInfo points at the files of one level, relative to the asset FS.
type LevelInfo struct {
	Name           string `yaml:"name"`
	MapPath        string `yaml:"map"`
	BackgroundPath string `yaml:"background"`
}

type manifest struct {
	Levels []LevelInfo `yaml:"levels"`
}

// Manager loads and caches level descriptors, textures and surfaces from one
// file system.
type Manager struct {
	fsys       fs.FS
	newTexture func(image.Image) Texture

	levels   map[string]LevelInfo
	order    []string
	surfaces map[string]*image.NRGBA
	textures map[string]Texture

	log *zap.Logger
}

func NewManager(fsys fs.FS, logger *zap.Logger) *Manager {
	return &Manager{
		fsys:       fsys,
		newTexture: func(img image.Image) Texture { return img },
		levels:     make(map[string]LevelInfo),
		surfaces:   make(map[string]*image.NRGBA),
		textures:   make(map[string]Texture),
		log:        logging.OrNop(logger),
	}
}

// FS returns the file system assets are read from.
func (m *Manager) FS() fs.FS { return m.fsys }

// SetTextureFactory changes how decoded images become textures. Cached
// textures are dropped.
func (m *Manager) SetTextureFactory(f func(image.Image) Texture) {
	m.newTexture = f
	clear(m.textures)
}

// LoadManifest reads the level list at manifestPath. Map and background paths
// in the manifest are relative to the manifest's directory.
func (m *Manager) LoadManifest(manifestPath string) error {
	data, err := fs.ReadFile(m.fsys, manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}

	var man manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return fmt.Errorf("decode manifest %s: %w", manifestPath, err)
	}

	dir := path.Dir(manifestPath)
	clear(m.levels)
	m.order = m.order[:0]
	for _, lvl := range man.Levels {
		if lvl.Name == "" || lvl.MapPath == "" {
			return fmt.Errorf("manifest %s: level needs a name and a map", manifestPath)
		}
		if _, dup := m.levels[lvl.Name]; dup {
			return fmt.Errorf("manifest %s: duplicate level %q", manifestPath, lvl.Name)
		}
		lvl.MapPath = path.Join(dir, lvl.MapPath)
		if lvl.BackgroundPath != "" {
			lvl.BackgroundPath = path.Join(dir, lvl.BackgroundPath)
		}
		m.levels[lvl.Name] = lvl
		m.order = append(m.order, lvl.Name)
	}

	m.log.Debug("level manifest loaded", zap.String("path", manifestPath), zap.Int("levels", len(m.order)))
	return nil
}

// Level returns the descriptor registered under name.
func (m *Manager) Level(name string) (LevelInfo, error) {
	lvl, ok := m.levels[name]
	if !ok {
		return LevelInfo{}, fmt.Errorf("%w: %q", ErrLevelNotFound, name)
	}
	return lvl, nil
}

// Levels returns the level names in manifest order.
func (m *Manager) Levels() []string {
	return append([]string(nil), m.order...)
}

// Surface returns the pixel-readable image at p. Images are normalised to
// non-premultiplied RGBA with a zero origin so alpha can be read directly.
func (m *Manager) Surface(p string) (image.Image, error) {
	if s, ok := m.surfaces[p]; ok {
		return s, nil
	}

	f, err := m.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", p, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", p, err)
	}

	s := ToNRGBA(img)
	m.surfaces[p] = s
	m.log.Debug("surface loaded",
		zap.String("path", p),
		zap.String("format", format),
		zap.Int("width", s.Rect.Dx()),
		zap.Int("height", s.Rect.Dy()))
	return s, nil
}

// Texture returns the drawable texture for the image at p.
func (m *Manager) Texture(p string) (Texture, error) {
	if t, ok := m.textures[p]; ok {
		return t, nil
	}
	s, err := m.Surface(p)
	if err != nil {
		return nil, err
	}
	t := m.newTexture(s)
	m.textures[p] = t
	return t, nil
}

// Forget drops cached images for p, so the next request reads the file again.
func (m *Manager) Forget(p string) {
	delete(m.surfaces, p)
	delete(m.textures, p)
}

// Cached returns the paths of the decoded images held in the cache, sorted.
func (m *Manager) Cached() []string {
	return slices.Sorted(maps.Keys(m.surfaces))
}

// ToNRGBA converts img to *image.NRGBA anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}
