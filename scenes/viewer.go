// Package scenes holds the ebitengine scenes of the level viewer.
package scenes

import (
	"errors"
	"image"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/core"
	"github.com/automoto/tileworld/level"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/systems"
	"github.com/automoto/tileworld/systems/factory"
	"github.com/automoto/tileworld/systems/render"
)

const layerDefault ecs.LayerID = 0

// ViewerOptions configure a ViewerScene.
type ViewerOptions struct {
	Session     *core.Session
	Persistence *systems.Persistence
	AssetDir    string // OS directory behind the session FS, watched for changes when set
	StartLevel  string
	Logger      *zap.Logger
}

// ViewerScene shows one level at a time. Arrow keys pan, +/- zoom, N and P
// switch levels, R reloads, F1 toggles body outlines.
type ViewerScene struct {
	opts    ViewerOptions
	session *core.Session
	ecs     *ecs.ECS
	render  *render.Renderer
	watcher *assets.Watcher
	log     *zap.Logger

	panX, panY *gween.Tween
}

// NewViewerScene builds the scene and loads the first level: the saved one
// if it still exists, else opts.StartLevel.
func NewViewerScene(opts ViewerOptions) (*ViewerScene, error) {
	s := opts.Session
	vs := &ViewerScene{
		opts:    opts,
		session: s,
		ecs:     ecs.NewECS(s.World),
		render:  &render.Renderer{Transformer: s.Physics.Transformer(), Background: s.Loader.Background},
		log:     logging.OrNop(opts.Logger),
	}
	s.Assets.SetTextureFactory(func(img image.Image) assets.Texture {
		return ebiten.NewImageFromImage(img)
	})

	vs.ecs.AddSystem(vs.updateInput)
	vs.ecs.AddSystem(vs.updateWatcher)
	vs.ecs.AddSystem(vs.updateSimulation)
	vs.ecs.AddSystem(vs.updateCamera)

	vs.ecs.AddRenderer(layerDefault, vs.render.DrawBackground)
	vs.ecs.AddRenderer(layerDefault, vs.render.DrawTiles)
	vs.ecs.AddRenderer(layerDefault, vs.render.DrawBodies)

	level.LevelLoadedEvent.Subscribe(s.World, vs.onLevelLoaded)

	start := opts.StartLevel
	zoom := config.Camera.Zoom
	if saved, err := opts.Persistence.LoadViewerState(); err == nil && saved != nil {
		if slices.Contains(s.Assets.Levels(), saved.LastLevel) {
			start = saved.LastLevel
		}
		if saved.Zoom > 0 {
			zoom = saved.Zoom
		}
	}
	camera := factory.CreateCamera(s.Registry, math.Vec2{})
	components.Camera.Get(camera).Zoom = zoom

	if err := vs.loadLevel(start); err != nil {
		return nil, err
	}

	if opts.AssetDir != "" && config.Debug.HotReload {
		vs.startWatcher()
	}
	return vs, nil
}

func (vs *ViewerScene) startWatcher() {
	var dirs []string
	_ = filepath.WalkDir(vs.opts.AssetDir, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	w, err := assets.NewWatcher(assets.DefaultWatchExtensions, dirs...)
	if err != nil {
		vs.log.Warn("hot reload disabled", zap.Error(err))
		return
	}
	vs.watcher = w
	vs.log.Info("watching level files", zap.Strings("dirs", dirs))
}

func (vs *ViewerScene) loadLevel(name string) error {
	if err := vs.session.LoadLevel(name); err != nil {
		return err
	}
	zoom := config.Camera.Zoom
	if entry, ok := components.Camera.First(vs.session.World); ok {
		zoom = components.Camera.Get(entry).Zoom
	}
	if err := vs.opts.Persistence.SaveViewerState(systems.SavedViewerState{LastLevel: name, Zoom: zoom}); err != nil {
		vs.log.Warn("viewer state not saved", zap.Error(err))
	}
	return nil
}

// step loads the level delta positions away from the current one in
// manifest order.
func (vs *ViewerScene) step(delta int) {
	names := vs.session.Assets.Levels()
	if len(names) == 0 {
		return
	}
	i := slices.Index(names, vs.session.Loader.Level().Name)
	next := names[((i+delta)%len(names)+len(names))%len(names)]
	if err := vs.loadLevel(next); err != nil {
		vs.log.Error("level switch failed", zap.String("level", next), zap.Error(err))
	}
}

func (vs *ViewerScene) reload() {
	if err := vs.session.Reload(); err != nil {
		if errors.Is(err, core.ErrNoLevel) {
			return
		}
		vs.log.Error("reload failed", zap.Error(err))
	}
}

// onLevelLoaded pans the camera to the middle of the new level.
func (vs *ViewerScene) onLevelLoaded(w donburi.World, ev level.LevelLoaded) {
	entry, ok := components.Camera.First(w)
	if !ok || !ev.Bounds.Valid {
		return
	}
	camera := components.Camera.Get(entry)
	target := vs.session.Physics.Transformer().PhysicsToWorld(ev.Bounds.Center())
	d := float32(config.Camera.PanSeconds)
	vs.panX = gween.New(float32(camera.Position.X), float32(target.X), d, ease.OutCubic)
	vs.panY = gween.New(float32(camera.Position.Y), float32(target.Y), d, ease.OutCubic)
}

func (vs *ViewerScene) updateInput(e *ecs.ECS) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		vs.step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		vs.step(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		vs.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		config.Debug.DrawBodies = !config.Debug.DrawBodies
	}

	if entry, ok := components.Camera.First(e.World); ok {
		camera := components.Camera.Get(entry)
		if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
			camera.Zoom = min(camera.Zoom*1.25, 8)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
			camera.Zoom = max(camera.Zoom/1.25, 0.125)
		}
	}
}

// updateWatcher drains the watcher without blocking. Any number of changes
// in one tick cause a single reload.
func (vs *ViewerScene) updateWatcher(_ *ecs.ECS) {
	if vs.watcher == nil {
		return
	}
	changed := false
	for drained := false; !drained; {
		select {
		case name, ok := <-vs.watcher.Events:
			if !ok {
				vs.watcher = nil
				return
			}
			vs.log.Debug("level file changed", zap.String("file", name))
			changed = true
		case err, ok := <-vs.watcher.Errors:
			if !ok {
				vs.watcher = nil
				return
			}
			vs.log.Warn("watch error", zap.Error(err))
		default:
			drained = true
		}
	}
	if changed {
		vs.reload()
	}
}

func (vs *ViewerScene) updateSimulation(_ *ecs.ECS) {
	vs.session.Update(1.0 / float64(ebiten.TPS()))
}

func (vs *ViewerScene) updateCamera(e *ecs.ECS) {
	var pan math.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		pan.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		pan.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		pan.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		pan.Y++
	}
	if pan.X != 0 || pan.Y != 0 {
		vs.panX, vs.panY = nil, nil
	}

	if vs.panX != nil && vs.panY != nil {
		if entry, ok := components.Camera.First(e.World); ok {
			dt := float32(1.0 / float64(ebiten.TPS()))
			x, doneX := vs.panX.Update(dt)
			y, doneY := vs.panY.Update(dt)
			camera := components.Camera.Get(entry)
			camera.Position = math.Vec2{X: float64(x), Y: float64(y)}
			if doneX && doneY {
				vs.panX, vs.panY = nil, nil
			}
		}
	}

	systems.UpdateCamera(e.World, pan, vs.session.Physics.Transformer())
}

func (vs *ViewerScene) Update() {
	vs.ecs.Update()
}

func (vs *ViewerScene) Draw(screen *ebiten.Image) {
	vs.ecs.Draw(screen)
}

// Close stops watching files and unloads the level.
func (vs *ViewerScene) Close() {
	if vs.watcher != nil {
		_ = vs.watcher.Close()
	}
	if leaked := vs.session.Close(); leaked != 0 {
		vs.log.Warn("physics objects leaked", zap.Int64("count", leaked))
	}
}
