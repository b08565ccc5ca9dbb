// Package core wires the level loader, physics and contact routing into a
// headless session. The viewer drives one; tests drive it directly.
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/contacts"
	"github.com/automoto/tileworld/level"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/systems"
	"github.com/automoto/tileworld/systems/factory"
	"github.com/automoto/tileworld/tuner"
)

// ErrNoLevel is returned by Reload before any level was loaded.
var ErrNoLevel = errors.New("no level loaded")

// Options configure a Session.
type Options struct {
	FS     fs.FS // asset root holding the level manifest
	Logger *zap.Logger
	Rand   *rand.Rand // nil uses a fixed seed
}

// Session owns one entity world and one physics world.
type Session struct {
	World    donburi.World
	Registry *registry.Registry
	Physics  *physics.World
	Tuner    *tuner.Tuner
	Contacts *contacts.Bridge
	Assets   *assets.Manager
	Spawner  *factory.Spawner
	Loader   *level.Loader

	log *zap.Logger
}

// NewSession builds a session from the config package and reads the level
// manifest.
func NewSession(opts Options) (*Session, error) {
	logger := logging.OrNop(opts.Logger)

	world := donburi.NewWorld()
	reg := registry.New(world, logger.Named("registry"))
	pw := physics.NewWorld(physics.Config{
		Gravity:        config.Physics.Gravity,
		Iterations:     config.Physics.Iterations,
		BulletSubsteps: config.Physics.BulletSubsteps,
	}, gamemath.NewTransformer(config.Physics.PixelsPerUnit), logger.Named("physics"))
	bridge := contacts.NewBridge(reg, logger.Named("contacts"))
	pw.SetContactListener(bridge)
	tn := tuner.New(pw, logger.Named("tuner"))

	mgr := assets.NewManager(opts.FS, logger.Named("assets"))
	if err := mgr.LoadManifest(config.Level.ManifestPath); err != nil {
		return nil, err
	}

	spawner := factory.NewSpawner(reg, tn, logger.Named("factory"))
	loader := level.NewLoader(level.Deps{
		Registry:  reg,
		Physics:   pw,
		FS:        opts.FS,
		Resources: mgr,
		Spawner:   spawner,
		Listener:  bridge,
		Rand:      opts.Rand,
		Logger:    logger.Named("level"),
	}, level.ConfigFromGlobals())

	return &Session{
		World:    world,
		Registry: reg,
		Physics:  pw,
		Tuner:    tn,
		Contacts: bridge,
		Assets:   mgr,
		Spawner:  spawner,
		Loader:   loader,
		log:      logger,
	}, nil
}

// LoadLevel loads the manifest level called name.
func (s *Session) LoadLevel(name string) error {
	info, err := s.Assets.Level(name)
	if err != nil {
		return err
	}
	return s.Loader.LoadMap(info)
}

// Reload loads the current level again, reading its files from scratch.
func (s *Session) Reload() error {
	info := s.Loader.Level()
	if info.MapPath == "" {
		return ErrNoLevel
	}
	s.forgetImages(info)
	if err := s.Loader.LoadMap(info); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (s *Session) forgetImages(info assets.LevelInfo) {
	if info.BackgroundPath != "" {
		s.Assets.Forget(info.BackgroundPath)
	}
	// The tileset path is only known to the loader once the map is parsed,
	// so every cached image goes.
	for _, name := range s.Assets.Cached() {
		s.Assets.Forget(name)
	}
}

// Update advances the simulation by dt seconds and delivers pending events.
// It returns the number of entities despawned for leaving the level.
func (s *Session) Update(dt float64) int {
	removed := systems.UpdatePhysics(s.Registry, s.Physics, s.Loader.Bounds(), dt)
	if removed > 0 {
		s.log.Debug("distant objects removed", zap.Int("count", removed))
	}
	events.ProcessAllEvents(s.World)
	return removed
}

// Close unloads the level and returns the number of leaked physics objects.
func (s *Session) Close() int64 {
	residual := s.Loader.UnloadMap()
	s.Registry.LogCensus()
	return residual
}
