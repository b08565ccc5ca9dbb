package main

import (
	"flag"
	"image"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/core"
	"github.com/automoto/tileworld/logging"
	"github.com/automoto/tileworld/scenes"
	"github.com/automoto/tileworld/systems"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	configPath := flag.String("config", "", "YAML file overriding the built-in configuration")
	assetDir := flag.String("assets", "data", "Directory holding the level manifest")
	levelName := flag.String("level", "", "Level to open (default: last viewed, then level.start_level)")
	logLevel := flag.String("log", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	if *configPath != "" {
		if err := config.LoadFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *logLevel != "" {
		config.Debug.LogLevel = *logLevel
	}

	logger, err := logging.New(config.Debug.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	session, err := core.NewSession(core.Options{
		FS:     os.DirFS(*assetDir),
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("could not start session", zap.Error(err))
	}

	start := config.Level.StartLevel
	if *levelName != "" {
		start = *levelName
	}
	persistence := systems.OpenPersistence("tileworld", logger.Named("persistence"))
	if *levelName != "" {
		// An explicit level wins over the saved one.
		persistence = nil
	}

	scene, err := scenes.NewViewerScene(scenes.ViewerOptions{
		Session:     session,
		Persistence: persistence,
		AssetDir:    *assetDir,
		StartLevel:  start,
		Logger:      logger.Named("viewer"),
	})
	if err != nil {
		logger.Fatal("could not open level", zap.String("level", start), zap.Error(err))
	}
	defer scene.Close()

	ebiten.SetWindowSize(config.C.Width*2, config.C.Height*2)
	ebiten.SetWindowTitle("tileworld")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(&Game{scene: scene}); err != nil {
		logger.Error("game loop stopped", zap.Error(err))
	}
}
