package config

import "image/color"

// PhysicsConfig contains physics-world configuration values
type PhysicsConfig struct {
	// World
	Gravity    float64 `yaml:"gravity"`    // Physics units per second squared, +Y is down
	Iterations int     `yaml:"iterations"` // Solver iterations per step

	// Units
	PixelsPerUnit float64 `yaml:"pixels_per_unit"` // World pixels per physics unit

	// Bullet bodies
	BulletSubsteps int `yaml:"bullet_substeps"` // Substeps per frame while a bullet body is alive

	// Geometry
	PhysicalGap float64 `yaml:"physical_gap"` // World pixels shaved off a tile body so neighbours don't snag

	// Defaults applied to bodies built by the factories
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// TileLayerConfig describes how the bodies of one tile layer are built
type TileLayerConfig struct {
	Collidable   bool `yaml:"collidable"`
	Destructible bool `yaml:"destructible"`
	ZOrder       int  `yaml:"z_order"`
}

// LevelConfig contains level-loading configuration values
type LevelConfig struct {
	ManifestPath string `yaml:"manifest_path"` // Level manifest inside the asset FS
	StartLevel   string `yaml:"start_level"`

	// Mini tiles
	TileSplitFactor int `yaml:"tile_split_factor"` // Each tile is cut into N x N mini tiles

	// Bounds padding in physics units, applied on both sides of each axis
	BufferZoneX float64 `yaml:"buffer_zone_x"`
	BufferZoneY float64 `yaml:"buffer_zone_y"`

	// Chance for a destructible mini tile to start as a dynamic body (0.0-1.0)
	DynamicTileProbability float64 `yaml:"dynamic_tile_probability"`

	// Tile layers by name. Layers not listed here are ignored by the loader.
	TileLayers map[string]TileLayerConfig `yaml:"tile_layers"`
}

// CameraConfig contains viewer camera configuration
type CameraConfig struct {
	Zoom        float64 `yaml:"zoom"`
	ScrollSpeed float64 `yaml:"scroll_speed"` // World pixels per tick when panning with the keyboard
	PanSeconds  float64 `yaml:"pan_seconds"`  // Duration of the pan to a freshly loaded level
}

// DebugConfig contains debug options
type DebugConfig struct {
	DrawBodies bool   `yaml:"draw_bodies"` // Outline physics shapes in the viewer
	LogLevel   string `yaml:"log_level"`
	HotReload  bool   `yaml:"hot_reload"` // Reload the level when its map file changes
}

// Config holds general window configuration
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Global configuration instances
var C *Config
var Physics PhysicsConfig
var Level LevelConfig
var Camera CameraConfig
var Debug DebugConfig

// Shared RGBA color constants
var (
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red        = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green      = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	LightBlue  = color.RGBA{R: 100, G: 180, B: 255, A: 255}
	Background = color.RGBA{R: 24, G: 26, B: 32, A: 255}
)

func init() {
	C = &Config{
		Width:  640,
		Height: 360,
	}

	// Physics Config
	Physics = PhysicsConfig{
		Gravity:    10.0,
		Iterations: 10,

		PixelsPerUnit: 32.0, // One authored tile is one physics unit

		BulletSubsteps: 4,

		PhysicalGap: 0.0,

		Density:     1.0,
		Friction:    0.7,
		Restitution: 0.1,
	}

	// Level Config
	Level = LevelConfig{
		ManifestPath: "levels.yaml",
		StartLevel:   "level1",

		TileSplitFactor: 4,

		BufferZoneX: 10.0,
		BufferZoneY: 10.0,

		DynamicTileProbability: 0.0,

		TileLayers: map[string]TileLayerConfig{
			"terrain": {Collidable: true, Destructible: true, ZOrder: 0},
			"decor":   {Collidable: false, Destructible: false, ZOrder: -1},
		},
	}

	Camera = CameraConfig{
		Zoom:        1.0,
		ScrollSpeed: 4.0,
		PanSeconds:  0.6,
	}

	Debug = DebugConfig{
		DrawBodies: false,
		LogLevel:   "info",
		HotReload:  true,
	}
}
