package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a config override file. Every section is
// optional; a missing section leaves the matching global untouched.
type File struct {
	Window  *Config        `yaml:"window"`
	Physics *PhysicsConfig `yaml:"physics"`
	Level   *LevelConfig   `yaml:"level"`
	Camera  *CameraConfig  `yaml:"camera"`
	Debug   *DebugConfig   `yaml:"debug"`
}

// LoadFile overlays the YAML file at path onto the global configuration.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Apply(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("apply config %s: %w", path, err)
	}
	return nil
}

// Apply decodes YAML from r on top of the current globals. Sections are
// decoded into copies of the current values, so fields absent from the
// document keep their defaults.
func Apply(r io.Reader) error {
	window := *C
	physics := Physics
	level := Level
	level.TileLayers = maps.Clone(Level.TileLayers)
	camera := Camera
	debug := Debug

	f := File{
		Window:  &window,
		Physics: &physics,
		Level:   &level,
		Camera:  &camera,
		Debug:   &debug,
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if f.Window != nil {
		C = f.Window
	}
	if f.Physics != nil {
		Physics = *f.Physics
	}
	if f.Level != nil {
		Level = *f.Level
	}
	if f.Camera != nil {
		Camera = *f.Camera
	}
	if f.Debug != nil {
		Debug = *f.Debug
	}
	return nil
}
