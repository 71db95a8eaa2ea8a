// Package config loads engine settings from YAML and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	World    WorldConfig    `yaml:"world"`
	Meshing  MeshingConfig  `yaml:"meshing"`
	Atlas    AtlasConfig    `yaml:"atlas"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds window and frame pacing settings.
type GraphicsConfig struct {
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	VSync    bool `yaml:"vsync"`
	FPSLimit int  `yaml:"fps_limit"` // 0 = uncapped
}

// WorldConfig sizes the world in chunks and seeds generation.
type WorldConfig struct {
	Seed     int64  `yaml:"seed"`
	SizeX    int    `yaml:"size_x"`
	SizeY    int    `yaml:"size_y"`
	SizeZ    int    `yaml:"size_z"`
	SeaLevel int    `yaml:"sea_level"`
	SavePath string `yaml:"save_path"`
}

// MeshingConfig tunes the worker pool and the per-frame upload budget.
type MeshingConfig struct {
	Workers         int `yaml:"workers"` // 0 = one per CPU
	QueueSize       int `yaml:"queue_size"`
	UploadsPerFrame int `yaml:"uploads_per_frame"`
}

// AtlasConfig points at the tile layout file and the sheet texture.
type AtlasConfig struct {
	Path    string `yaml:"path"`    // YAML tile layout; empty uses the built-in table
	Texture string `yaml:"texture"` // BMP or PNG sheet
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:    1280,
			Height:   720,
			VSync:    true,
			FPSLimit: 60,
		},
		World: WorldConfig{
			Seed:     1337,
			SizeX:    8,
			SizeY:    4,
			SizeZ:    8,
			SeaLevel: 20,
			SavePath: "world.snap",
		},
		Meshing: MeshingConfig{
			Workers:         0,
			QueueSize:       256,
			UploadsPerFrame: 8,
		},
		Atlas: AtlasConfig{
			Texture: "assets/textures/atlas.png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// MeshWorkers resolves the worker count.
func (c *Config) MeshWorkers() int {
	if c.Meshing.Workers > 0 {
		return c.Meshing.Workers
	}
	return runtime.NumCPU()
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FPSLimit < 0:
		return fmt.Errorf("%w: fps_limit %d", ErrInvalid, c.Graphics.FPSLimit)
	case c.World.SizeX <= 0 || c.World.SizeY <= 0 || c.World.SizeZ <= 0:
		return fmt.Errorf("%w: world size %dx%dx%d", ErrInvalid, c.World.SizeX, c.World.SizeY, c.World.SizeZ)
	case c.Meshing.Workers < 0 || c.Meshing.QueueSize <= 0:
		return fmt.Errorf("%w: meshing workers %d queue %d", ErrInvalid, c.Meshing.Workers, c.Meshing.QueueSize)
	case c.Meshing.UploadsPerFrame < 0:
		return fmt.Errorf("%w: uploads_per_frame %d", ErrInvalid, c.Meshing.UploadsPerFrame)
	}
	return nil
}
