package config

import (
	"flag"
	"strconv"
)

// Flags are the command-line overrides shared by every binary.
type Flags struct {
	ConfigPath string
	Debug      bool
	Width      int
	Height     int
	Seed       int64
	Workers    int
	SavePath   string
	LogFile    string

	seedSet bool
}

// RegisterFlags binds the overrides to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.Func("seed", "World generation seed", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		f.Seed, f.seedSet = v, true
		return nil
	})
	fs.IntVar(&f.Workers, "workers", 0, "Mesh worker goroutines")
	fs.StringVar(&f.SavePath, "save", "", "World snapshot path")
	fs.StringVar(&f.LogFile, "log", "", "Log file path")
	return f
}

func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.seedSet {
		cfg.World.Seed = f.Seed
	}
	if f.Workers > 0 {
		cfg.Meshing.Workers = f.Workers
	}
	if f.SavePath != "" {
		cfg.World.SavePath = f.SavePath
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
