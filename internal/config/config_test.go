package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.FPSLimit != 60 {
		t.Errorf("expected fps_limit 60, got %d", cfg.Graphics.FPSLimit)
	}
	if cfg.World.SizeY != 4 {
		t.Errorf("expected world height of 4 chunks, got %d", cfg.World.SizeY)
	}
	if cfg.Meshing.UploadsPerFrame != 8 {
		t.Errorf("expected 8 uploads per frame, got %d", cfg.Meshing.UploadsPerFrame)
	}
	if cfg.MeshWorkers() < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.MeshWorkers())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  fps_limit: 144
world:
  seed: 42
  size_x: 2
meshing:
  workers: 3
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-width", "800", "-seed", "7", "-debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Graphics.Width != 800 {
		t.Errorf("flag should win over file: width %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("file should win over default: fps_limit %d", cfg.Graphics.FPSLimit)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("unset values keep defaults: height %d", cfg.Graphics.Height)
	}
	if cfg.World.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.World.Seed)
	}
	if cfg.World.SizeX != 2 || cfg.World.SizeZ != 8 {
		t.Errorf("unexpected world size %dx%d", cfg.World.SizeX, cfg.World.SizeZ)
	}
	if cfg.MeshWorkers() != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.MeshWorkers())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("-debug should override level, got %s", cfg.Logging.Level)
	}
}

func TestSeedZeroFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "-seed", "0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	f.ConfigPath = ""

	cfg := Default()
	f.apply(cfg)
	if cfg.World.Seed != 0 {
		t.Errorf("explicit zero seed should apply, got %d", cfg.World.Seed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	f := &Flags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := Load(f); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.World.SizeY = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	cfg = Default()
	cfg.Meshing.QueueSize = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.World.Seed = 99
	cfg.Atlas.Path = "atlas.yaml"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if got.World.Seed != 99 || got.Atlas.Path != "atlas.yaml" {
		t.Errorf("round trip lost values: %+v", got.World)
	}
}
