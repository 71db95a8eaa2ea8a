package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cubecraft/internal/atlas"
	"cubecraft/internal/config"
	"cubecraft/internal/game"
	"cubecraft/internal/game/flycam"
	"cubecraft/internal/logger"
	"cubecraft/internal/meshing"
	"cubecraft/internal/physics"
	"cubecraft/internal/postfx"
	"cubecraft/internal/render"
	"cubecraft/internal/render/glbackend"
	"cubecraft/internal/texture"
	"cubecraft/internal/voxel"
	"cubecraft/internal/world"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	shots := flag.String("screenshots", "screenshots", "Screenshot directory")
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	mainthread.Run(func() {
		if err := mainthread.CallErr(func() error { return run(cfg, *shots) }); err != nil {
			logger.Error("voxelview failed", zap.Error(err))
		}
	})
}

func run(cfg *config.Config, shotDir string) error {
	log := logger.Named("voxelview")

	tbl := atlas.Default()
	if cfg.Atlas.Path != "" {
		var err error
		if tbl, err = atlas.LoadFile(cfg.Atlas.Path); err != nil {
			return err
		}
	}

	w, generate, err := openWorld(cfg, log)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	backend, err := glbackend.New(logger.Named("gl"))
	if err != nil {
		return err
	}
	defer backend.Shutdown()

	textures := texture.NewManager(backend, logger.Named("texture"))
	defer textures.Shutdown()

	keys := newKeyState(window)
	s, err := game.NewSession(cfg, backend, w, tbl, generate, logger.Log, flycam.New(keys))
	if err != nil {
		return err
	}
	defer s.Close()

	if tex, err := textures.Load("atlas", cfg.Atlas.Texture, true); err != nil {
		log.Warn("atlas texture missing, drawing untextured", zap.Error(err))
	} else {
		s.Engine.SetTexture(tex)
	}
	for _, l := range []meshing.Layer{meshing.LayerOpaque, meshing.LayerFoliage} {
		s.Engine.SetLayerShader(l, backend.Shader(l))
	}

	width, height := window.GetFramebufferSize()
	backend.SetViewport(width, height)
	s.Engine.SetViewport(width, height)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		backend.SetViewport(width, height)
		s.Engine.SetViewport(width, height)
	})

	effects := &postfx.Stack{}
	window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			win.SetShouldClose(true)
		case glfw.KeyF2:
			screenshot(s.Engine, effects, shotDir, log)
		case glfw.KeyF3:
			toggle(effects, postfx.Mirror{}, log)
		case glfw.KeyF4:
			toggle(effects, postfx.DefaultGodRay(), log)
		case glfw.KeyF5:
			if err := s.Save(); err != nil {
				log.Error("save failed", zap.Error(err))
			}
		}
	})

	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			edit(s, voxel.Of(voxel.Air), false, log)
		case glfw.MouseButtonRight:
			edit(s, voxel.Of(voxel.Stone), true, log)
		}
	})

	pollRate := 0
	if cfg.Graphics.FPSLimit > 0 {
		pollRate = cfg.Graphics.FPSLimit * 4
	}
	game.NewApp(window, glfw.PollEvents, s, pollRate, logger.Named("app")).Run()
	return nil
}

// openWorld loads the save file when it exists and otherwise creates a world
// to generate.
func openWorld(cfg *config.Config, log *zap.Logger) (*world.World, bool, error) {
	wc := cfg.World
	if wc.SavePath != "" {
		if _, err := os.Stat(wc.SavePath); err == nil {
			w, err := world.Load(wc.SavePath, wc.SeaLevel, logger.Named("world"))
			return w, false, err
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
	}
	log.Info("generating new world", zap.Int64("seed", wc.Seed))
	w, err := world.New(world.Options{
		Seed:     wc.Seed,
		SizeX:    wc.SizeX,
		SizeY:    wc.SizeY,
		SizeZ:    wc.SizeZ,
		SeaLevel: wc.SeaLevel,
	}, logger.Named("world"))
	return w, true, err
}

func setupWindow(cfg *config.Config) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, "cubecraft", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

func toggle(s *postfx.Stack, e postfx.Effect, log *zap.Logger) {
	if s.Remove(e.Kind()) {
		log.Info("effect off", zap.Stringer("effect", e.Kind()))
		return
	}
	s.Push(e)
	log.Info("effect on", zap.Stringer("effect", e.Kind()))
}

func screenshot(e *render.Engine, effects *postfx.Stack, dir string, log *zap.Logger) {
	// light from the upper middle of the frame
	img, err := e.Capture(effects, mgl32.Vec2{0.5, 0.8})
	if err != nil {
		log.Error("capture failed", zap.Error(err))
		return
	}
	path, err := render.SaveScreenshot(img, dir, "cubecraft", time.Now())
	if err != nil {
		log.Error("screenshot failed", zap.Error(err))
		return
	}
	log.Info("screenshot saved", zap.String("path", path))
}

// edit breaks the cell under the view ray, or places v in front of it.
func edit(s *game.Session, v voxel.Voxel, place bool, log *zap.Logger) {
	cam := s.Engine.Camera()
	hit := physics.Raycast(cam.Position(), cam.Direction(), physics.MinReachDistance, physics.MaxReachDistance, s.World)
	if !hit.Hit {
		return
	}
	p := hit.HitPosition
	if place {
		p = hit.AdjacentPosition
	}
	if _, err := s.World.SetVoxel(p[0], p[1], p[2], v); err != nil {
		log.Debug("edit rejected", zap.Error(err))
	}
}
