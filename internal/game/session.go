package game

import (
	"fmt"

	"cubecraft/internal/atlas"
	"cubecraft/internal/config"
	"cubecraft/internal/game/pcg"
	"cubecraft/internal/meshing"
	"cubecraft/internal/plugin"
	"cubecraft/internal/profiling"
	"cubecraft/internal/render"
	"cubecraft/internal/world"

	"go.uber.org/zap"
)

// Session is one running world: the mesh workers, the engine drawing their
// output and the plugins driving both.
type Session struct {
	Config *config.Config
	World  *world.World
	Pool   *meshing.WorkerPool
	Engine *render.Engine
	Host   *plugin.Host

	log *zap.Logger
}

// NewSession wires the pipeline and starts the plugins. The pcg plugin is
// always registered first; extra plugins run after it. With generate set the
// world is filled from its seed before the first mesh pass.
func NewSession(cfg *config.Config, b render.Backend, w *world.World, tbl *atlas.Table, generate bool, log *zap.Logger, extra ...plugin.Plugin) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pool := meshing.NewWorkerPool(meshing.NewBatcher(tbl), cfg.MeshWorkers(), cfg.Meshing.QueueSize, log.Named("meshing"))
	engine := render.NewEngine(b, render.Options{
		Width:       cfg.Graphics.Width,
		Height:      cfg.Graphics.Height,
		FPS:         float64(cfg.Graphics.FPSLimit),
		UploadQueue: cfg.Meshing.QueueSize,
	}, log.Named("render"))

	host := plugin.NewHost(log.Named("plugin"))
	for _, p := range append([]plugin.Plugin{pcg.New()}, extra...) {
		if err := host.Register(p); err != nil {
			pool.Shutdown()
			return nil, err
		}
	}

	s := &Session{
		Config: cfg,
		World:  w,
		Pool:   pool,
		Engine: engine,
		Host:   host,
		log:    log,
	}
	if err := host.Start(&plugin.Context{
		Config:   cfg,
		World:    w,
		Pool:     pool,
		Engine:   engine,
		Log:      log,
		Generate: generate,
	}); err != nil {
		pool.Shutdown()
		engine.Shutdown()
		return nil, fmt.Errorf("start session: %w", err)
	}

	log.Info("session started",
		zap.Int("workers", pool.Workers()),
		zap.Int("chunks", len(w.Chunks())),
		zap.Bool("generated", generate))
	return s, nil
}

// Tick runs the plugins, uploads finished meshes within the per-frame
// budget and lets the engine draw. It reports whether a frame was drawn.
func (s *Session) Tick(dt float64) bool {
	func() {
		defer profiling.Track("plugin.Update")()
		s.Host.Update(dt)
	}()
	s.Engine.ProcessUploads(s.Config.Meshing.UploadsPerFrame)
	return s.Engine.Render()
}

// Save writes the world to the configured save path.
func (s *Session) Save() error {
	if s.Config.World.SavePath == "" {
		return fmt.Errorf("save: no save path configured")
	}
	return s.World.Save(s.Config.World.SavePath)
}

// Close stops the plugins and the workers and frees every GPU mesh.
func (s *Session) Close() {
	s.Host.Stop()
	s.Pool.Shutdown()
	s.Engine.Shutdown()
	s.log.Info("session closed")
}
