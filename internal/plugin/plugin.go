// Package plugin runs game-logic hooks around the frame loop.
package plugin

import (
	"fmt"

	"cubecraft/internal/config"
	"cubecraft/internal/meshing"
	"cubecraft/internal/render"
	"cubecraft/internal/world"

	"go.uber.org/zap"
)

// Context is what a plugin may touch while running.
type Context struct {
	Config *config.Config
	World  *world.World
	Pool   *meshing.WorkerPool
	Engine *render.Engine
	Log    *zap.Logger
	// Generate asks world plugins to build terrain rather than keep
	// loaded chunks.
	Generate bool
}

// Plugin hooks are called from the frame loop, in registration order.
// OnPlayStop runs in reverse order.
type Plugin interface {
	Name() string
	OnPlayStart(ctx *Context) error
	OnPreUpdate()
	OnPostUpdate(dt float64)
	OnPlayStop()
}

// Host owns the registered plugins.
type Host struct {
	plugins []Plugin
	started int
	log     *zap.Logger
}

func NewHost(log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{log: log}
}

// Register adds p. Names must be unique and the host must not be running.
func (h *Host) Register(p Plugin) error {
	if h.started > 0 {
		return fmt.Errorf("plugin: cannot register %q while running", p.Name())
	}
	for _, q := range h.plugins {
		if q.Name() == p.Name() {
			return fmt.Errorf("plugin: %q already registered", p.Name())
		}
	}
	h.plugins = append(h.plugins, p)
	return nil
}

// Plugins returns the registered plugins in order.
func (h *Host) Plugins() []Plugin { return h.plugins }

// Start calls OnPlayStart on every plugin. If one fails, the plugins already
// started are stopped again.
func (h *Host) Start(ctx *Context) error {
	for _, p := range h.plugins {
		if err := p.OnPlayStart(ctx); err != nil {
			h.Stop()
			return fmt.Errorf("plugin %q: %w", p.Name(), err)
		}
		h.started++
		h.log.Info("plugin started", zap.String("plugin", p.Name()))
	}
	return nil
}

// Update runs every pre-update hook, then every post-update hook.
func (h *Host) Update(dt float64) {
	for _, p := range h.plugins[:h.started] {
		p.OnPreUpdate()
	}
	for _, p := range h.plugins[:h.started] {
		p.OnPostUpdate(dt)
	}
}

// Stop calls OnPlayStop on started plugins, last started first.
func (h *Host) Stop() {
	for i := h.started - 1; i >= 0; i-- {
		h.plugins[i].OnPlayStop()
		h.log.Info("plugin stopped", zap.String("plugin", h.plugins[i].Name()))
	}
	h.started = 0
}
