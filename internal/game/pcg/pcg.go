// Package pcg generates terrain when play starts and keeps chunk meshes in
// step with world edits.
package pcg

import (
	"errors"
	"slices"

	"cubecraft/internal/meshing"
	"cubecraft/internal/plugin"
	"cubecraft/internal/render"
	"cubecraft/internal/voxel"
	"cubecraft/internal/world"

	"go.uber.org/zap"
)

const Name = "pcg"

// Plugin submits a mesh job for every dirty chunk. Jobs the pool cannot take
// right away, and chunks whose upload failed, wait in a backlog that is
// retried before each update.
type Plugin struct {
	world   *world.World
	pool    *meshing.WorkerPool
	engine  *render.Engine
	results chan<- meshing.MeshResult
	log     *zap.Logger

	backlog []voxel.Coord
	queued  map[voxel.Coord]bool
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return Name }

func (p *Plugin) OnPlayStart(ctx *plugin.Context) error {
	if ctx.World == nil || ctx.Pool == nil || ctx.Engine == nil {
		return errors.New("pcg: needs a world, a worker pool and an engine")
	}
	p.world = ctx.World
	p.pool = ctx.Pool
	p.engine = ctx.Engine
	p.results = ctx.Engine.Results()
	p.log = ctx.Log
	if p.log == nil {
		p.log = zap.NewNop()
	}
	p.log = p.log.Named(Name)
	p.queued = make(map[voxel.Coord]bool)

	if ctx.Generate {
		p.world.Generate()
	}
	p.world.SetRemesher(p.Remesh)
	p.engine.SetUploadFailed(p.uploadFailed)

	dirty := p.world.Dirty()
	for _, c := range dirty {
		p.Remesh(c.Coord)
	}
	p.log.Info("initial meshing queued", zap.Int("chunks", len(dirty)), zap.Int("backlog", len(p.backlog)))
	return nil
}

// Remesh snapshots c and its neighbors and hands them to the pool.
func (p *Plugin) Remesh(c voxel.Coord) {
	if p.submit(c) {
		return
	}
	p.enqueue(c)
}

// uploadFailed runs inside ProcessUploads, so the chunk is only backlogged.
func (p *Plugin) uploadFailed(c voxel.Coord) {
	chunk := p.world.Chunk(c)
	if chunk == nil {
		return
	}
	chunk.MarkDirty()
	p.enqueue(c)
}

func (p *Plugin) enqueue(c voxel.Coord) {
	if !p.queued[c] {
		p.queued[c] = true
		p.backlog = append(p.backlog, c)
	}
}

func (p *Plugin) submit(c voxel.Coord) bool {
	chunk := p.world.Chunk(c)
	if chunk == nil {
		return true
	}
	grid, version := chunk.Snapshot()
	job := meshing.MeshJob{
		Coord:      c,
		Version:    version,
		Grid:       grid,
		Neighbors:  p.world.ChunkNeighbors(c),
		ResultChan: p.results,
	}
	if !p.pool.SubmitJob(job) {
		return false
	}
	chunk.SetClean(version)
	return true
}

// OnPreUpdate retries the backlog in order and stops at the first refusal.
func (p *Plugin) OnPreUpdate() {
	n := 0
	for _, c := range p.backlog {
		if !p.submit(c) {
			break
		}
		delete(p.queued, c)
		n++
	}
	p.backlog = slices.Delete(p.backlog, 0, n)
}

func (p *Plugin) OnPostUpdate(float64) {}

func (p *Plugin) OnPlayStop() {
	if p.world != nil {
		p.world.SetRemesher(nil)
	}
	if p.engine != nil {
		p.engine.SetUploadFailed(nil)
	}
	p.backlog = nil
	clear(p.queued)
}

// Backlog is the number of chunks waiting for a queue slot.
func (p *Plugin) Backlog() int { return len(p.backlog) }
