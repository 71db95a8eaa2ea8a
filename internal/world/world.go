// Package world holds the chunk grid of a bounded voxel world, generates it
// and routes edits to re-meshing.
package world

import (
	"errors"
	"fmt"

	"cubecraft/internal/meshing"
	"cubecraft/internal/voxel"

	"go.uber.org/zap"
)

// ErrOutOfWorld is returned for edits outside the world extent.
var ErrOutOfWorld = errors.New("world: position out of bounds")

// Remesher is told which chunks need new geometry after an edit.
type Remesher func(c voxel.Coord)

// Options sizes a world in chunks.
type Options struct {
	Seed     int64
	SizeX    int
	SizeY    int
	SizeZ    int
	SeaLevel int
}

// World is a fixed box of chunks starting at chunk (0,0,0).
type World struct {
	opts     Options
	store    *ChunkStore
	gen      *Generator
	remesher Remesher
	log      *zap.Logger
}

func New(opts Options, log *zap.Logger) (*World, error) {
	if opts.SizeX <= 0 || opts.SizeY <= 0 || opts.SizeZ <= 0 {
		return nil, fmt.Errorf("world: bad size %dx%dx%d", opts.SizeX, opts.SizeY, opts.SizeZ)
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		opts:  opts,
		store: NewChunkStore(),
		gen:   NewGenerator(opts.Seed, opts.SeaLevel, opts.SizeY*voxel.Size),
		log:   log,
	}
	for x := range opts.SizeX {
		for y := range opts.SizeY {
			for z := range opts.SizeZ {
				w.store.GetChunk(voxel.Coord{X: x, Y: y, Z: z}, true)
			}
		}
	}
	return w, nil
}

func (w *World) Options() Options { return w.opts }

// SetRemesher registers the callback SetVoxel reports to.
func (w *World) SetRemesher(r Remesher) { w.remesher = r }

// Contains reports whether c lies inside the world.
func (w *World) Contains(c voxel.Coord) bool {
	return c.X >= 0 && c.X < w.opts.SizeX &&
		c.Y >= 0 && c.Y < w.opts.SizeY &&
		c.Z >= 0 && c.Z < w.opts.SizeZ
}

// Chunk returns the chunk at c, or nil outside the world.
func (w *World) Chunk(c voxel.Coord) *voxel.Chunk {
	if !w.Contains(c) {
		return nil
	}
	return w.store.GetChunk(c, false)
}

// Chunks returns every chunk in X, Y, Z order.
func (w *World) Chunks() []*voxel.Chunk { return w.store.All() }

// Generate fills every chunk from the heightmap.
func (w *World) Generate() {
	chunks := w.store.All()
	for _, c := range chunks {
		c.Load(w.gen.Populate(c.Coord))
	}
	w.log.Info("world generated", zap.Int("chunks", len(chunks)), zap.Int64("seed", w.opts.Seed))
}

// VoxelAt reads a cell in world voxel coordinates; outside the world is air.
func (w *World) VoxelAt(x, y, z int) voxel.Voxel {
	c, lx, ly, lz := ChunkOf(x, y, z)
	chunk := w.Chunk(c)
	if chunk == nil {
		return voxel.Of(voxel.Air)
	}
	return chunk.At(lx, ly, lz)
}

// SetVoxel writes a cell in world voxel coordinates. When the cell changes,
// the owning chunk and every loaded neighbor sharing the touched border are
// marked dirty and passed to the remesher.
func (w *World) SetVoxel(x, y, z int, v voxel.Voxel) (bool, error) {
	c, lx, ly, lz := ChunkOf(x, y, z)
	chunk := w.Chunk(c)
	if chunk == nil {
		return false, fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfWorld, x, y, z)
	}
	if !chunk.Set(lx, ly, lz, v) {
		return false, nil
	}

	touched := []voxel.Coord{c}
	for f := range meshing.Face(meshing.CubeFaces) {
		dx, dy, dz := f.Normal()
		if !onBorder(lx, dx) || !onBorder(ly, dy) || !onBorder(lz, dz) {
			continue
		}
		nc := voxel.Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
		if nb := w.Chunk(nc); nb != nil {
			nb.MarkDirty()
			touched = append(touched, nc)
		}
	}

	if w.remesher != nil {
		for _, tc := range touched {
			w.remesher(tc)
		}
	}
	return true, nil
}

// onBorder reports whether a local coordinate sits on the border facing d.
// d == 0 always matches.
func onBorder(l, d int) bool {
	switch d {
	case -1:
		return l == 0
	case 1:
		return l == voxel.Size-1
	}
	return true
}

// ChunkNeighbors snapshots the six face neighbors of c for seam culling.
// Neighbors outside the world are left nil.
func (w *World) ChunkNeighbors(c voxel.Coord) *meshing.NeighborGrids {
	var nb meshing.NeighborGrids
	for f := range meshing.Face(meshing.CubeFaces) {
		dx, dy, dz := f.Normal()
		if chunk := w.Chunk(voxel.Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}); chunk != nil {
			nb[f], _ = chunk.Snapshot()
		}
	}
	return &nb
}

// Dirty returns the chunks waiting for a new mesh, in X, Y, Z order.
func (w *World) Dirty() []*voxel.Chunk {
	var out []*voxel.Chunk
	for _, c := range w.store.All() {
		if c.IsDirty() {
			out = append(out, c)
		}
	}
	return out
}
