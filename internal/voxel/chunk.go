package voxel

import "sync"

// Coord addresses a chunk in chunk units.
type Coord struct {
	X, Y, Z int
}

// Origin returns the world-space voxel coordinate of the chunk's (0,0,0) cell.
func (c Coord) Origin() (int, int, int) {
	return c.X * Size, c.Y * Size, c.Z * Size
}

// Chunk owns one grid. Reads for meshing go through Snapshot so a pass never
// observes a grid while it is being edited.
type Chunk struct {
	Coord Coord

	mu      sync.RWMutex
	grid    Grid
	version uint64
	dirty   bool
}

// NewChunk creates an all-air chunk at the given coordinates.
func NewChunk(c Coord) *Chunk {
	return &Chunk{Coord: c, dirty: true}
}

// At returns a cell in local coordinates.
func (c *Chunk) At(x, y, z int) Voxel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid.At(x, y, z)
}

// Set writes a cell in local coordinates. It reports whether the cell changed.
func (c *Chunk) Set(x, y, z int, v Voxel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !InBounds(x, y, z) || c.grid[x][y][z] == v {
		return false
	}
	c.grid[x][y][z] = v
	c.version++
	c.dirty = true
	return true
}

// Load replaces the whole grid, e.g. after generation or a snapshot restore.
func (c *Chunk) Load(g *Grid) {
	c.mu.Lock()
	c.grid = *g
	c.version++
	c.dirty = true
	c.mu.Unlock()
}

// Snapshot copies the grid and returns it with the version it reflects.
func (c *Chunk) Snapshot() (*Grid, uint64) {
	c.mu.RLock()
	g := c.grid
	v := c.version
	c.mu.RUnlock()
	return &g, v
}

// Version increases on every mutation.
func (c *Chunk) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// IsDirty returns whether the chunk changed since it was last meshed.
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty flags the chunk for re-meshing without changing its cells, e.g.
// when a neighbor edit changes which border faces are visible. It bumps the
// version so meshes built before the call count as stale.
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	c.version++
	c.dirty = true
	c.mu.Unlock()
}

// SetClean clears the dirty flag if the chunk is still at version v.
func (c *Chunk) SetClean(v uint64) {
	c.mu.Lock()
	if c.version == v {
		c.dirty = false
	}
	c.mu.Unlock()
}
