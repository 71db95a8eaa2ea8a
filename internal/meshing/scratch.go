package meshing

import (
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Worst-case flat vertex counts of one chunk pass.
const (
	CubeCapacity  = voxel.Volume * CubeFaces * VerticesPerFace
	CrossCapacity = voxel.Volume * CrossPlanes * VerticesPerFace
)

// Scratch holds the flat, non-indexed streams of one meshing pass.
// Each worker owns one; it must never be used by two passes at once.
type Scratch struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
}

// NewScratch allocates buffers able to hold capacity vertices.
func NewScratch(capacity int) *Scratch {
	s := &Scratch{}
	s.Reserve(capacity)
	return s
}

// Reserve grows the backing arrays to at least n vertices and resizes the
// buffers to n. Existing contents are not preserved.
func (s *Scratch) Reserve(n int) {
	if cap(s.Positions) < n {
		s.Positions = make([]mgl32.Vec3, n)
	}
	if cap(s.UVs) < n {
		s.UVs = make([]mgl32.Vec2, n)
	}
	s.Positions = s.Positions[:n]
	s.UVs = s.UVs[:n]
}

// Cap is the number of vertices a pass may write into the reserved storage.
func (s *Scratch) Cap() int {
	return min(cap(s.Positions), cap(s.UVs))
}

// Truncate resizes both buffers to n vertices; n must not exceed Cap.
func (s *Scratch) Truncate(n int) {
	s.Positions = s.Positions[:n]
	s.UVs = s.UVs[:n]
}

// Reset empties the buffers, keeping their storage.
func (s *Scratch) Reset() {
	s.Truncate(0)
}

// Len is the number of vertices currently held.
func (s *Scratch) Len() int { return len(s.Positions) }
