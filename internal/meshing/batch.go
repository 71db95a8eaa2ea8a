package meshing

import (
	"errors"
	"fmt"

	"cubecraft/internal/atlas"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCapacityExceeded aborts a pass whose scratch buffers are too small.
var ErrCapacityExceeded = errors.New("meshing: scratch capacity exceeded")

// Layer selects which cells a pass turns into geometry.
type Layer int

const (
	// LayerOpaque meshes cube cells with neighbor culling.
	LayerOpaque Layer = iota
	// LayerFoliage meshes billboard cells as two crossed planes.
	LayerFoliage
)

func (l Layer) String() string {
	if l == LayerFoliage {
		return "foliage"
	}
	return "opaque"
}

// Capacity is the worst-case flat vertex count of one pass over a chunk.
func (l Layer) Capacity() int {
	if l == LayerFoliage {
		return CrossCapacity
	}
	return CubeCapacity
}

func (l Layer) shape() voxel.Shape {
	if l == LayerFoliage {
		return voxel.ShapeCross
	}
	return voxel.ShapeCube
}

// Batcher turns a frozen grid into flat position/UV streams.
// It only reads its table, so one Batcher may serve any number of workers.
type Batcher struct {
	Atlas *atlas.Table
}

// NewBatcher returns a batcher over the given table, or the default one.
func NewBatcher(t *atlas.Table) *Batcher {
	if t == nil {
		t = atlas.Default()
	}
	return &Batcher{Atlas: t}
}

// Batch writes every visible face of the layer into s, visiting cells in
// x, y, z order, and returns the vertex count. s must already hold enough
// room (see Layer.Capacity); if it does not, nothing is kept and
// ErrCapacityExceeded is returned.
func (b *Batcher) Batch(g *voxel.Grid, nb Neighbors, layer Layer, s *Scratch) (int, error) {
	limit := s.Cap()
	s.Truncate(limit)

	half := voxel.CubeSize / 2
	step := b.Atlas.Step()
	want := layer.shape()
	n := 0

	for x := range voxel.Size {
		for y := range voxel.Size {
			for z := range voxel.Size {
				v := g[x][y][z]
				if v.Type().Shape() != want {
					continue
				}
				offset := mgl32.Vec3{
					float32(x) * voxel.CubeSize,
					float32(y) * voxel.CubeSize,
					float32(z) * voxel.CubeSize,
				}

				if want == voxel.ShapeCross {
					for plane := range CrossPlanes {
						if n+VerticesPerFace > limit {
							return b.overflow(s, n, limit)
						}
						origin := b.Atlas.Origin(v.Type(), plane)
						n = emit(s, n, &crossQuads[plane], offset, half, origin, step)
					}
					continue
				}

				for f := range Face(CubeFaces) {
					if !FaceVisible(g, nb, x, y, z, f) {
						continue
					}
					if n+VerticesPerFace > limit {
						return b.overflow(s, n, limit)
					}
					origin := b.Atlas.Origin(v.Type(), f.group(v))
					n = emit(s, n, &cubeQuads[f], offset, half, origin, step)
				}
			}
		}
	}

	s.Truncate(n)
	return n, nil
}

func (b *Batcher) overflow(s *Scratch, n, limit int) (int, error) {
	s.Reset()
	return 0, fmt.Errorf("%w: need more than %d vertices, have %d", ErrCapacityExceeded, n, limit)
}

// emit writes one quad as two triangles starting at vertex n.
func emit(s *Scratch, n int, q *quad, offset mgl32.Vec3, half float32, origin mgl32.Vec2, step float32) int {
	for _, c := range quadOrder {
		corner := q[c]
		s.Positions[n] = mgl32.Vec3{
			corner[0]*half + offset[0],
			corner[1]*half + offset[1],
			corner[2]*half + offset[2],
		}
		uv := quadUV[c]
		s.UVs[n] = mgl32.Vec2{origin[0] + uv[0]*step, origin[1] + uv[1]*step}
		n++
	}
	return n
}
