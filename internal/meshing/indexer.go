package meshing

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMalformedInput rejects flat streams the indexer cannot pair into triangles.
var ErrMalformedInput = errors.New("meshing: malformed vertex stream")

// IndexedMesh is the deduplicated, GPU-ready form of one layer of a chunk.
type IndexedMesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount is the number of unique vertices.
func (m *IndexedMesh) VertexCount() int { return len(m.Positions) }

// TriangleCount is len(Indices)/3.
func (m *IndexedMesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether there is nothing to draw.
func (m *IndexedMesh) IsEmpty() bool { return m == nil || len(m.Indices) == 0 }

// Validate checks the buffer shape and that every index addresses a vertex.
func (m *IndexedMesh) Validate() error {
	if len(m.Positions) != len(m.UVs) {
		return fmt.Errorf("%w: %d positions, %d uvs", ErrMalformedInput, len(m.Positions), len(m.UVs))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrMalformedInput, len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrMalformedInput, idx, i, n)
		}
	}
	return nil
}

// vertexKey compares vertices bit for bit. Inputs come from a fixed table of
// quantized offsets, so duplicates are bit-identical.
type vertexKey [5]uint32

func keyOf(p mgl32.Vec3, uv mgl32.Vec2) vertexKey {
	return vertexKey{
		math.Float32bits(p[0]), math.Float32bits(p[1]), math.Float32bits(p[2]),
		math.Float32bits(uv[0]), math.Float32bits(uv[1]),
	}
}

// Indexer keeps its lookup table between calls to avoid reallocating it.
// Not safe for concurrent use.
type Indexer struct {
	seen map[vertexKey]uint32
}

// NewIndexer returns an indexer sized for a typical chunk.
func NewIndexer() *Indexer {
	return &Indexer{seen: make(map[vertexKey]uint32, 4096)}
}

// Index collapses the flat streams into unique vertices and an index buffer.
// Each group of three consecutive entries is one triangle. Indices are
// assigned in first-seen order. The result never aliases the inputs.
func (ix *Indexer) Index(positions []mgl32.Vec3, uvs []mgl32.Vec2) (*IndexedMesh, error) {
	if len(positions) != len(uvs) {
		return nil, fmt.Errorf("%w: %d positions, %d uvs", ErrMalformedInput, len(positions), len(uvs))
	}
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertices is not a whole number of triangles", ErrMalformedInput, len(positions))
	}
	if uint64(len(positions)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d vertices overflow 32-bit indices", ErrMalformedInput, len(positions))
	}
	if ix.seen == nil {
		ix.seen = make(map[vertexKey]uint32, len(positions))
	}
	clear(ix.seen)

	out := &IndexedMesh{
		Indices: make([]uint32, len(positions)),
	}
	for i, p := range positions {
		k := keyOf(p, uvs[i])
		idx, ok := ix.seen[k]
		if !ok {
			idx = uint32(len(out.Positions))
			ix.seen[k] = idx
			out.Positions = append(out.Positions, p)
			out.UVs = append(out.UVs, uvs[i])
		}
		out.Indices[i] = idx
	}
	return out, nil
}

// Index is a one-shot helper around a fresh Indexer.
func Index(positions []mgl32.Vec3, uvs []mgl32.Vec2) (*IndexedMesh, error) {
	return NewIndexer().Index(positions, uvs)
}
