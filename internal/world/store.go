package world

import (
	"sort"
	"sync"

	"cubecraft/internal/voxel"
)

// ChunkStore indexes chunks by coordinate.
type ChunkStore struct {
	chunks map[voxel.Coord]*voxel.Chunk
	mu     sync.RWMutex
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[voxel.Coord]*voxel.Chunk)}
}

// GetChunk returns the chunk at c. If it doesn't exist and create is true,
// an empty one is added.
func (cs *ChunkStore) GetChunk(c voxel.Coord, create bool) *voxel.Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[c]
	cs.mu.RUnlock()
	if exists || !create {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check locking: another goroutine might have created it meanwhile
	if existing, ok := cs.chunks[c]; ok {
		return existing
	}
	chunk = voxel.NewChunk(c)
	cs.chunks[c] = chunk
	return chunk
}

// Put stores chunk under its own coordinate, replacing any previous one.
func (cs *ChunkStore) Put(chunk *voxel.Chunk) {
	cs.mu.Lock()
	cs.chunks[chunk.Coord] = chunk
	cs.mu.Unlock()
}

// Len returns the number of stored chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// All returns every chunk ordered by X, then Y, then Z.
func (cs *ChunkStore) All() []*voxel.Chunk {
	cs.mu.RLock()
	out := make([]*voxel.Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return lessCoord(out[i].Coord, out[j].Coord) })
	return out
}

func lessCoord(a, b voxel.Coord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// ChunkOf splits a world voxel coordinate into its chunk and local cell.
func ChunkOf(x, y, z int) (voxel.Coord, int, int, int) {
	c := voxel.Coord{X: floorDiv(x, voxel.Size), Y: floorDiv(y, voxel.Size), Z: floorDiv(z, voxel.Size)}
	return c, mod(x, voxel.Size), mod(y, voxel.Size), mod(z, voxel.Size)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
