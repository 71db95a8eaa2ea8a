package meshing

import (
	"fmt"

	"cubecraft/internal/profiling"
	"cubecraft/internal/voxel"
)

// ChunkMeshes holds both layers of one chunk.
type ChunkMeshes struct {
	Opaque  *IndexedMesh
	Foliage *IndexedMesh
}

// Layer returns the mesh of one layer.
func (m ChunkMeshes) Layer(l Layer) *IndexedMesh {
	if l == LayerFoliage {
		return m.Foliage
	}
	return m.Opaque
}

// BuildChunkMeshes runs batch and index for every layer of a grid snapshot.
// Either layer failing fails the whole chunk so callers keep the old geometry.
func BuildChunkMeshes(b *Batcher, g *voxel.Grid, nb Neighbors, s *Scratch, ix *Indexer) (ChunkMeshes, error) {
	var out ChunkMeshes
	for _, layer := range [...]Layer{LayerOpaque, LayerFoliage} {
		m, err := buildLayer(b, g, nb, layer, s, ix)
		if err != nil {
			return ChunkMeshes{}, fmt.Errorf("%s layer: %w", layer, err)
		}
		if layer == LayerFoliage {
			out.Foliage = m
		} else {
			out.Opaque = m
		}
	}
	return out, nil
}

func buildLayer(b *Batcher, g *voxel.Grid, nb Neighbors, layer Layer, s *Scratch, ix *Indexer) (*IndexedMesh, error) {
	s.Reserve(layer.Capacity())
	defer s.Reset()

	stop := profiling.Track("meshing.Batch")
	_, err := b.Batch(g, nb, layer, s)
	stop()
	if err != nil {
		return nil, err
	}

	defer profiling.Track("meshing.Index")()
	return ix.Index(s.Positions, s.UVs)
}
