package meshing

import "go.uber.org/zap"

// Stats totals the geometry of a set of mesh results.
type Stats struct {
	Chunks int
	Failed int
	// Per layer: unique vertices, indices and flat vertices before indexing.
	Vertices [2]int
	Indices  [2]int
}

func (s *Stats) Add(r MeshResult) {
	if r.Err != nil {
		s.Failed++
		return
	}
	s.Chunks++
	for _, l := range [...]Layer{LayerOpaque, LayerFoliage} {
		m := r.Meshes.Layer(l)
		if m.IsEmpty() {
			continue
		}
		s.Vertices[l] += m.VertexCount()
		s.Indices[l] += len(m.Indices)
	}
}

// Reuse is the share of flat vertices removed by indexing.
func (s *Stats) Reuse(l Layer) float64 {
	if s.Indices[l] == 0 {
		return 0
	}
	return 1 - float64(s.Vertices[l])/float64(s.Indices[l])
}

func (s *Stats) Fields() []zap.Field {
	fields := []zap.Field{zap.Int("chunks", s.Chunks), zap.Int("failed", s.Failed)}
	for _, l := range [...]Layer{LayerOpaque, LayerFoliage} {
		fields = append(fields, zap.Dict(l.String(),
			zap.Int("vertices", s.Vertices[l]),
			zap.Int("indices", s.Indices[l]),
			zap.Int("triangles", s.Indices[l]/3),
			zap.Float64("reuse", s.Reuse(l)),
		))
	}
	return fields
}
