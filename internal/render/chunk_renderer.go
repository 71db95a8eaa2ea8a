package render

import (
	"fmt"

	"cubecraft/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawHandle is what the engine needs to issue a draw for one renderer.
type DrawHandle struct {
	Mesh     MeshHandle
	Elements int32
	Shader   ShaderHandle
}

// ChunkRenderer owns the GPU copy of one layer of one chunk.
type ChunkRenderer struct {
	backend  Backend
	layer    meshing.Layer
	shader   ShaderHandle
	texture  TextureHandle
	mesh     MeshHandle
	elements int32
	model    mgl32.Mat4
}

func newChunkRenderer(b Backend, layer meshing.Layer) *ChunkRenderer {
	return &ChunkRenderer{backend: b, layer: layer, model: mgl32.Ident4()}
}

// staged is an uploaded mesh that is not drawn yet.
type staged struct {
	mesh     MeshHandle
	elements int32
}

// Initialize replaces the GPU mesh with the given buffers. Empty input leaves
// the renderer with nothing to draw. Rejected buffers or a failed upload keep
// the previous mesh.
func (r *ChunkRenderer) Initialize(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) error {
	s, err := r.stage(indices, positions, uvs)
	if err != nil {
		return err
	}
	r.commit(s)
	return nil
}

// Upload is Initialize over an indexer result.
func (r *ChunkRenderer) Upload(m *meshing.IndexedMesh) error {
	s, err := r.stageMesh(m)
	if err != nil {
		return err
	}
	r.commit(s)
	return nil
}

func (r *ChunkRenderer) stageMesh(m *meshing.IndexedMesh) (staged, error) {
	if m.IsEmpty() {
		return staged{}, nil
	}
	return r.stage(m.Indices, m.Positions, m.UVs)
}

func (r *ChunkRenderer) stage(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) (staged, error) {
	if len(indices) == 0 {
		return staged{}, nil
	}
	m := meshing.IndexedMesh{Positions: positions, UVs: uvs, Indices: indices}
	if err := m.Validate(); err != nil {
		return staged{}, err
	}
	h, err := r.backend.CreateMesh(indices, positions, uvs)
	if err != nil {
		return staged{}, fmt.Errorf("upload %s mesh: %w", r.layer, err)
	}
	return staged{mesh: h, elements: int32(len(indices))}, nil
}

// commit shows s and frees the mesh it replaces.
func (r *ChunkRenderer) commit(s staged) {
	r.Release()
	r.mesh, r.elements = s.mesh, s.elements
}

func (r *ChunkRenderer) discard(s staged) {
	if s.mesh != 0 {
		r.backend.DeleteMesh(s.mesh)
	}
}

// Translate moves the model by offset without touching GPU buffers.
func (r *ChunkRenderer) Translate(offset mgl32.Vec3) {
	r.model = r.model.Mul4(mgl32.Translate3D(offset[0], offset[1], offset[2]))
}

// Model returns the model matrix.
func (r *ChunkRenderer) Model() mgl32.Mat4 { return r.model }

// Layer returns the layer this renderer draws.
func (r *ChunkRenderer) Layer() meshing.Layer { return r.layer }

func (r *ChunkRenderer) Handle() DrawHandle {
	return DrawHandle{Mesh: r.mesh, Elements: r.elements, Shader: r.shader}
}

// Release frees the GPU mesh. The renderer stays usable.
func (r *ChunkRenderer) Release() {
	if r.mesh != 0 {
		r.backend.DeleteMesh(r.mesh)
	}
	r.mesh = 0
	r.elements = 0
}
