// Package render draws chunk meshes through a GPU backend.
package render

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Handles are backend-assigned names. Zero means "none".
type (
	MeshHandle    uint32
	ShaderHandle  uint32
	TextureHandle uint32
)

// DrawCall is one indexed triangle draw.
type DrawCall struct {
	Mesh     MeshHandle
	Elements int32
	Shader   ShaderHandle
	Texture  TextureHandle
	MVP      mgl32.Mat4
}

// Backend is the GPU boundary. All methods are called from the render thread.
type Backend interface {
	CreateMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) (MeshHandle, error)
	DeleteMesh(h MeshHandle)
	Draw(dc DrawCall)
	Clear()
	ReadPixels(width, height int) (*image.RGBA, error)
	CreateTexture(img *image.RGBA, nearest bool) (TextureHandle, error)
	DeleteTexture(h TextureHandle)
}
