// Package glbackend implements render.Backend on OpenGL 4.1 core.
// Every method must run on the thread that owns the GL context.
package glbackend

import (
	"errors"
	"fmt"
	"image"

	"cubecraft/internal/meshing"
	"cubecraft/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var errUnknownShader = errors.New("glbackend: unknown shader")

type mesh struct {
	vao, positions, uvs, indices uint32
}

// Backend owns every GL object it creates.
type Backend struct {
	log      *zap.Logger
	meshes   map[render.MeshHandle]mesh
	programs map[render.ShaderHandle]*program
	layers   [2]render.ShaderHandle
	textures map[render.TextureHandle]uint32
	next     uint32
}

var _ render.Backend = (*Backend)(nil)

// New loads GL entry points, sets the fixed pipeline state and builds the
// chunk programs.
func New(log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	log.Info("OpenGL ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(0.0, 0.709, 0.866, 1.0)

	b := &Backend{
		log:      log,
		meshes:   make(map[render.MeshHandle]mesh),
		programs: make(map[render.ShaderHandle]*program),
		textures: make(map[render.TextureHandle]uint32),
	}

	sources := [2]string{opaqueFragmentShader, foliageFragmentShader}
	for l, frag := range sources {
		p, err := newProgram(chunkVertexShader, frag)
		if err != nil {
			b.Shutdown()
			return nil, fmt.Errorf("%s program: %w", meshing.Layer(l), err)
		}
		b.next++
		h := render.ShaderHandle(b.next)
		b.programs[h] = p
		b.layers[l] = h
	}
	return b, nil
}

// Shader returns the program for a layer.
func (b *Backend) Shader(l meshing.Layer) render.ShaderHandle { return b.layers[l] }

func (b *Backend) CreateMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) (render.MeshHandle, error) {
	if len(indices) == 0 || len(positions) == 0 || len(positions) != len(uvs) {
		return 0, fmt.Errorf("%w: %d indices, %d positions, %d uvs",
			meshing.ErrMalformedInput, len(indices), len(positions), len(uvs))
	}

	var m mesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.positions)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.positions)
	gl.BufferData(gl.ARRAY_BUFFER, len(positions)*3*4, gl.Ptr(positions), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &m.uvs)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.uvs)
	gl.BufferData(gl.ARRAY_BUFFER, len(uvs)*2*4, gl.Ptr(uvs), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &m.indices)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.indices)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		b.deleteMesh(m)
		return 0, fmt.Errorf("glbackend: mesh upload failed with 0x%x", code)
	}

	b.next++
	h := render.MeshHandle(b.next)
	b.meshes[h] = m
	return h, nil
}

func (b *Backend) DeleteMesh(h render.MeshHandle) {
	m, ok := b.meshes[h]
	if !ok {
		return
	}
	b.deleteMesh(m)
	delete(b.meshes, h)
}

func (b *Backend) deleteMesh(m mesh) {
	bufs := []uint32{m.positions, m.uvs, m.indices}
	gl.DeleteBuffers(int32(len(bufs)), &bufs[0])
	gl.DeleteVertexArrays(1, &m.vao)
}

func (b *Backend) Draw(dc render.DrawCall) {
	m, ok := b.meshes[dc.Mesh]
	if !ok {
		return
	}
	p, ok := b.programs[dc.Shader]
	if !ok {
		b.log.Warn("draw skipped", zap.Error(errUnknownShader), zap.Uint32("shader", uint32(dc.Shader)))
		return
	}

	gl.UseProgram(p.id)
	gl.UniformMatrix4fv(p.mvp, 1, false, &dc.MVP[0])
	if tex, ok := b.textures[dc.Texture]; ok {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(p.atlas, 0)
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, dc.Elements, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (b *Backend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetViewport resizes the GL viewport.
func (b *Backend) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ReadPixels reads the back buffer, flipped so row 0 is the top.
func (b *Backend) ReadPixels(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glbackend: bad frame size %dx%d", width, height)
	}
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

func (b *Backend) CreateTexture(img *image.RGBA, nearest bool) (render.TextureHandle, error) {
	size := img.Rect.Size()
	if size.X == 0 || size.Y == 0 {
		return 0, fmt.Errorf("glbackend: empty texture")
	}

	filter := int32(gl.LINEAR)
	if nearest {
		filter = gl.NEAREST
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(size.X),
		int32(size.Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	b.next++
	h := render.TextureHandle(b.next)
	b.textures[h] = texture
	return h, nil
}

func (b *Backend) DeleteTexture(h render.TextureHandle) {
	tex, ok := b.textures[h]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &tex)
	delete(b.textures, h)
}

// Shutdown deletes every GL object still owned by the backend.
func (b *Backend) Shutdown() {
	for h := range b.meshes {
		b.DeleteMesh(h)
	}
	for h := range b.textures {
		b.DeleteTexture(h)
	}
	for h, p := range b.programs {
		gl.DeleteProgram(p.id)
		delete(b.programs, h)
	}
}
