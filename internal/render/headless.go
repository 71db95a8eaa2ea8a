package render

import (
	"image"
	"image/draw"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Headless is a Backend without a GPU. It keeps element counts per mesh and
// the draw calls of the current frame so tools and tests can inspect what
// would have been drawn.
type Headless struct {
	mu       sync.Mutex
	next     uint32
	meshes   map[MeshHandle]int
	textures map[TextureHandle]image.Rectangle
	draws    []DrawCall
	frames   int
	frame    *image.RGBA

	failErr   error
	failAfter int
}

func NewHeadless() *Headless {
	return &Headless{
		meshes:   make(map[MeshHandle]int),
		textures: make(map[TextureHandle]image.Rectangle),
	}
}

// FailMeshes makes CreateMesh return err once n more meshes have been
// created. A nil err turns failures off.
func (h *Headless) FailMeshes(err error, n int) {
	h.mu.Lock()
	h.failErr, h.failAfter = err, n
	h.mu.Unlock()
}

func (h *Headless) CreateMesh(indices []uint32, positions []mgl32.Vec3, uvs []mgl32.Vec2) (MeshHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failErr != nil {
		if h.failAfter == 0 {
			return 0, h.failErr
		}
		h.failAfter--
	}
	h.next++
	m := MeshHandle(h.next)
	h.meshes[m] = len(indices)
	return m, nil
}

func (h *Headless) DeleteMesh(m MeshHandle) {
	h.mu.Lock()
	delete(h.meshes, m)
	h.mu.Unlock()
}

func (h *Headless) Draw(dc DrawCall) {
	h.mu.Lock()
	h.draws = append(h.draws, dc)
	h.mu.Unlock()
}

// Clear starts a new frame.
func (h *Headless) Clear() {
	h.mu.Lock()
	h.frames++
	h.draws = h.draws[:0]
	h.mu.Unlock()
}

// SetFrame sets the image ReadPixels reads from.
func (h *Headless) SetFrame(img *image.RGBA) {
	h.mu.Lock()
	h.frame = img
	h.mu.Unlock()
}

// ReadPixels copies the frame set with SetFrame into a width x height image.
// Without one the frame is transparent.
func (h *Headless) ReadPixels(width, height int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frame != nil {
		draw.Draw(img, img.Rect, h.frame, h.frame.Rect.Min, draw.Src)
	}
	return img, nil
}

func (h *Headless) CreateTexture(img *image.RGBA, nearest bool) (TextureHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	t := TextureHandle(h.next)
	h.textures[t] = img.Rect
	return t, nil
}

func (h *Headless) DeleteTexture(t TextureHandle) {
	h.mu.Lock()
	delete(h.textures, t)
	h.mu.Unlock()
}

// Meshes returns the number of live meshes and their total element count.
func (h *Headless) Meshes() (count, elements int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range h.meshes {
		elements += n
	}
	return len(h.meshes), elements
}

// Draws returns the draw calls issued since the last Clear.
func (h *Headless) Draws() []DrawCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]DrawCall(nil), h.draws...)
}

// Frames returns how many frames were cleared.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}
