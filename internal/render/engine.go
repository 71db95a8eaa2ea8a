package render

import (
	"fmt"
	"image"
	"slices"
	"time"

	"cubecraft/internal/meshing"
	"cubecraft/internal/postfx"
	"cubecraft/internal/profiling"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	Width  int
	Height int
	// FPS caps the frame rate. Zero draws on every Render call.
	FPS float64
	// UploadQueue is the capacity of the mesh result channel.
	UploadQueue int
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, FPS: 60, UploadQueue: 256}
}

// FrameStats describes the frames drawn so far.
type FrameStats struct {
	Frames    uint64
	FrameTime time.Duration
	FPS       float64
}

type chunkSlot struct {
	renderers [2]*ChunkRenderer
	version   uint64
}

// Engine draws every allocated chunk renderer once per frame and applies
// finished meshes handed over by worker goroutines. Apart from Results, its
// methods must be called from the render thread.
type Engine struct {
	backend Backend
	log     *zap.Logger
	opts    Options
	camera  *Camera
	now     func() time.Time

	renderers []*ChunkRenderer
	shaders   [2]ShaderHandle
	texture   TextureHandle

	// frame pacing
	previous   time.Time
	lag        float64
	elapsed    float64
	fpsCounter int
	stats      FrameStats

	results chan meshing.MeshResult
	pending map[voxel.Coord]meshing.MeshResult
	order   []voxel.Coord
	chunks  map[voxel.Coord]*chunkSlot

	uploadFailed func(voxel.Coord)
}

func NewEngine(b Backend, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		backend: b,
		log:     log,
		opts:    opts,
		camera:  NewCamera(opts.Width, opts.Height),
		now:     now,
		results: make(chan meshing.MeshResult, max(opts.UploadQueue, 1)),
		pending: make(map[voxel.Coord]meshing.MeshResult),
		chunks:  make(map[voxel.Coord]*chunkSlot),
	}
}

func (e *Engine) Camera() *Camera { return e.camera }

// SetCamera replaces the active camera.
func (e *Engine) SetCamera(c *Camera) { e.camera = c }

// SetLayerShader sets the program used by renderers of a layer.
func (e *Engine) SetLayerShader(l meshing.Layer, s ShaderHandle) {
	e.shaders[l] = s
	for _, r := range e.renderers {
		if r.layer == l {
			r.shader = s
		}
	}
}

// SetTexture sets the atlas texture bound for every draw.
func (e *Engine) SetTexture(t TextureHandle) {
	e.texture = t
	for _, r := range e.renderers {
		r.texture = t
	}
}

// SetViewport resizes the frame and the camera aspect.
func (e *Engine) SetViewport(width, height int) {
	e.opts.Width, e.opts.Height = width, height
	e.camera.SetViewport(width, height)
}

// AllocateChunkRenderer registers a new renderer. Renderers are drawn in
// allocation order.
func (e *Engine) AllocateChunkRenderer(l meshing.Layer) *ChunkRenderer {
	r := newChunkRenderer(e.backend, l)
	r.shader = e.shaders[l]
	r.texture = e.texture
	e.renderers = append(e.renderers, r)
	return r
}

// ReleaseChunkRenderer frees r's GPU mesh and unregisters it.
func (e *Engine) ReleaseChunkRenderer(r *ChunkRenderer) {
	if r == nil {
		return
	}
	if i := slices.Index(e.renderers, r); i >= 0 {
		e.renderers = slices.Delete(e.renderers, i, i+1)
	}
	r.Release()
}

// Renderers returns the number of registered renderers.
func (e *Engine) Renderers() int { return len(e.renderers) }

// Render draws a frame once enough time has built up for the FPS cap and
// reports whether it did. The remaining lag carries to the next call.
func (e *Engine) Render() bool {
	now := e.now()
	if e.previous.IsZero() {
		e.previous = now
	}
	dt := now.Sub(e.previous).Seconds()
	e.previous = now
	e.lag += dt
	e.elapsed += dt

	if e.elapsed >= 1.0 {
		e.stats.FPS = float64(e.fpsCounter) / e.elapsed
		e.elapsed = 0
		e.fpsCounter = 0
	}

	var delta float64
	if e.opts.FPS > 0 {
		delta = 1.0 / e.opts.FPS
	}
	if e.lag < delta {
		return false
	}
	e.lag -= delta

	begin := e.now()
	e.RenderFrame()
	e.stats.FrameTime = e.now().Sub(begin)
	e.stats.Frames++
	e.fpsCounter++
	return true
}

// RenderFrame clears and draws every non-empty renderer with proj*view*model.
func (e *Engine) RenderFrame() {
	defer profiling.Track("render.Frame")()

	e.backend.Clear()
	pv := e.camera.GetProjectionMatrix().Mul4(e.camera.GetViewMatrix())
	for _, r := range e.renderers {
		if r.elements == 0 {
			continue
		}
		e.backend.Draw(DrawCall{
			Mesh:     r.mesh,
			Elements: r.elements,
			Shader:   r.shader,
			Texture:  r.texture,
			MVP:      pv.Mul4(r.model),
		})
	}
}

func (e *Engine) FrameStats() FrameStats { return e.stats }

// Results is where mesh workers deliver finished chunks. Safe to use from
// any goroutine.
func (e *Engine) Results() chan<- meshing.MeshResult { return e.results }

// ProcessUploads drains delivered meshes and uploads at most budget chunks,
// oldest first. Results older than what a chunk already shows, or replaced by
// a newer result before upload, are dropped. budget <= 0 uploads everything.
// It returns the number of chunks uploaded.
func (e *Engine) ProcessUploads(budget int) int {
	e.drainResults()

	applied := 0
	for len(e.order) > 0 && (budget <= 0 || applied < budget) {
		c := e.order[0]
		e.order = e.order[1:]
		res := e.pending[c]
		delete(e.pending, c)
		if e.apply(res) {
			applied++
		}
	}
	return applied
}

// SetUploadFailed registers f to hear about chunks whose upload failed.
// Their previous geometry and version stay, so f should schedule a re-mesh.
func (e *Engine) SetUploadFailed(f func(c voxel.Coord)) { e.uploadFailed = f }

// PendingUploads is the number of chunks waiting for an upload slot.
func (e *Engine) PendingUploads() int { return len(e.order) }

func (e *Engine) drainResults() {
	for {
		select {
		case res := <-e.results:
			if prev, ok := e.pending[res.Coord]; ok {
				if res.Version < prev.Version {
					continue
				}
				e.pending[res.Coord] = res
				continue
			}
			e.pending[res.Coord] = res
			e.order = append(e.order, res.Coord)
		default:
			return
		}
	}
}

func (e *Engine) apply(res meshing.MeshResult) bool {
	log := e.log.With(zap.Int("x", res.Coord.X), zap.Int("y", res.Coord.Y), zap.Int("z", res.Coord.Z))
	if res.Err != nil {
		log.Warn("keeping previous chunk geometry", zap.Error(res.Err))
		return false
	}

	slot, ok := e.chunks[res.Coord]
	if ok && res.Version <= slot.version {
		log.Debug("dropping stale mesh", zap.Uint64("version", res.Version), zap.Uint64("current", slot.version))
		return false
	}
	if !ok {
		slot = &chunkSlot{}
		ox, oy, oz := res.Coord.Origin()
		offset := mgl32.Vec3{float32(ox), float32(oy), float32(oz)}.Mul(voxel.CubeSize)
		for _, l := range [...]meshing.Layer{meshing.LayerOpaque, meshing.LayerFoliage} {
			r := e.AllocateChunkRenderer(l)
			r.Translate(offset)
			slot.renderers[l] = r
		}
		e.chunks[res.Coord] = slot
	}

	defer profiling.Track("render.Upload")()
	// both layers switch together or not at all
	var next [2]staged
	for l, r := range slot.renderers {
		s, err := r.stageMesh(res.Meshes.Layer(meshing.Layer(l)))
		if err != nil {
			for i := range l {
				slot.renderers[i].discard(next[i])
			}
			log.Error("chunk upload failed, keeping previous geometry", zap.Stringer("layer", meshing.Layer(l)), zap.Error(err))
			if e.uploadFailed != nil {
				e.uploadFailed(res.Coord)
			}
			return false
		}
		next[l] = s
	}
	for l, r := range slot.renderers {
		r.commit(next[l])
	}
	slot.version = res.Version
	return true
}

// ReleaseChunk drops the renderers of a chunk.
func (e *Engine) ReleaseChunk(c voxel.Coord) {
	slot, ok := e.chunks[c]
	if !ok {
		return
	}
	for _, r := range slot.renderers {
		e.ReleaseChunkRenderer(r)
	}
	delete(e.chunks, c)
}

// ChunkVersion reports the version of the mesh a chunk currently shows.
func (e *Engine) ChunkVersion(c voxel.Coord) (uint64, bool) {
	slot, ok := e.chunks[c]
	if !ok {
		return 0, false
	}
	return slot.version, true
}

// Capture draws a frame, reads it back and runs it through the effect
// stack. A nil stack returns the raw frame.
func (e *Engine) Capture(stack *postfx.Stack, lightPos mgl32.Vec2) (*image.RGBA, error) {
	e.RenderFrame()
	img, err := e.backend.ReadPixels(e.opts.Width, e.opts.Height)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if stack == nil {
		return img, nil
	}
	return stack.Apply(postfx.Inputs{Color: img, LightPos: lightPos})
}

// Shutdown releases every renderer.
func (e *Engine) Shutdown() {
	for _, r := range e.renderers {
		r.Release()
	}
	e.renderers = nil
	clear(e.chunks)
}
