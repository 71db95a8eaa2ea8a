package render

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"cubecraft/internal/meshing"
	"cubecraft/internal/postfx"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errUpload = errors.New("out of video memory")

type fakeClock struct{ t time.Time }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1000, 0)} }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, fps float64) (*Engine, *Headless, *fakeClock) {
	t.Helper()
	b := NewHeadless()
	clk := newClock()
	opts := DefaultOptions()
	opts.FPS = fps
	opts.Width, opts.Height = 8, 4
	opts.Clock = clk.now
	return NewEngine(b, opts, zaptest.NewLogger(t)), b, clk
}

func singleStone(t *testing.T) meshing.ChunkMeshes {
	t.Helper()
	var g voxel.Grid
	g.Set(0, 0, 0, voxel.Of(voxel.Stone))
	g.Set(0, 1, 0, voxel.Of(voxel.Flower))
	m, err := meshing.BuildChunkMeshes(meshing.NewBatcher(nil), &g, nil, meshing.NewScratch(0), meshing.NewIndexer())
	require.NoError(t, err)
	return m
}

func meshCount(b *Headless) int {
	n, _ := b.Meshes()
	return n
}

func TestChunkRendererEmptyInput(t *testing.T) {
	b := NewHeadless()
	r := newChunkRenderer(b, meshing.LayerOpaque)
	require.NoError(t, r.Initialize(nil, nil, nil))
	assert.Zero(t, r.Handle().Elements)
	assert.Zero(t, r.Handle().Mesh)
	assert.Zero(t, meshCount(b))
}

func TestChunkRendererReinitializeReleasesOld(t *testing.T) {
	b := NewHeadless()
	r := newChunkRenderer(b, meshing.LayerOpaque)
	m := singleStone(t)

	require.NoError(t, r.Upload(m.Opaque))
	first := r.Handle().Mesh
	assert.Equal(t, int32(36), r.Handle().Elements)

	require.NoError(t, r.Upload(m.Opaque))
	assert.NotEqual(t, first, r.Handle().Mesh)
	assert.Equal(t, 1, meshCount(b), "old mesh must be deleted")

	require.NoError(t, r.Upload(&meshing.IndexedMesh{}))
	assert.Zero(t, meshCount(b))
	assert.Zero(t, r.Handle().Elements)
}

func TestChunkRendererRejectsBadBuffers(t *testing.T) {
	b := NewHeadless()
	r := newChunkRenderer(b, meshing.LayerOpaque)
	err := r.Initialize([]uint32{0, 1, 5}, make([]mgl32.Vec3, 3), make([]mgl32.Vec2, 3))
	assert.ErrorIs(t, err, meshing.ErrMalformedInput)
	assert.Zero(t, meshCount(b))

	b.FailMeshes(errUpload, 0)
	m := singleStone(t)
	assert.ErrorIs(t, r.Upload(m.Opaque), errUpload)
	assert.Zero(t, r.Handle().Elements)
	assert.Zero(t, meshCount(b))
}

func TestChunkRendererKeepsMeshOnFailedUpload(t *testing.T) {
	b := NewHeadless()
	r := newChunkRenderer(b, meshing.LayerOpaque)
	m := singleStone(t)
	require.NoError(t, r.Upload(m.Opaque))
	before := r.Handle()

	err := r.Initialize([]uint32{0, 1, 5}, make([]mgl32.Vec3, 3), make([]mgl32.Vec2, 3))
	require.ErrorIs(t, err, meshing.ErrMalformedInput)
	assert.Equal(t, before, r.Handle())

	b.FailMeshes(errUpload, 0)
	require.ErrorIs(t, r.Upload(m.Opaque), errUpload)
	assert.Equal(t, before, r.Handle())
	count, elements := b.Meshes()
	assert.Equal(t, 1, count)
	assert.Equal(t, 36, elements)

	b.FailMeshes(nil, 0)
	require.NoError(t, r.Upload(m.Opaque))
	assert.NotEqual(t, before.Mesh, r.Handle().Mesh)
	assert.Equal(t, 1, meshCount(b))
}

func TestChunkRendererTranslate(t *testing.T) {
	r := newChunkRenderer(NewHeadless(), meshing.LayerOpaque)
	r.Translate(mgl32.Vec3{16, 0, 0})
	r.Translate(mgl32.Vec3{0, 0, 32})
	p := r.Model().Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	assert.Equal(t, mgl32.Vec4{17, 2, 35, 1}, p)
}

func TestRenderDrawsInAllocationOrder(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	e.SetLayerShader(meshing.LayerOpaque, 7)
	m := singleStone(t)

	first := e.AllocateChunkRenderer(meshing.LayerOpaque)
	empty := e.AllocateChunkRenderer(meshing.LayerFoliage)
	second := e.AllocateChunkRenderer(meshing.LayerOpaque)
	require.NoError(t, first.Upload(m.Opaque))
	require.NoError(t, second.Upload(m.Opaque))
	second.Translate(mgl32.Vec3{16, 0, 0})

	assert.True(t, e.Render())
	draws := b.Draws()
	require.Len(t, draws, 2, "empty renderer is skipped")
	assert.Equal(t, first.Handle().Mesh, draws[0].Mesh)
	assert.Equal(t, second.Handle().Mesh, draws[1].Mesh)
	assert.Equal(t, ShaderHandle(7), draws[0].Shader)

	cam := e.Camera()
	want := cam.GetProjectionMatrix().Mul4(cam.GetViewMatrix()).Mul4(second.Model())
	assert.True(t, want.ApproxEqual(draws[1].MVP))

	e.ReleaseChunkRenderer(first)
	e.ReleaseChunkRenderer(empty)
	assert.Equal(t, 1, e.Renderers())
	e.RenderFrame()
	draws = b.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, second.Handle().Mesh, draws[0].Mesh)
}

func TestRenderFramePacing(t *testing.T) {
	e, b, clk := newTestEngine(t, 10)

	assert.False(t, e.Render(), "no lag on the first call")
	clk.advance(60 * time.Millisecond)
	assert.False(t, e.Render())
	clk.advance(60 * time.Millisecond)
	assert.True(t, e.Render())
	// 20ms of lag carried over
	clk.advance(85 * time.Millisecond)
	assert.True(t, e.Render())
	assert.Equal(t, 2, b.Frames())
	assert.Equal(t, uint64(2), e.FrameStats().Frames)

	for range 8 {
		clk.advance(100 * time.Millisecond)
		e.Render()
	}
	stats := e.FrameStats()
	assert.InDelta(t, 10, stats.FPS, 3)
}

func TestProcessUploadsBudgetAndStaleness(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	m := singleStone(t)

	for x := range 3 {
		e.Results() <- meshing.MeshResult{Coord: voxel.Coord{X: x}, Version: 1, Meshes: m}
	}
	// a newer mesh for chunk 0 replaces the queued one
	e.Results() <- meshing.MeshResult{Coord: voxel.Coord{X: 0}, Version: 2, Meshes: m}
	e.Results() <- meshing.MeshResult{Coord: voxel.Coord{X: 0}, Version: 1, Meshes: m}

	assert.Equal(t, 2, e.ProcessUploads(2))
	assert.Equal(t, 1, e.PendingUploads())
	v, ok := e.ChunkVersion(voxel.Coord{X: 0})
	require.True(t, ok)
	assert.Equal(t, uint64(2), v)

	assert.Equal(t, 1, e.ProcessUploads(2))
	assert.Equal(t, 6, e.Renderers(), "two layers per chunk")
	assert.Equal(t, 6, meshCount(b))

	// an old version arriving late never replaces newer geometry
	e.Results() <- meshing.MeshResult{Coord: voxel.Coord{X: 0}, Version: 1, Meshes: meshing.ChunkMeshes{}}
	assert.Equal(t, 0, e.ProcessUploads(0))
	assert.Equal(t, 6, meshCount(b))
}

func TestProcessUploadsKeepsGeometryOnError(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	m := singleStone(t)
	c := voxel.Coord{Y: 1}

	e.Results() <- meshing.MeshResult{Coord: c, Version: 1, Meshes: m}
	require.Equal(t, 1, e.ProcessUploads(0))
	e.Results() <- meshing.MeshResult{Coord: c, Version: 2, Err: meshing.ErrCapacityExceeded}
	assert.Equal(t, 0, e.ProcessUploads(0))

	v, _ := e.ChunkVersion(c)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 2, meshCount(b))

	e.RenderFrame()
	require.Len(t, b.Draws(), 2)
	origin := mgl32.Vec3{0, 16, 0}
	for _, layer := range []meshing.Layer{meshing.LayerOpaque, meshing.LayerFoliage} {
		assert.Equal(t, origin, e.chunks[c].renderers[layer].Model().Col(3).Vec3())
	}

	e.ReleaseChunk(c)
	assert.Zero(t, meshCount(b))
	assert.Zero(t, e.Renderers())
}

func TestProcessUploadsIsAllOrNothing(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	m := singleStone(t)
	c := voxel.Coord{X: 1}
	var failed []voxel.Coord
	e.SetUploadFailed(func(c voxel.Coord) { failed = append(failed, c) })

	e.Results() <- meshing.MeshResult{Coord: c, Version: 1, Meshes: m}
	require.Equal(t, 1, e.ProcessUploads(0))
	opaque := e.chunks[c].renderers[meshing.LayerOpaque].Handle()
	foliage := e.chunks[c].renderers[meshing.LayerFoliage].Handle()
	require.NotZero(t, opaque.Elements)
	require.NotZero(t, foliage.Elements)

	// the opaque layer uploads, the foliage layer fails
	b.FailMeshes(errUpload, 1)
	e.Results() <- meshing.MeshResult{Coord: c, Version: 2, Meshes: m}
	assert.Equal(t, 0, e.ProcessUploads(0))

	v, _ := e.ChunkVersion(c)
	assert.Equal(t, uint64(1), v, "a failed upload must not count as applied")
	assert.Equal(t, opaque, e.chunks[c].renderers[meshing.LayerOpaque].Handle())
	assert.Equal(t, foliage, e.chunks[c].renderers[meshing.LayerFoliage].Handle())
	assert.Equal(t, 2, meshCount(b), "the staged opaque mesh is freed")
	assert.Equal(t, []voxel.Coord{c}, failed)

	// the same version applies once the backend recovers
	b.FailMeshes(nil, 0)
	e.Results() <- meshing.MeshResult{Coord: c, Version: 2, Meshes: m}
	assert.Equal(t, 1, e.ProcessUploads(0))
	v, _ = e.ChunkVersion(c)
	assert.Equal(t, uint64(2), v)
	assert.NotEqual(t, opaque.Mesh, e.chunks[c].renderers[meshing.LayerOpaque].Handle().Mesh)
	assert.Equal(t, 2, meshCount(b))
}

func TestProcessUploadsFirstFailureLeavesChunkUnapplied(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	c := voxel.Coord{Z: 2}
	b.FailMeshes(errUpload, 0)

	e.Results() <- meshing.MeshResult{Coord: c, Version: 1, Meshes: singleStone(t)}
	assert.Equal(t, 0, e.ProcessUploads(0))
	v, ok := e.ChunkVersion(c)
	if ok {
		assert.Zero(t, v)
	}
	assert.Zero(t, meshCount(b))
	e.RenderFrame()
	assert.Empty(t, b.Draws())
}

func TestCaptureAppliesStack(t *testing.T) {
	e, b, _ := newTestEngine(t, 0)
	frame := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := range 8 {
		frame.SetRGBA(x, 0, color.RGBA{R: uint8(x), A: 255})
	}
	b.SetFrame(frame)

	raw, err := e.Capture(nil, mgl32.Vec2{})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), raw.RGBAAt(0, 0).R)

	var stack postfx.Stack
	stack.Push(postfx.Mirror{})
	out, err := e.Capture(&stack, mgl32.Vec2{})
	require.NoError(t, err)
	assert.Equal(t, uint8(7), out.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), out.RGBAAt(7, 0).R)
}

func TestCameraControls(t *testing.T) {
	c := NewCamera(1600, 900)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio, 1e-6)

	c.SetPosition(mgl32.Vec3{0, 0, 10})
	c.LookAt(mgl32.Vec3{0, 0, 0})
	assert.True(t, c.Direction().ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.True(t, c.Up().ApproxEqual(mgl32.Vec3{0, 1, 0}))

	c.Translate(mgl32.Vec3{5, 0, 0})
	assert.True(t, c.Position().ApproxEqual(mgl32.Vec3{5, 0, 10}))
	assert.True(t, c.Direction().ApproxEqual(mgl32.Vec3{0, 0, -1}), "translate keeps the heading")

	c.Rotate(mgl32.DegToRad(90))
	assert.True(t, c.Direction().ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5), "%v", c.Direction())

	c.RotateUp(mgl32.DegToRad(30))
	assert.Greater(t, c.Direction().Y(), float32(0.4))

	// the eye maps to the origin in view space
	eye := c.GetViewMatrix().Mul4x1(c.Position().Vec4(1))
	assert.True(t, eye.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-4))
}
