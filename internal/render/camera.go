package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera handles the view and projection matrices. It orbits a look-at
// point: Rotate turns about the up axis, RotateUp about the right axis.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	position  mgl32.Vec3
	lookAt    mgl32.Vec3
	direction mgl32.Vec3
	right     mgl32.Vec3
	up        mgl32.Vec3
	view      mgl32.Mat4
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		AspectRatio: aspect(width, height),
		FOV:         45.0,
		NearPlane:   0.1,
		FarPlane:    10000.0,
		position:    mgl32.Vec3{-24, 40, -24},
		lookAt:      mgl32.Vec3{8, 8, 8},
		right:       mgl32.Vec3{1, 0, 0},
	}
	c.updateVectors()
	return c
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 16.0 / 9.0
	}
	return float32(width) / float32(height)
}

// SetViewport updates the aspect ratio.
func (c *Camera) SetViewport(width, height int) {
	c.AspectRatio = aspect(width, height)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 { return c.view }

func (c *Camera) Position() mgl32.Vec3  { return c.position }
func (c *Camera) Direction() mgl32.Vec3 { return c.direction }
func (c *Camera) Right() mgl32.Vec3     { return c.right }
func (c *Camera) Up() mgl32.Vec3        { return c.up }

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateVectors()
}

// Translate moves both the eye and the look-at point.
func (c *Camera) Translate(offset mgl32.Vec3) {
	c.position = c.position.Add(offset)
	c.lookAt = c.lookAt.Add(offset)
	c.updateVectors()
}

// Rotate turns the view left or right by angle radians.
func (c *Camera) Rotate(angle float32) {
	c.rotateTarget(angle, c.up)
}

// RotateUp tilts the view up or down by angle radians.
func (c *Camera) RotateUp(angle float32) {
	c.rotateTarget(angle, c.right)
}

func (c *Camera) rotateTarget(angle float32, axis mgl32.Vec3) {
	rel := c.lookAt.Sub(c.position)
	c.lookAt = mgl32.QuatRotate(angle, axis).Rotate(rel).Add(c.position)
	c.updateVectors()
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	c.lookAt = target
	c.updateVectors()
}

func (c *Camera) updateVectors() {
	dir := c.lookAt.Sub(c.position)
	if dir.Len() < 1e-6 {
		return
	}
	c.direction = dir.Normalize()

	// looking straight up or down: keep the last right vector
	if r := c.direction.Cross(worldUp); r.Len() > 1e-6 {
		c.right = r.Normalize()
	}
	c.up = c.right.Cross(c.direction).Normalize()
	c.view = mgl32.LookAtV(c.position, c.lookAt, c.up)
}
