// Package flycam moves the engine camera from held keys.
package flycam

import (
	"errors"

	"cubecraft/internal/plugin"
	"cubecraft/internal/render"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

const Name = "flycam"

type Action int

const (
	Forward Action = iota
	Back
	Left
	Right
	Up
	Down
	TurnLeft
	TurnRight
	LookUp
	LookDown
)

// Input reports which actions are held this frame.
type Input interface {
	Pressed(a Action) bool
}

type Plugin struct {
	// Speed is in voxels per second, TurnRate in radians per second.
	Speed    float32
	TurnRate float32

	in  Input
	cam *render.Camera
}

func New(in Input) *Plugin {
	return &Plugin{Speed: 12, TurnRate: 1.5, in: in}
}

func (p *Plugin) Name() string { return Name }

// OnPlayStart places the camera above one corner of the world looking at its
// center.
func (p *Plugin) OnPlayStart(ctx *plugin.Context) error {
	if ctx.Engine == nil || ctx.World == nil {
		return errors.New("flycam: needs an engine and a world")
	}
	p.cam = ctx.Engine.Camera()
	o := ctx.World.Options()
	size := mgl32.Vec3{float32(o.SizeX), float32(o.SizeY), float32(o.SizeZ)}.Mul(voxel.Size * voxel.CubeSize)
	center := size.Mul(0.5)
	p.cam.SetPosition(mgl32.Vec3{-8, size.Y() + 16, -8})
	p.cam.LookAt(center)
	return nil
}

func (p *Plugin) OnPreUpdate() {}

func (p *Plugin) OnPostUpdate(dt float64) {
	if p.cam == nil || p.in == nil {
		return
	}
	step := p.Speed * float32(dt)
	turn := p.TurnRate * float32(dt)

	forward := p.cam.Direction()
	forward = mgl32.Vec3{forward.X(), 0, forward.Z()}
	if forward.Len() > 1e-6 {
		forward = forward.Normalize()
	}
	right := p.cam.Right()

	var move mgl32.Vec3
	axis := func(a Action, v mgl32.Vec3) {
		if p.in.Pressed(a) {
			move = move.Add(v)
		}
	}
	axis(Forward, forward)
	axis(Back, forward.Mul(-1))
	axis(Right, right)
	axis(Left, right.Mul(-1))
	axis(Up, mgl32.Vec3{0, 1, 0})
	axis(Down, mgl32.Vec3{0, -1, 0})
	if move.Len() > 1e-6 {
		p.cam.Translate(move.Normalize().Mul(step))
	}

	if p.in.Pressed(TurnLeft) {
		p.cam.Rotate(turn)
	}
	if p.in.Pressed(TurnRight) {
		p.cam.Rotate(-turn)
	}
	if p.in.Pressed(LookUp) {
		p.cam.RotateUp(turn)
	}
	if p.in.Pressed(LookDown) {
		p.cam.RotateUp(-turn)
	}
}

func (p *Plugin) OnPlayStop() { p.cam = nil }
