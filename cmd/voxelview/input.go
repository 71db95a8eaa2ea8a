package main

import (
	"cubecraft/internal/game/flycam"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var bindings = map[flycam.Action]glfw.Key{
	flycam.Forward:   glfw.KeyW,
	flycam.Back:      glfw.KeyS,
	flycam.Left:      glfw.KeyA,
	flycam.Right:     glfw.KeyD,
	flycam.Up:        glfw.KeySpace,
	flycam.Down:      glfw.KeyLeftShift,
	flycam.TurnLeft:  glfw.KeyLeft,
	flycam.TurnRight: glfw.KeyRight,
	flycam.LookUp:    glfw.KeyUp,
	flycam.LookDown:  glfw.KeyDown,
}

// keyState polls the window, so it must be used on the main thread.
type keyState struct {
	window *glfw.Window
}

func newKeyState(w *glfw.Window) *keyState { return &keyState{window: w} }

func (k *keyState) Pressed(a flycam.Action) bool {
	key, ok := bindings[a]
	return ok && k.window.GetKey(key) == glfw.Press
}
