// Package postfx applies screen-space effects to captured frames.
package postfx

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoColor is returned when an effect runs without a color input.
var ErrNoColor = errors.New("postfx: missing color input")

// Kind names one of the supported effects.
type Kind int

const (
	KindMirror Kind = iota
	KindGodRay
)

func (k Kind) String() string {
	switch k {
	case KindMirror:
		return "mirror"
	case KindGodRay:
		return "godray"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Inputs are the buffers an effect may read. Depth and LightScatter are
// optional. LightPos is in normalized screen coordinates, origin top left.
type Inputs struct {
	Color        *image.RGBA
	Depth        *image.Gray16
	LightScatter *image.RGBA
	LightPos     mgl32.Vec2
}

// Effect transforms the color input into a new image. It must not modify
// its inputs.
type Effect interface {
	Kind() Kind
	Apply(in Inputs) (*image.RGBA, error)
}

func checkColor(in Inputs) error {
	if in.Color == nil || in.Color.Rect.Empty() {
		return ErrNoColor
	}
	return nil
}
