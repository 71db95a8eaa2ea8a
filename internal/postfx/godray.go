package postfx

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GodRay adds radial light scattering toward the light position.
// Each pixel marches Samples steps toward the light, summing the scatter
// source with weights that fall off by Decay per step.
type GodRay struct {
	Decay    float32
	Weight   float32
	Density  float32
	Exposure float32
	Samples  int
}

// DefaultGodRay returns commonly used scattering constants.
func DefaultGodRay() *GodRay {
	return &GodRay{
		Decay:    0.96815,
		Weight:   0.58767,
		Density:  0.926,
		Exposure: 0.2,
		Samples:  100,
	}
}

func (g *GodRay) Kind() Kind { return KindGodRay }

// Apply reads occluders from LightScatter, or from Color when it is unset.
func (g *GodRay) Apply(in Inputs) (*image.RGBA, error) {
	if err := checkColor(in); err != nil {
		return nil, err
	}
	src := in.LightScatter
	if src == nil {
		src = in.Color
	}

	b := in.Color.Rect
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(b)
	samples := max(g.Samples, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			uv := mgl32.Vec2{(float32(x) + 0.5) / float32(w), (float32(y) + 0.5) / float32(h)}
			delta := uv.Sub(in.LightPos).Mul(g.Density / float32(samples))

			var acc [3]float32
			illum := float32(1)
			coord := uv
			for range samples {
				coord = coord.Sub(delta)
				r, gg, bb := sample(src, coord)
				s := illum * g.Weight
				acc[0] += r * s
				acc[1] += gg * s
				acc[2] += bb * s
				illum *= g.Decay
			}

			i := in.Color.PixOffset(b.Min.X+x, b.Min.Y+y)
			o := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			for c := range 3 {
				v := float32(in.Color.Pix[i+c])/255 + acc[c]*g.Exposure
				dst.Pix[o+c] = toByte(v)
			}
			dst.Pix[o+3] = in.Color.Pix[i+3]
		}
	}
	return dst, nil
}

// sample reads src at normalized coordinates, clamped to the edge.
func sample(src *image.RGBA, uv mgl32.Vec2) (float32, float32, float32) {
	b := src.Rect
	x := b.Min.X + clampInt(int(uv[0]*float32(b.Dx())), 0, b.Dx()-1)
	y := b.Min.Y + clampInt(int(uv[1]*float32(b.Dy())), 0, b.Dy()-1)
	i := src.PixOffset(x, y)
	return float32(src.Pix[i]) / 255, float32(src.Pix[i+1]) / 255, float32(src.Pix[i+2]) / 255
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(mgl32.Clamp(v, 0, 1) * 255)))
}
