package postfx

import "image"

// Mirror flips the frame horizontally.
type Mirror struct{}

func (Mirror) Kind() Kind { return KindMirror }

func (Mirror) Apply(in Inputs) (*image.RGBA, error) {
	if err := checkColor(in); err != nil {
		return nil, err
	}
	src := in.Color
	b := src.Rect
	dst := image.NewRGBA(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(out[(w-1-x)*4:(w-x)*4], row[x*4:x*4+4])
		}
	}
	return dst, nil
}
