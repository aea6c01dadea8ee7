package stdimg

import (
	"image"
)

// Gray is a row-major single-channel 8-bit buffer. Pix[y*W+x] holds the
// intensity of pixel (x, y).
type Gray struct {
	W, H int
	Pix  []uint8
}

// NewGray allocates a zeroed w x h buffer.
func NewGray(w, h int) *Gray {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
}

// NewGrayFilled allocates a w x h buffer with every sample set to v.
func NewGrayFilled(w, h int, v uint8) *Gray {
	g := NewGray(w, h)
	if v != 0 {
		for i := range g.Pix {
			g.Pix[i] = v
		}
	}
	return g
}

// Clone returns a copy of g.
func (g *Gray) Clone() *Gray {
	if g == nil {
		return nil
	}
	out := &Gray{W: g.W, H: g.H, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.W+x]
}

func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.W+x] = v
}

// Row returns the samples of row y. The slice aliases g.Pix.
func (g *Gray) Row(y int) []uint8 {
	return g.Pix[y*g.W : (y+1)*g.W]
}

// SameSize reports whether g and o have identical dimensions.
func (g *Gray) SameSize(o *Gray) bool {
	return g != nil && o != nil && g.W == o.W && g.H == o.H
}

// FromImage converts any image.Image to a Gray buffer using Rec. 709 luma.
// The result always starts at (0,0) regardless of the source bounds.
func FromImage(src image.Image) *Gray {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	switch s := src.(type) {
	case *image.Gray:
		for y := 0; y < out.H; y++ {
			i := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Row(y), s.Pix[i:i+out.W])
		}
		return out
	case *image.NRGBA:
		for y := 0; y < out.H; y++ {
			for x := 0; x < out.W; x++ {
				i := s.PixOffset(b.Min.X+x, b.Min.Y+y)
				out.Pix[y*out.W+x] = luma709(uint32(s.Pix[i+0]), uint32(s.Pix[i+1]), uint32(s.Pix[i+2]))
			}
		}
		return out
	}
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			r, g, b_, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// r,g,b are 16-bit [0, 65535]; convert to 8-bit
			out.Pix[y*out.W+x] = luma709(r>>8, g>>8, b_>>8)
		}
	}
	return out
}

// luma709 computes Rec. 709 luminance from 8-bit channels.
func luma709(r, g, b uint32) uint8 {
	return clampFloatToUint8(0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b))
}

// Image exposes g as an *image.Gray sharing the same pixel memory.
func (g *Gray) Image() *image.Gray {
	return &image.Gray{Pix: g.Pix, Stride: g.W, Rect: image.Rect(0, 0, g.W, g.H)}
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// satSub returns a-b, or 0 when b > a.
func satSub(a, b uint8) uint8 {
	if b > a {
		return 0
	}
	return a - b
}
