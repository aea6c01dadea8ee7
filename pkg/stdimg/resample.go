package stdimg

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize scales g to w x h with bilinear interpolation.
func Resize(g *Gray, w, h int) *Gray {
	if g == nil {
		return nil
	}
	out := NewGray(w, h)
	if w == 0 || h == 0 || g.W == 0 || g.H == 0 {
		return out
	}
	dst := out.Image()
	draw.BiLinear.Scale(dst, dst.Bounds(), g.Image(), image.Rect(0, 0, g.W, g.H), draw.Src, nil)
	return out
}

// Fit downscales g so it fits inside maxW x maxH, preserving the aspect
// ratio. Images that already fit are returned as a copy.
func Fit(g *Gray, maxW, maxH int) *Gray {
	if g == nil {
		return nil
	}
	if g.W <= maxW && g.H <= maxH {
		return g.Clone()
	}
	sw := float64(maxW) / float64(g.W)
	sh := float64(maxH) / float64(g.H)
	s := min(sw, sh)
	w := max(1, int(float64(g.W)*s+0.5))
	h := max(1, int(float64(g.H)*s+0.5))
	return Resize(g, w, h)
}
