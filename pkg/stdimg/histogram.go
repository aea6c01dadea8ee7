package stdimg

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Histogram holds one log-compressed occurrence count per intensity.
type Histogram [256]uint32

// ComputeHistogram counts the intensities of g and compresses every count
// to log_base(1+count), so a dominant paper peak does not drown the ink
// peak during smoothing.
func ComputeHistogram(g *Gray, base float64) Histogram {
	var counts [256]int
	for _, v := range g.Pix {
		counts[v]++
	}
	if base <= 1 {
		base = 1.1
	}
	lb := math.Log(base)
	var h Histogram
	for i, c := range counts {
		h[i] = uint32(math.Log1p(float64(c)) / lb)
	}
	return h
}

// SmoothTurns runs one smoothing sweep over h in place and returns the
// turning points found during it. Each visited bin becomes the mean of itself
// and its neighbor in sweep direction; a turning point is a bin where the
// sign of the first difference flips against the previous non-zero sign.
// The returned points are always increasing, whatever the sweep direction.
func SmoothTurns(h *Histogram, rightToLeft bool) []uint8 {
	var turns []uint8
	prevSign := 0
	for i := 0; i < 255; i++ {
		prev, idx, next := i-1, i, i+1
		if rightToLeft {
			prev, idx, next = 256-i, 255-i, 254-i
		}
		h[idx] = uint32((uint64(h[idx]) + uint64(h[next])) / 2)
		if i == 0 {
			continue
		}
		s := sign(int64(h[idx]) - int64(h[prev]))
		if s != 0 && s != prevSign {
			if prevSign != 0 {
				turns = append(turns, uint8(idx))
			}
			prevSign = s
		}
	}
	if rightToLeft {
		slices.Reverse(turns)
	}
	return turns
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SmoothState is the terminal state of the smoothing loop.
type SmoothState int

const (
	Smoothing SmoothState = iota
	Converged
	CapExhausted
)

func (s SmoothState) String() string {
	switch s {
	case Converged:
		return "converged"
	case CapExhausted:
		return "cap-exhausted"
	}
	return "smoothing"
}

// Turns is the outcome of FindTurningPoints.
type Turns struct {
	Points []uint8
	Rounds int
	State  SmoothState
	// Smoothed is the histogram after the last sweep.
	Smoothed Histogram
}

// FindTurningPoints smooths a copy of h with alternating sweep direction
// until at most opts.TurnLimit turning points remain (Converged) or
// opts.SmoothRounds sweeps ran (CapExhausted). Both are valid exits.
func FindTurningPoints(h Histogram, opts Options) Turns {
	limit := opts.TurnLimit
	maxRounds := max(opts.SmoothRounds, 1)
	t := Turns{State: Smoothing}
	for t.State == Smoothing {
		t.Points = SmoothTurns(&h, t.Rounds%2 == 1)
		t.Rounds++
		opts.Logger.Debug().Int("round", t.Rounds).Uints8("turns", t.Points).Msg("turns after smoothing")
		switch {
		case len(t.Points) <= limit:
			t.State = Converged
		case t.Rounds >= maxRounds:
			t.State = CapExhausted
		}
	}
	t.Smoothed = h
	return t
}

// BlackWhitePoints derives the global black and white points from the
// turning points, extrapolating k times the distance of the first point from
// 0 and of the last point from 255. Fewer than two points, or a crossed
// result, yields the no-op pair (0, 255).
func BlackWhitePoints(points []uint8, k float64) (black, white uint8) {
	if len(points) < 2 {
		return 0, 255
	}
	first := float64(points[0])
	last := float64(points[len(points)-1])
	b := clampFloatToUint8(k * first)
	w := clampFloatToUint8(255 - k*(255-last))
	if b > w {
		return 0, 255
	}
	return b, w
}

// GlobalStretch applies Level(black, white) when 0 < black < white < 255 and
// reports whether it did; otherwise it returns an unchanged copy.
func GlobalStretch(g *Gray, black, white uint8) (*Gray, bool) {
	if black > 0 && black < white && white < 255 {
		return Level(g, black, white), true
	}
	return g.Clone(), false
}

// Analysis bundles the histogram stage results for logging and diagnostics.
type Analysis struct {
	Histogram Histogram
	Turns     Turns
	Black     uint8
	White     uint8
}

// Analyze builds the histogram of g and derives its global black/white points.
func Analyze(g *Gray, opts Options) Analysis {
	h := ComputeHistogram(g, opts.LogBase)
	t := FindTurningPoints(h, opts)
	b, w := BlackWhitePoints(t.Points, opts.Extrapolation)
	return Analysis{Histogram: h, Turns: t, Black: b, White: w}
}

// RenderHistogram plots the raw histogram (light bars), the smoothed curve
// (dark line), turning points (dotted markers) and the chosen black/white
// points (solid markers) into a width x height buffer.
func RenderHistogram(a Analysis, width, height int) *Gray {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 120
	}
	out := NewGrayFilled(width, height, 255)
	maxv := uint32(1)
	for _, v := range a.Histogram {
		maxv = max(maxv, v)
	}
	scaleY := func(v uint32) int {
		return clampInt(int(math.Round(float64(v)/float64(maxv)*float64(height-1))), 0, height-1)
	}
	binAt := func(x int) int {
		return clampInt(x*256/width, 0, 255)
	}
	for x := 0; x < width; x++ {
		bin := binAt(x)
		for y := 0; y < scaleY(a.Histogram[bin]); y++ {
			out.Set(x, height-1-y, 200)
		}
		out.Set(x, height-1-scaleY(a.Turns.Smoothed[bin]), 0)
	}
	xOf := func(v uint8) int {
		return clampInt(int(v)*width/256, 0, width-1)
	}
	for _, p := range a.Turns.Points {
		x := xOf(p)
		for y := 0; y < height; y += 2 {
			out.Set(x, y, 64)
		}
	}
	for _, p := range []uint8{a.Black, a.White} {
		x := xOf(p)
		for y := 0; y < height; y++ {
			out.Set(x, y, 0)
		}
	}
	d := &font.Drawer{
		Dst:  out.Image(),
		Src:  image.NewUniform(color.Gray{Y: 0}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(13)},
	}
	d.DrawString(fmt.Sprintf("black=%d white=%d turns=%v %s/%d", a.Black, a.White, a.Turns.Points, a.Turns.State, a.Turns.Rounds))
	return out
}
