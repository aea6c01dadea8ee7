package stdimg

import (
	"math/bits"

	"golang.org/x/sync/errgroup"
)

// Extreme selects which local extremum a pyramid tracks.
type Extreme int

const (
	// Darkest keeps the minimum of each compared pair.
	Darkest Extreme = iota
	// Brightest keeps the maximum of each compared pair.
	Brightest
)

func (e Extreme) String() string {
	if e == Brightest {
		return "brightest"
	}
	return "darkest"
}

// RoundsFor derives the pyramid round count floor(log2(min(w,h))) - 1 for
// an image. Images too small for a single round are rejected.
func RoundsFor(w, h int) (int, error) {
	m := min(w, h)
	if m < 4 {
		return 0, &DimensionError{Width: w, Height: h}
	}
	return bits.Len(uint(m)) - 2, nil
}

// maxRounds is the largest round count whose reach 2^R-1 still fits in m pixels.
func maxRounds(w, h int) int {
	m := min(w, h)
	if m < 1 {
		return 0
	}
	return bits.Len(uint(m)) - 1
}

// biasedRounds removes bias rounds from r without dropping below one.
func biasedRounds(r, bias int) int {
	return max(1, r-bias)
}

// ExtremeRound runs one doubling round: a horizontal pass comparing each
// pixel with its neighbor offset columns to the right, then a vertical pass
// comparing with the neighbor offset rows below. Pixels within offset of the
// right/bottom edge are carried over unchanged. Each pass reads one buffer
// and writes a fresh one, so row workers never see writes of their own pass.
func ExtremeRound(src *Gray, offset int, mode Extreme, workers int) *Gray {
	w, h := src.W, src.H
	tmp := NewGray(w, h)
	parallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			s := src.Row(y)
			d := tmp.Row(y)
			if offset >= w {
				copy(d, s)
				continue
			}
			n := w - offset
			extremeSpan(d[:n], s[:n], s[offset:], mode)
			copy(d[n:], s[n:])
		}
	})

	out := NewGray(w, h)
	parallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			if y+offset >= h {
				copy(out.Row(y), tmp.Row(y))
				continue
			}
			extremeSpan(out.Row(y), tmp.Row(y), tmp.Row(y+offset), mode)
		}
	})
	return out
}

// extremeSpan writes the pairwise extreme of a and b into dst. The mode
// switch sits outside the loops so each loop body stays branch-free.
func extremeSpan(dst, a, b []uint8, mode Extreme) {
	b = b[:len(dst)]
	a = a[:len(dst)]
	switch mode {
	case Brightest:
		for i := range dst {
			dst[i] = max(a[i], b[i])
		}
	default:
		for i := range dst {
			dst[i] = min(a[i], b[i])
		}
	}
}

// Pyramid applies rounds doubling rounds (offsets 1, 2, 4, ...) to src and
// returns the resulting local-extremum estimate. src is not modified.
// Every round is reported to opts.Sink under the mode's name with the
// round's offset as scale.
func Pyramid(src *Gray, rounds int, mode Extreme, opts Options) *Gray {
	cur := src
	for r := 0; r < rounds; r++ {
		offset := 1 << r
		cur = ExtremeRound(cur, offset, mode, opts.Workers)
		opts.record(mode.String(), offset, cur)
	}
	if cur == src {
		return src.Clone()
	}
	return cur
}

// parallelRows splits [0,h) into contiguous chunks and runs fn on each,
// returning once every chunk is done.
func parallelRows(h, workers int, fn func(y0, y1 int)) {
	if workers <= 1 || h < 2*workers {
		fn(0, h)
		return
	}
	chunk := (h + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < h; start += chunk {
		y0, y1 := start, min(start+chunk, h)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
