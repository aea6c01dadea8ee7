package stdimg

// BorderFor returns the edge band width left by a pyramid of the given
// round count: 2^(rounds-1).
func BorderFor(rounds int) int {
	if rounds < 1 {
		return 0
	}
	return 1 << (rounds - 1)
}

// ExtendEdges repairs a pyramid result. After R rounds only the top-left
// (W-reach) x (H-reach) block is reliable, reach = 2*border-1, and each of its
// values summarizes the window that starts at its own coordinate. The block is
// shifted by border on both axes so every value sits at the center of its
// window, then the outermost valid column and row are replicated outward over
// the band. The result has the dimensions of src.
func ExtendEdges(src *Gray, border int) *Gray {
	reach := 2*border - 1
	vw, vh := src.W-reach, src.H-reach
	if border < 1 || vw < 1 || vh < 1 {
		return src.Clone()
	}
	out := NewGray(src.W, src.H)
	right := border + vw
	for y := 0; y < vh; y++ {
		s := src.Row(y)[:vw]
		d := out.Row(y + border)
		copy(d[border:right], s)
		left, last := s[0], s[vw-1]
		for x := 0; x < border; x++ {
			d[x] = left
		}
		for x := right; x < src.W; x++ {
			d[x] = last
		}
	}
	top := out.Row(border)
	for y := 0; y < border; y++ {
		copy(out.Row(y), top)
	}
	bottom := out.Row(border + vh - 1)
	for y := border + vh; y < src.H; y++ {
		copy(out.Row(y), bottom)
	}
	return out
}
