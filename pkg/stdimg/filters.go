package stdimg

// Despeckle removes isolated dots with a square median filter of the given
// radius. Windows are clamped at the borders. radius <= 0 returns a copy.
func Despeckle(src *Gray, radius int) *Gray {
	if src == nil {
		return nil
	}
	if radius <= 0 {
		return src.Clone()
	}
	out := NewGray(src.W, src.H)
	var hist [256]int
	for y := 0; y < src.H; y++ {
		y0, y1 := max(0, y-radius), min(src.H-1, y+radius)
		for x := 0; x < src.W; x++ {
			x0, x1 := max(0, x-radius), min(src.W-1, x+radius)
			clear(hist[:])
			n := 0
			for yy := y0; yy <= y1; yy++ {
				for _, v := range src.Row(yy)[x0 : x1+1] {
					hist[v]++
					n++
				}
			}
			out.Pix[y*src.W+x] = medianOf(&hist, n)
		}
	}
	return out
}

// medianOf returns the lower median of n samples counted in hist.
func medianOf(hist *[256]int, n int) uint8 {
	half := (n + 1) / 2
	acc := 0
	for v, c := range hist {
		acc += c
		if acc >= half {
			return uint8(v)
		}
	}
	return 255
}
