package stdimg

// Orient applies an EXIF orientation (1..8) to g and returns a new buffer.
// Orientation 1 or unknown values return a copy.
func Orient(g *Gray, orientation int) *Gray {
	if g == nil {
		return nil
	}
	switch orientation {
	case 2:
		return Flop(g)
	case 3:
		return Rotate180(g)
	case 4:
		return Flip(g)
	case 5:
		// transpose: rotate 90 CW then flip horizontal
		return Flop(Rotate90CW(g))
	case 6:
		return Rotate90CW(g)
	case 7:
		// transverse: rotate 90 CCW then flip horizontal
		return Flop(Rotate90CCW(g))
	case 8:
		return Rotate90CCW(g)
	default:
		return g.Clone()
	}
}

// Flip mirrors g vertically.
func Flip(g *Gray) *Gray {
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		copy(out.Row(g.H-1-y), g.Row(y))
	}
	return out
}

// Flop mirrors g horizontally.
func Flop(g *Gray) *Gray {
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		s, d := g.Row(y), out.Row(y)
		for x := range s {
			d[g.W-1-x] = s[x]
		}
	}
	return out
}

func Rotate180(g *Gray) *Gray {
	out := NewGray(g.W, g.H)
	n := len(g.Pix)
	for i, v := range g.Pix {
		out.Pix[n-1-i] = v
	}
	return out
}

func Rotate90CW(g *Gray) *Gray {
	out := NewGray(g.H, g.W)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			out.Set(g.H-1-y, x, g.At(x, y))
		}
	}
	return out
}

func Rotate90CCW(g *Gray) *Gray {
	out := NewGray(g.H, g.W)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			out.Set(y, g.W-1-x, g.At(x, y))
		}
	}
	return out
}
