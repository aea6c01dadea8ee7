package stdimg

import (
	"fmt"
)

// Stretch maps value from the interval [black, black+rng] onto [0,255]:
// 255*(value-black)/rng, with the subtraction saturating at 0, a zero rng
// treated as 1 and the result clamped to 255. All arithmetic is uint32 so
// the intermediate product never wraps.
func Stretch(value, black, rng uint8) uint8 {
	d := uint32(rng)
	if d == 0 {
		d = 1
	}
	v := 255 * uint32(satSub(value, black)) / d
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// RangeMap returns brightest - darkest per pixel, saturating at 0.
func RangeMap(brightest, darkest *Gray) (*Gray, error) {
	if !brightest.SameSize(darkest) {
		return nil, fmt.Errorf("range map: size mismatch %dx%d vs %dx%d", brightest.W, brightest.H, darkest.W, darkest.H)
	}
	out := NewGray(brightest.W, brightest.H)
	for i, b := range brightest.Pix {
		out.Pix[i] = satSub(b, darkest.Pix[i])
	}
	return out, nil
}

// EqualizeLocal flattens illumination: each pixel is stretched using its own
// local black and local range. Pixels whose local range is zero follow
// policy.
func EqualizeLocal(src, darkest, rng *Gray, policy FlatPolicy) (*Gray, error) {
	if !src.SameSize(darkest) || !src.SameSize(rng) {
		return nil, fmt.Errorf("equalize: buffers differ in size")
	}
	out := NewGray(src.W, src.H)
	if policy == FlatPaper {
		for i, v := range src.Pix {
			r := rng.Pix[i]
			if r == 0 {
				out.Pix[i] = 255
				continue
			}
			out.Pix[i] = Stretch(v, darkest.Pix[i], r)
		}
		return out, nil
	}
	for i, v := range src.Pix {
		out.Pix[i] = Stretch(v, darkest.Pix[i], rng.Pix[i])
	}
	return out, nil
}

// Level applies a global tone stretch of [black, white] onto [0,255].
// When white <= black it returns an unchanged copy.
func Level(src *Gray, black, white uint8) *Gray {
	if src == nil {
		return nil
	}
	if white <= black {
		return src.Clone()
	}
	var lut [256]uint8
	rng := white - black
	for v := range lut {
		lut[v] = Stretch(uint8(v), black, rng)
	}
	return applyLUT(src, &lut)
}

func applyLUT(src *Gray, lut *[256]uint8) *Gray {
	out := NewGray(src.W, src.H)
	for i, v := range src.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}
