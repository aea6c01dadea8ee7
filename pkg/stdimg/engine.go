package stdimg

import (
	"fmt"
)

// Correct flattens the illumination of a photographed document page and
// returns a new buffer with the same dimensions as src:
//
//  1. darkest and brightest pyramids estimate the local black and white,
//  2. both are edge-extended back to full size,
//  3. every pixel is stretched against its local black and range,
//  4. the histogram of that result yields a global black/white point for a
//     final stretch,
//  5. optionally the result is binarized and despeckled.
//
// src is never modified. Images smaller than 4x4 fail with a
// *DimensionError before any work is done.
func Correct(src *Gray, opts Options) (*Gray, error) {
	if src == nil {
		return nil, fmt.Errorf("source buffer is nil")
	}
	if len(src.Pix) != src.W*src.H {
		return nil, fmt.Errorf("corrupt buffer: %d samples for %dx%d", len(src.Pix), src.W, src.H)
	}
	rounds, err := RoundsFor(src.W, src.H)
	if err != nil {
		return nil, err
	}
	if opts.Rounds > 0 {
		rounds = min(opts.Rounds, maxRounds(src.W, src.H))
	}
	darkRounds := biasedRounds(rounds, opts.DarkBias)
	brightRounds := biasedRounds(rounds, opts.BrightBias)
	log := opts.Logger
	log.Debug().
		Int("width", src.W).Int("height", src.H).
		Int("dark_rounds", darkRounds).Int("bright_rounds", brightRounds).
		Msg("building extrema pyramids")

	darkest := Pyramid(src, darkRounds, Darkest, opts)
	brightest := Pyramid(src, brightRounds, Brightest, opts)

	darkBorder, brightBorder := BorderFor(darkRounds), BorderFor(brightRounds)
	darkest = ExtendEdges(darkest, darkBorder)
	opts.record("darkest-extended", darkBorder, darkest)
	brightest = ExtendEdges(brightest, brightBorder)
	opts.record("brightest-extended", brightBorder, brightest)

	rng, err := RangeMap(brightest, darkest)
	if err != nil {
		return nil, err
	}
	opts.record("range", 0, rng)

	local, err := EqualizeLocal(src, darkest, rng, opts.Flat)
	if err != nil {
		return nil, err
	}
	opts.record("local", 0, local)

	a := Analyze(local, opts)
	if opts.Sink != nil {
		opts.record("histogram", a.Turns.Rounds, RenderHistogram(a, 512, 160))
	}
	out, stretched := GlobalStretch(local, a.Black, a.White)
	log.Debug().
		Uints8("turns", a.Turns.Points).
		Str("state", a.Turns.State.String()).
		Int("smoothing_rounds", a.Turns.Rounds).
		Uint8("black", a.Black).Uint8("white", a.White).
		Bool("stretched", stretched).
		Msg("global tone curve")
	opts.record("global", 0, out)

	if opts.Threshold > 0 {
		out = Threshold(out, opts.Threshold)
		opts.record("threshold", opts.Threshold, out)
	}
	if opts.Despeckle > 0 {
		out = Despeckle(out, opts.Despeckle)
		opts.record("despeckle", opts.Despeckle, out)
	}
	return out, nil
}
