package stdimg

import (
	"errors"
	"image/png"
	"os"
	"slices"
	"testing"
)

// makePage returns a 64x64 page of paper value 180 with an 8x8 ink block of
// value 20 in the top-left corner.
func makePage() *Gray {
	g := makeSolid(64, 64, 180)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.Set(x, y, 20)
		}
	}
	return g
}

func TestCorrectPageEndToEnd(t *testing.T) {
	src := makePage()
	before := src.Clone()
	sink := &MemorySink{}
	opts := DefaultOptions()
	opts.Sink = sink
	out, err := Correct(src, opts)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	assertSameSize(t, out, src)
	if !slices.Equal(src.Pix, before.Pix) {
		t.Fatalf("Correct modified its input")
	}
	ink := 0
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			v := out.At(x, y)
			if x < 8 && y < 8 {
				if v != 0 {
					t.Fatalf("ink at (%d,%d)=%d want 0", x, y, v)
				}
				ink++
				continue
			}
			if v != 255 {
				t.Fatalf("paper at (%d,%d)=%d want 255", x, y, v)
			}
		}
	}
	if ink != 64 {
		t.Fatalf("expected 64 ink pixels, got %d", ink)
	}

	want := []string{
		"darkest@1", "darkest@2", "darkest@4", "darkest@8", "darkest@16",
		"brightest@1", "brightest@2", "brightest@4", "brightest@8", "brightest@16",
		"darkest-extended@16", "brightest-extended@16",
		"range@0", "local@0", "histogram@1", "global@0",
	}
	if got := sink.Stages(); !slices.Equal(got, want) {
		t.Fatalf("stages:\n got %v\nwant %v", got, want)
	}
	rng, ok := sink.Find("range", 0)
	if !ok {
		t.Fatalf("range stage missing")
	}
	if rng.Buf.At(10, 10) != 160 || rng.Buf.At(40, 40) != 0 {
		t.Fatalf("unexpected range values %d, %d", rng.Buf.At(10, 10), rng.Buf.At(40, 40))
	}

	if os.Getenv("DOCFIX_SAVE_TEST_OUTPUT") == "1" {
		f, _ := os.Create("correct_test_out.png")
		defer f.Close()
		png.Encode(f, out.Image())
	}
}

func TestCorrectFlatImageStaysUniform(t *testing.T) {
	for _, policy := range []FlatPolicy{FlatPaper, FlatUnit} {
		src := makeSolid(32, 32, 128)
		opts := DefaultOptions()
		opts.Flat = policy
		out, err := Correct(src, opts)
		if err != nil {
			t.Fatalf("%s: Correct failed: %v", policy, err)
		}
		want := uint8(255)
		if policy == FlatUnit {
			want = 0
		}
		for i, v := range out.Pix {
			if v != want {
				t.Fatalf("%s: pixel %d=%d want %d", policy, i, v, want)
			}
		}
	}
}

func TestCorrectTooSmall(t *testing.T) {
	_, err := Correct(makeSolid(3, 10, 100), DefaultOptions())
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DimensionError, got %v", err)
	}
	if _, err := Correct(nil, DefaultOptions()); err == nil {
		t.Fatalf("expected error for nil input")
	}
	if _, err := Correct(&Gray{W: 8, H: 8, Pix: make([]uint8, 10)}, DefaultOptions()); err == nil {
		t.Fatalf("expected error for corrupt buffer")
	}
}

func TestCorrectMinimalImage(t *testing.T) {
	src := makeNoise(4, 4, 9)
	out, err := Correct(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Correct failed on 4x4: %v", err)
	}
	assertSameSize(t, out, src)
}

func TestCorrectRoundsOverrideClamped(t *testing.T) {
	sink := &MemorySink{}
	opts := DefaultOptions()
	opts.Rounds = 50
	opts.Sink = sink
	if _, err := Correct(makeNoise(16, 16, 10), opts); err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if _, ok := sink.Find("darkest", 8); !ok {
		t.Fatalf("expected a round with offset 8, stages %v", sink.Stages())
	}
	if _, ok := sink.Find("darkest", 16); ok {
		t.Fatalf("rounds override was not clamped")
	}
}

func TestCorrectBrightBias(t *testing.T) {
	sink := &MemorySink{}
	opts := DefaultOptions()
	opts.BrightBias = 2
	opts.Sink = sink
	if _, err := Correct(makePage(), opts); err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if _, ok := sink.Find("brightest-extended", 4); !ok {
		t.Fatalf("expected brightest border 4, stages %v", sink.Stages())
	}
	if _, ok := sink.Find("darkest-extended", 16); !ok {
		t.Fatalf("expected darkest border 16, stages %v", sink.Stages())
	}
}

func TestCorrectWorkersDeterministic(t *testing.T) {
	src := makeNoise(97, 61, 11)
	serial, err := Correct(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	opts := DefaultOptions()
	opts.Workers = 4
	parallel, err := Correct(src, opts)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if !slices.Equal(serial.Pix, parallel.Pix) {
		t.Fatalf("worker count changed the result")
	}
}

func TestCorrectThresholdAndDespeckle(t *testing.T) {
	src := makePage()
	src.Set(40, 40, 20)
	sink := &MemorySink{}
	opts := DefaultOptions()
	opts.Threshold = 128
	opts.Despeckle = 1
	opts.Sink = sink
	out, err := Correct(src, opts)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("threshold output not binary: %d", v)
		}
	}
	if out.At(40, 40) != 255 {
		t.Fatalf("speck survived despeckle")
	}
	if out.At(3, 3) != 0 {
		t.Fatalf("ink block removed by despeckle")
	}
	stages := sink.Stages()
	if !slices.Contains(stages, "threshold@128") || !slices.Contains(stages, "despeckle@1") {
		t.Fatalf("missing post-processing stages: %v", stages)
	}
}

func TestSinkErrorsDoNotFail(t *testing.T) {
	opts := DefaultOptions()
	opts.Sink = SinkFunc(func(string, int, *Gray) error { return errors.New("disk full") })
	if _, err := Correct(makePage(), opts); err != nil {
		t.Fatalf("sink failure leaked into result: %v", err)
	}
}

func TestCorrectGradientSkipsGlobalStretch(t *testing.T) {
	src := NewGray(256, 4)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			src.Set(x, y, uint8(x))
		}
	}
	sink := &MemorySink{}
	opts := DefaultOptions()
	opts.Sink = sink
	out, err := Correct(src, opts)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	local, ok := sink.Find("local", 0)
	if !ok {
		t.Fatalf("local stage not recorded")
	}
	global, ok := sink.Find("global", 0)
	if !ok {
		t.Fatalf("global stage not recorded")
	}
	if a := Analyze(local.Buf, opts); len(a.Turns.Points) >= 2 {
		t.Fatalf("expected fewer than two turning points, got %v", a.Turns.Points)
	}
	if !slices.Equal(global.Buf.Pix, local.Buf.Pix) {
		t.Fatalf("global stage changed the local result")
	}
	if !slices.Equal(out.Pix, local.Buf.Pix) {
		t.Fatalf("output differs from the local result")
	}
}
