package stdimg

import "testing"

func TestStretchExhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive stretch check")
	}
	for v := 0; v < 256; v++ {
		for b := 0; b < 256; b++ {
			for r := 0; r < 256; r++ {
				d := max(r, 1)
				want := min(255, 255*max(0, v-b)/d)
				if got := Stretch(uint8(v), uint8(b), uint8(r)); int(got) != want {
					t.Fatalf("Stretch(%d,%d,%d)=%d want %d", v, b, r, got, want)
				}
			}
		}
	}
}

func TestStretchEndpoints(t *testing.T) {
	if got := Stretch(20, 20, 160); got != 0 {
		t.Fatalf("value at black: got %d want 0", got)
	}
	if got := Stretch(180, 20, 160); got != 255 {
		t.Fatalf("value at black+range: got %d want 255", got)
	}
	if got := Stretch(10, 20, 160); got != 0 {
		t.Fatalf("value below black should saturate to 0, got %d", got)
	}
	if got := Stretch(255, 0, 1); got != 255 {
		t.Fatalf("product must not wrap, got %d", got)
	}
}

func TestRangeMap(t *testing.T) {
	bright := &Gray{W: 3, H: 1, Pix: []uint8{200, 50, 90}}
	dark := &Gray{W: 3, H: 1, Pix: []uint8{20, 50, 100}}
	rng, err := RangeMap(bright, dark)
	if err != nil {
		t.Fatalf("RangeMap error: %v", err)
	}
	want := []uint8{180, 0, 0}
	for i := range want {
		if rng.Pix[i] != want[i] {
			t.Fatalf("range[%d]=%d want %d", i, rng.Pix[i], want[i])
		}
	}
	if _, err := RangeMap(bright, NewGray(2, 2)); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestEqualizeLocalFlatPolicies(t *testing.T) {
	src := makeSolid(4, 4, 128)
	rng := NewGray(4, 4)
	paper, err := EqualizeLocal(src, src, rng, FlatPaper)
	if err != nil {
		t.Fatalf("EqualizeLocal error: %v", err)
	}
	unit, err := EqualizeLocal(src, src, rng, FlatUnit)
	if err != nil {
		t.Fatalf("EqualizeLocal error: %v", err)
	}
	for i := range src.Pix {
		if paper.Pix[i] != 255 {
			t.Fatalf("paper policy: got %d want 255", paper.Pix[i])
		}
		if unit.Pix[i] != 0 {
			t.Fatalf("unit policy: got %d want 0", unit.Pix[i])
		}
	}
	if _, err := EqualizeLocal(src, NewGray(3, 3), rng, FlatPaper); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestEqualizeLocalStretches(t *testing.T) {
	src := &Gray{W: 3, H: 1, Pix: []uint8{20, 100, 180}}
	dark := makeSolid(3, 1, 20)
	rng := makeSolid(3, 1, 160)
	out, err := EqualizeLocal(src, dark, rng, FlatPaper)
	if err != nil {
		t.Fatalf("EqualizeLocal error: %v", err)
	}
	want := []uint8{0, 127, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Fatalf("out[%d]=%d want %d", i, out.Pix[i], want[i])
		}
	}
}

func TestLevel(t *testing.T) {
	src := &Gray{W: 4, H: 1, Pix: []uint8{0, 80, 100, 185}}
	out := Level(src, 80, 185)
	want := []uint8{0, 0, 48, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Fatalf("level[%d]=%d want %d", i, out.Pix[i], want[i])
		}
	}
	same := Level(src, 100, 100)
	for i := range src.Pix {
		if same.Pix[i] != src.Pix[i] {
			t.Fatalf("crossed level should be a no-op")
		}
	}
}

func TestThreshold(t *testing.T) {
	src := &Gray{W: 4, H: 1, Pix: []uint8{0, 127, 128, 255}}
	out := Threshold(src, 128)
	want := []uint8{0, 0, 255, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Fatalf("threshold[%d]=%d want %d", i, out.Pix[i], want[i])
		}
	}
	off := Threshold(src, 0)
	if off.Pix[1] != 127 {
		t.Fatalf("threshold 0 should copy")
	}
}
