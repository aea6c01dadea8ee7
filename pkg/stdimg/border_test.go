package stdimg

import "testing"

func TestBorderFor(t *testing.T) {
	for rounds, want := range map[int]int{0: 0, 1: 1, 2: 2, 5: 16} {
		if got := BorderFor(rounds); got != want {
			t.Fatalf("BorderFor(%d)=%d want %d", rounds, got, want)
		}
	}
}

func TestExtendEdgesCentersAndReplicates(t *testing.T) {
	src := NewGray(8, 8)
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	out := ExtendEdges(src, 2)
	assertSameSize(t, out, src)
	checks := []struct {
		ox, oy, sx, sy int
	}{
		{2, 2, 0, 0}, // shifted block
		{6, 6, 4, 4},
		{4, 3, 2, 1},
		{0, 0, 0, 0}, // corners replicate
		{7, 7, 4, 4},
		{7, 0, 4, 0},
		{0, 7, 0, 4},
		{7, 3, 4, 1}, // right band
		{3, 0, 1, 0}, // top band
		{3, 7, 1, 4}, // bottom band
	}
	for _, c := range checks {
		if got, want := out.At(c.ox, c.oy), src.At(c.sx, c.sy); got != want {
			t.Fatalf("out(%d,%d)=%d want src(%d,%d)=%d", c.ox, c.oy, got, c.sx, c.sy, want)
		}
	}
}

func TestExtendEdgesDegenerate(t *testing.T) {
	src := makeNoise(4, 4, 7)
	for _, border := range []int{0, 4} {
		out := ExtendEdges(src, border)
		for i := range src.Pix {
			if out.Pix[i] != src.Pix[i] {
				t.Fatalf("border %d: expected unchanged copy", border)
			}
		}
	}
}
