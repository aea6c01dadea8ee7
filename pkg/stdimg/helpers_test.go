package stdimg

import (
	"math/rand"
	"testing"
)

func makeSolid(w, h int, v uint8) *Gray {
	return NewGrayFilled(w, h, v)
}

func makeNoise(w, h int, seed int64) *Gray {
	r := rand.New(rand.NewSource(seed))
	g := NewGray(w, h)
	for i := range g.Pix {
		g.Pix[i] = uint8(r.Intn(256))
	}
	return g
}

func assertSameSize(t *testing.T, got, want *Gray) {
	t.Helper()
	if got == nil {
		t.Fatalf("got nil buffer")
	}
	if got.W != want.W || got.H != want.H {
		t.Fatalf("size mismatch: got %dx%d want %dx%d", got.W, got.H, want.W, want.H)
	}
	if len(got.Pix) != got.W*got.H {
		t.Fatalf("corrupt buffer: %d samples for %dx%d", len(got.Pix), got.W, got.H)
	}
}
