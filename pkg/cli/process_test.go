package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// writePage saves a 48x40 shaded page with a dark block as PNG.
func writePage(t *testing.T, dir, name string) string {
	t.Helper()
	g := stdimg.NewGray(48, 40)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := 230 - x
			if x >= 10 && x < 20 && y >= 10 && y < 20 {
				v = 30
			}
			g.Set(x, y, uint8(v))
		}
	}
	p := filepath.Join(dir, name)
	if err := EncodeFile(p, g, nil, 0); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return p
}

func newTestProcessor(s Settings) (*Processor, *bytes.Buffer) {
	var logs bytes.Buffer
	return &Processor{
		Options:  stdimg.DefaultOptions(),
		Settings: s,
		Log:      zerolog.New(&logs),
	}, &logs
}

func TestProcessorWritesMarkedOutput(t *testing.T) {
	dir := t.TempDir()
	in := writePage(t, dir, "page.png")
	p, logs := newTestProcessor(DefaultSettings())
	if err := p.Run([]string{in}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	d, err := DecodeFile(filepath.Join(dir, "page.fixed.png"))
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if d.Gray.W != 48 || d.Gray.H != 40 {
		t.Fatalf("output size %dx%d, want 48x40", d.Gray.W, d.Gray.H)
	}
	if !strings.Contains(logs.String(), `"message":"corrected"`) {
		t.Fatalf("expected a corrected log line, got %s", logs.String())
	}
}

func TestProcessorContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good := writePage(t, dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, logs := newTestProcessor(DefaultSettings())
	err := p.Run([]string{bad, good})
	if err == nil || err.Error() != "1 of 2 files failed" {
		t.Fatalf("unexpected summary error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.fixed.png")); err != nil {
		t.Fatalf("good file not processed after a failure: %v", err)
	}
	if !strings.Contains(logs.String(), "bad.png") {
		t.Fatalf("failure not logged: %s", logs.String())
	}
}

func TestProcessorSkipsExistingWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	in := writePage(t, dir, "page.png")
	out := filepath.Join(dir, "page.fixed.png")
	if err := os.WriteFile(out, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := DefaultSettings()
	s.Overwrite = false
	p, _ := newTestProcessor(s)
	if err := p.Run([]string{in}); err != nil {
		t.Fatalf("skip should not count as failure: %v", err)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "keep" {
		t.Fatalf("existing output was replaced")
	}
}

func TestProcessorRejectsInPlaceOutput(t *testing.T) {
	dir := t.TempDir()
	in := writePage(t, dir, "page.png")
	s := DefaultSettings()
	s.Marker = ""
	p, _ := newTestProcessor(s)
	if _, err := p.File(in); err == nil {
		t.Fatalf("expected error when output equals input")
	}
}

func TestProcessorDebugDumpsStages(t *testing.T) {
	dir := t.TempDir()
	in := writePage(t, dir, "page.png")
	s := DefaultSettings()
	s.Debug = true
	s.DebugDir = filepath.Join(dir, "debug")
	s.OutDir = filepath.Join(dir, "out")
	p, _ := newTestProcessor(s)
	out, err := p.File(in)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if out != filepath.Join(dir, "out", "page.fixed.png") {
		t.Fatalf("unexpected output path %s", out)
	}
	for _, name := range []string{"page.darkest.1.png", "page.range.0.png", "page.local.0.png", "page.global.0.png"} {
		if _, err := os.Stat(filepath.Join(s.DebugDir, name)); err != nil {
			t.Fatalf("stage %s not dumped: %v", name, err)
		}
	}
}
