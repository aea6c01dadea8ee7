package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// Settings are the per-run choices that are not correction tunables.
type Settings struct {
	Marker      string
	OutDir      string
	Overwrite   bool
	Debug       bool
	DebugDir    string
	DebugFormat string
	JPEGQuality int
	Preview     bool
}

// DefaultSettings mirrors the flag defaults of the root command.
func DefaultSettings() Settings {
	return Settings{
		Marker:      "fixed",
		Overwrite:   true,
		DebugDir:    filepath.Join(os.TempDir(), "docfix-debug"),
		DebugFormat: "png",
		JPEGQuality: 92,
	}
}

// Processor corrects files one after the other.
type Processor struct {
	Options  stdimg.Options
	Settings Settings
	Log      zerolog.Logger
	// Out receives terminal previews.
	Out io.Writer
}

// errSkipped marks a file left alone because its output already exists.
var errSkipped = errors.New("output exists")

// Run processes every path, continuing past failures, and returns a summary
// error when any file failed.
func (p *Processor) Run(paths []string) error {
	failed := 0
	for _, path := range paths {
		out, err := p.File(path)
		switch {
		case errors.Is(err, errSkipped):
			p.Log.Info().Str("file", path).Str("output", out).Msg("skipped, output exists")
		case err != nil:
			failed++
			p.Log.Error().Err(err).Str("file", path).Msg("correction failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

// File corrects a single file and returns the path written.
func (p *Processor) File(path string) (string, error) {
	start := time.Now()
	out := OutputPath(path, p.Settings.Marker, p.Settings.OutDir)
	if filepath.Clean(out) == filepath.Clean(path) {
		return out, fmt.Errorf("output would overwrite the input %s; set a marker or --out-dir", path)
	}
	if !p.Settings.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return out, errSkipped
		}
	}

	dec, err := DecodeFile(path)
	if err != nil {
		return out, err
	}
	log := p.Log.With().Str("file", path).Logger()
	log.Debug().Str("format", dec.Format).Int("orientation", dec.Orientation).
		Int("width", dec.Gray.W).Int("height", dec.Gray.H).Msg("decoded")

	opts := p.Options
	opts.Logger = log
	if p.Settings.Debug {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sink, err := NewDirSink(p.Settings.DebugDir, base, p.Settings.DebugFormat)
		if err != nil {
			return out, err
		}
		opts.Sink = sink
	}

	res, err := stdimg.Correct(dec.Gray, opts)
	if err != nil {
		return out, err
	}
	if p.Settings.OutDir != "" {
		if err := os.MkdirAll(p.Settings.OutDir, 0o755); err != nil {
			return out, &EncodeError{Path: out, Err: err}
		}
	}
	if err := EncodeFile(out, res, dec.Segments, p.Settings.JPEGQuality); err != nil {
		return out, err
	}
	log.Info().Str("output", out).Dur("took", time.Since(start)).Msg("corrected")

	if p.Settings.Preview && p.Out != nil {
		if err := PreviewGray(p.Out, res, log); err != nil {
			log.Warn().Err(err).Msg("preview unavailable")
		}
	}
	return out, nil
}
