// Package stdimg: authoritative registry of correction tunables.
//
// This file mirrors the fields of Options and the switch in Options.Set.
// Keep this list up-to-date when you add or modify a tunable so callers
// (CLI flags, .env loading, help text) can read a single source of truth.

package stdimg

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ArgSpec describes a single tunable. Fields are textual and intended for
// help/validation UI; Options.Set does the machine-enforced parsing.
type ArgSpec struct {
	Name        string // human name, also the --set key
	Type        string // "int", "float", "enum"
	Default     string // textual default (for help only)
	Description string
}

// Params is the authoritative list of tunables understood by Options.Set.
var Params = []ArgSpec{
	{"rounds", "int", "0", "pyramid rounds; 0 derives floor(log2(min(w,h)))-1 from the image"},
	{"dark-bias", "int", "0", "rounds removed from the darkest pyramid"},
	{"bright-bias", "int", "0", "rounds removed from the brightest pyramid (2 protects paper from over-brightening)"},
	{"flat", "enum", "paper", "flat neighborhood policy (paper|unit): paper maps to white, unit divides by one"},
	{"log-base", "float", "1.1", "base of the log compression applied to histogram counts"},
	{"smooth-rounds", "int", "100", "cap on histogram smoothing rounds"},
	{"turn-limit", "int", "3", "smoothing stops once this many turning points or fewer remain"},
	{"extrapolation", "float", "2", "multiplier applied to the first/last turning point distance to derive black/white"},
	{"threshold", "int", "0", "binarize the corrected image at this level (0 = off)"},
	{"despeckle", "int", "0", "median radius applied after the tone curve (0 = off)"},
	{"workers", "int", "1", "goroutines per pyramid pass (0 = GOMAXPROCS)"},
}

// FlatPolicy selects how ContrastMapper treats a neighborhood whose local
// black equals its local white.
type FlatPolicy int

const (
	// FlatPaper maps flat neighborhoods to white: no tonal spread, no ink.
	FlatPaper FlatPolicy = iota
	// FlatUnit treats the zero range as a divisor of one.
	FlatUnit
)

func (p FlatPolicy) String() string {
	switch p {
	case FlatUnit:
		return "unit"
	default:
		return "paper"
	}
}

// ParseFlatPolicy parses "paper" or "unit".
func ParseFlatPolicy(s string) (FlatPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paper", "":
		return FlatPaper, nil
	case "unit", "one":
		return FlatUnit, nil
	default:
		return FlatPaper, fmt.Errorf("invalid flat policy %q (want paper|unit)", s)
	}
}

// Options holds every tunable of the correction pipeline plus the
// observational hooks (Sink, Logger). The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	Rounds        int
	DarkBias      int
	BrightBias    int
	Flat          FlatPolicy
	LogBase       float64
	SmoothRounds  int
	TurnLimit     int
	Extrapolation float64
	Threshold     int
	Despeckle     int
	Workers       int

	// Sink receives intermediate buffers when non-nil.
	Sink Sink
	// Logger receives per-stage debug events.
	Logger zerolog.Logger
}

// DefaultOptions returns the tunables listed in Params with their defaults.
func DefaultOptions() Options {
	return Options{
		Flat:          FlatPaper,
		LogBase:       1.1,
		SmoothRounds:  100,
		TurnLimit:     3,
		Extrapolation: 2,
		Workers:       1,
		Logger:        zerolog.Nop(),
	}
}

// Set parses value and assigns it to the tunable called name.
func (o *Options) Set(name, value string) error {
	value = strings.TrimSpace(value)
	switch name {
	case "rounds":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		o.Rounds = v
	case "dark-bias":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		o.DarkBias = v
	case "bright-bias":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		o.BrightBias = v
	case "flat":
		p, err := ParseFlatPolicy(value)
		if err != nil {
			return err
		}
		o.Flat = p
	case "log-base":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid log-base: %w", err)
		}
		if v <= 1 {
			return fmt.Errorf("invalid log-base %v: must be > 1", v)
		}
		o.LogBase = v
	case "smooth-rounds":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		if v == 0 {
			return fmt.Errorf("invalid smooth-rounds: must be at least 1")
		}
		o.SmoothRounds = v
	case "turn-limit":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		o.TurnLimit = v
	case "extrapolation":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid extrapolation: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid extrapolation %v: must be >= 0", v)
		}
		o.Extrapolation = v
	case "threshold":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		if v > 255 {
			return fmt.Errorf("invalid threshold %d: must be in [0,255]", v)
		}
		o.Threshold = v
	case "despeckle":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		o.Despeckle = v
	case "workers":
		v, err := parseNonNegative(name, value)
		if err != nil {
			return err
		}
		if v == 0 {
			v = runtime.GOMAXPROCS(0)
		}
		o.Workers = v
	default:
		return fmt.Errorf("unknown tunable: %s", name)
	}
	return nil
}

// Get returns the textual value of the tunable called name.
func (o Options) Get(name string) (string, bool) {
	switch name {
	case "rounds":
		return strconv.Itoa(o.Rounds), true
	case "dark-bias":
		return strconv.Itoa(o.DarkBias), true
	case "bright-bias":
		return strconv.Itoa(o.BrightBias), true
	case "flat":
		return o.Flat.String(), true
	case "log-base":
		return strconv.FormatFloat(o.LogBase, 'g', -1, 64), true
	case "smooth-rounds":
		return strconv.Itoa(o.SmoothRounds), true
	case "turn-limit":
		return strconv.Itoa(o.TurnLimit), true
	case "extrapolation":
		return strconv.FormatFloat(o.Extrapolation, 'g', -1, 64), true
	case "threshold":
		return strconv.Itoa(o.Threshold), true
	case "despeckle":
		return strconv.Itoa(o.Despeckle), true
	case "workers":
		return strconv.Itoa(o.Workers), true
	}
	return "", false
}

func parseNonNegative(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s %d: must be >= 0", name, v)
	}
	return v, nil
}
