package stdimg

import (
	"errors"
	"fmt"
)

// ErrDimensionTooSmall is returned when an image cannot support a single
// pyramid round.
var ErrDimensionTooSmall = errors.New("image too small for local contrast correction")

// DimensionError reports the offending dimensions. It unwraps to
// ErrDimensionTooSmall.
type DimensionError struct {
	Width, Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: %dx%d (need at least 4x4)", ErrDimensionTooSmall, e.Width, e.Height)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionTooSmall }
