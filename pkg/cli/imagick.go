//go:build imagick

package cli

import (
	"fmt"

	"gopkg.in/gographics/imagick.v3/imagick"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// With the imagick build tag, formats the Go decoders do not know (HEIC,
// PDF pages, RAW, ...) are read through ImageMagick.
func init() {
	imagick.Initialize()
	fallbackDecoder = decodeWithMagick
}

func decodeWithMagick(b []byte) (*stdimg.Gray, error) {
	mw := imagick.NewMagickWand()
	defer mw.Destroy()
	if err := mw.ReadImageBlob(b); err != nil {
		return nil, fmt.Errorf("imagemagick: %w", err)
	}
	if err := mw.AutoOrientImage(); err != nil {
		return nil, fmt.Errorf("imagemagick orient: %w", err)
	}
	w, h := mw.GetImageWidth(), mw.GetImageHeight()
	px, err := mw.ExportImagePixels(0, 0, w, h, "I", imagick.PIXEL_CHAR)
	if err != nil {
		return nil, fmt.Errorf("imagemagick export: %w", err)
	}
	pix, ok := px.([]byte)
	if !ok || len(pix) != int(w*h) {
		return nil, fmt.Errorf("imagemagick export: unexpected pixel buffer")
	}
	return &stdimg.Gray{W: int(w), H: int(h), Pix: pix}, nil
}
