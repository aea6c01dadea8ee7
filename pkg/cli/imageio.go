package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-jpeg2000"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// DecodeError reports a file that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a result that could not be encoded or written.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s: %v", e.Path, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// fallbackDecoder, when set, decodes blobs none of the built-in decoders
// recognize. The imagick build registers one.
var fallbackDecoder func(b []byte) (*stdimg.Gray, error)

// Decoded is a source file converted to a grayscale buffer, upright.
type Decoded struct {
	Gray        *stdimg.Gray
	Format      string
	Orientation int
	// Segments holds the JPEG APPn segments of the source, if any.
	Segments []AppSegment
}

// detectFormat identifies a blob by its magic bytes.
func detectFormat(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(b, []byte("II*\x00")), bytes.HasPrefix(b, []byte("MM\x00*")):
		return "tiff"
	case bytes.HasPrefix(b, []byte("BM")):
		return "bmp"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "webp"
	case bytes.HasPrefix(b, []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' ', 0x0D, 0x0A, 0x87, 0x0A}):
		return "jp2"
	case bytes.HasPrefix(b, []byte{0xFF, 0x4F, 0xFF, 0x51}):
		return "j2k"
	}
	return ""
}

// DecodeFile reads path, decodes it to luma and applies the EXIF/TIFF
// orientation so the buffer is upright. Failures are *DecodeError.
func DecodeFile(path string) (*Decoded, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	d, err := decodeBytes(b)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return d, nil
}

func decodeBytes(b []byte) (*Decoded, error) {
	d := &Decoded{Format: detectFormat(b), Orientation: 1}
	var img image.Image
	var err error
	switch d.Format {
	case "jp2", "j2k":
		img, err = jpeg2000.Decode(bytes.NewReader(b))
	case "":
		if fallbackDecoder == nil {
			return nil, fmt.Errorf("unrecognized image format")
		}
		g, ferr := fallbackDecoder(b)
		if ferr != nil {
			return nil, ferr
		}
		d.Format = "magick"
		d.Gray = g
		return d, nil
	default:
		img, _, err = image.Decode(bytes.NewReader(b))
	}
	if err != nil {
		return nil, err
	}
	d.Gray = stdimg.FromImage(img)

	switch d.Format {
	case "jpeg":
		if o, oerr := extractJPEGOrientation(b); oerr == nil {
			d.Orientation = o
		}
		d.Segments, _ = parseJPEGAppSegments(b)
	case "tiff":
		if o, oerr := readOrientation(b, 0); oerr == nil {
			d.Orientation = o
		}
	}
	if d.Orientation != 1 {
		d.Gray = stdimg.Orient(d.Gray, d.Orientation)
	}
	return d, nil
}

// decodableExt lists the extensions offered by the file picker.
var decodableExt = []string{".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp", ".webp", ".jp2", ".j2k"}

// encodableExt lists the output extensions EncodeFile can write.
var encodableExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
	".jp2": true, ".j2k": true, ".j2c": true,
}

// OutputPath derives the result path for in: the marker is inserted before
// the extension ("scan.jpg" -> "scan.fixed.jpg"). Inputs without an
// extension, or whose format cannot be encoded, get ".png". An empty outDir
// keeps the input's directory.
func OutputPath(in, marker, outDir string) string {
	dir, base := filepath.Split(in)
	if outDir != "" {
		dir = outDir
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if !encodableExt[strings.ToLower(ext)] {
		ext = ".png"
	}
	if marker != "" {
		stem += "." + marker
	}
	return filepath.Join(dir, stem+ext)
}

// EncodeFile writes g to path in the format implied by its extension. JPEG
// outputs carry segs with the EXIF orientation reset to 1.
func EncodeFile(path string, g *stdimg.Gray, segs []AppSegment, quality int) error {
	var buf bytes.Buffer
	if err := encodeTo(&buf, strings.ToLower(filepath.Ext(path)), g, segs, quality); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

func encodeTo(w io.Writer, ext string, g *stdimg.Gray, segs []AppSegment, quality int) error {
	img := g.Image()
	switch ext {
	case ".jpg", ".jpeg":
		if quality <= 0 || quality > 100 {
			quality = 92
		}
		var jb bytes.Buffer
		if err := jpeg.Encode(&jb, img, &jpeg.Options{Quality: quality}); err != nil {
			return err
		}
		out, err := insertAppSegmentsIntoJPEG(jb.Bytes(), carrySegments(segs))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case ".gif":
		return gif.Encode(w, grayPaletted(g), &gif.Options{NumColors: 256})
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".jp2":
		return jpeg2000.Encode(w, img, &jpeg2000.Options{Lossless: true})
	case ".j2k", ".j2c":
		return jpeg2000.Encode(w, img, &jpeg2000.Options{Format: jpeg2000.FormatJ2K, Lossless: true})
	default:
		return png.Encode(w, img)
	}
}

// grayPaletted maps g onto a 256-entry gray palette so GIF output is exact.
func grayPaletted(g *stdimg.Gray) *image.Paletted {
	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i)}
	}
	p := image.NewPaletted(image.Rect(0, 0, g.W, g.H), pal)
	copy(p.Pix, g.Pix)
	return p
}

// carrySegments keeps the APPn segments that still describe a grayscale
// result: ICC color profiles are dropped, and EXIF orientation is reset
// because the pixels were rotated at decode.
func carrySegments(segs []AppSegment) []AppSegment {
	out := make([]AppSegment, 0, len(segs))
	for _, s := range segs {
		switch {
		case s.Marker == 0xE2 && bytes.HasPrefix(s.Payload, []byte("ICC_PROFILE\x00")):
			continue
		case s.Marker == 0xE1:
			s.Payload = resetExifOrientation(s.Payload)
		}
		out = append(out, s)
	}
	return out
}
