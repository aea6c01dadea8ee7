package cli

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// rawMagic starts every raw diagnostic dump, followed by big-endian uint32
// width and height and a zstd frame with the samples.
const rawMagic = "DFXG"

// maxRawSamples bounds the size a raw dump header may announce.
const maxRawSamples = 1 << 30

// DirSink writes every recorded stage of one image into Dir as
// <Base>.<stage>.<scale>.png, or .gray.zst when Format is "zst".
type DirSink struct {
	Dir    string
	Base   string
	Format string
}

// NewDirSink creates dir if needed and returns a sink for the image base.
func NewDirSink(dir, base, format string) (*DirSink, error) {
	switch format {
	case "", "png":
		format = "png"
	case "zst":
	default:
		return nil, fmt.Errorf("invalid debug format %q (want png|zst)", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}
	return &DirSink{Dir: dir, Base: base, Format: format}, nil
}

// Path returns the file a stage is written to.
func (s *DirSink) Path(stage string, scale int) string {
	ext := ".png"
	if s.Format == "zst" {
		ext = ".gray.zst"
	}
	return filepath.Join(s.Dir, fmt.Sprintf("%s.%s.%d%s", s.Base, stage, scale, ext))
}

func (s *DirSink) Record(stage string, scale int, g *stdimg.Gray) error {
	f, err := os.Create(s.Path(stage, scale))
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if s.Format == "zst" {
		err = WriteRawDump(w, g)
	} else {
		err = png.Encode(w, g.Image())
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteRawDump writes g in the raw diagnostic format.
func WriteRawDump(w io.Writer, g *stdimg.Gray) error {
	var hdr [12]byte
	copy(hdr[:4], rawMagic)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(g.W))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(g.H))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}
	if _, err := enc.Write(g.Pix); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadRawDump reads a buffer written by WriteRawDump.
func ReadRawDump(r io.Reader) (*stdimg.Gray, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read dump header: %w", err)
	}
	if string(hdr[:4]) != rawMagic {
		return nil, fmt.Errorf("not a raw dump")
	}
	w := int(binary.BigEndian.Uint32(hdr[4:8]))
	h := int(binary.BigEndian.Uint32(hdr[8:12]))
	if w == 0 || h == 0 || uint64(w)*uint64(h) > maxRawSamples {
		return nil, fmt.Errorf("invalid dump size %dx%d", w, h)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	g := stdimg.NewGray(w, h)
	if _, err := io.ReadFull(dec, g.Pix); err != nil {
		return nil, fmt.Errorf("read dump samples: %w", err)
	}
	return g, nil
}
