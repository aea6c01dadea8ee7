package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// Terminal preview of corrected pages.
//
// Backends, in detection order:
//   - iTerm2-style OSC 1337 inline images (iTerm2, WezTerm, Warp, VSCode, ...)
//   - kitty graphics protocol (kitty, ghostty, Konsole)
//   - img2sixel for sixel terminals
//   - chafa for anything else
//
// PREVIEW_BACKEND=kitty|inline|sixel|chafa forces a backend.

// Character cell assumptions used to size previews.
const (
	cellW   = 8
	cellH   = 16
	maxCols = 80
	maxRows = 40
)

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "tabby") || strings.Contains(term, "vscode")
}

func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" || os.Getenv("WT_SESSION") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(os.Getenv("TERM")), "foot")
}

func hasChafa() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSize is the placement of a preview in character cells.
type PreviewSize struct {
	Cols, Rows int
}

// previewSize fits a w x h image into at most maxCols x maxRows cells,
// keeping the aspect ratio and never scaling up.
func previewSize(w, h int) PreviewSize {
	scale := min(1, float64(maxCols*cellW)/float64(w), float64(maxRows*cellH)/float64(h))
	cols := int(math.Ceil(float64(w) * scale / cellW))
	rows := int(math.Ceil(float64(h) * scale / cellH))
	return PreviewSize{Cols: max(1, cols), Rows: max(1, rows)}
}

// previewBackend picks the backend for the current terminal, or "" when
// none is usable.
func previewBackend() string {
	if v := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); v != "" {
		return v
	}
	switch {
	case isInlineImageCapable():
		return "inline"
	case isKitty():
		return "kitty"
	case isSixelCapable():
		return "sixel"
	case hasChafa():
		return "chafa"
	}
	return ""
}

// PreviewGray renders g into w using the best backend the terminal offers.
// Large pages are downscaled before encoding.
func PreviewGray(w io.Writer, g *stdimg.Gray, log zerolog.Logger) error {
	if g == nil {
		return fmt.Errorf("nil image")
	}
	small := stdimg.Fit(g, maxCols*cellW, maxRows*cellH)
	var buf bytes.Buffer
	if err := png.Encode(&buf, small.Image()); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	size := previewSize(g.W, g.H)
	backend := previewBackend()
	log.Debug().Str("backend", backend).Int("cols", size.Cols).Int("rows", size.Rows).Msg("terminal preview")
	switch backend {
	case "inline", "iterm", "wezterm":
		return sendInlineImage(w, buf.Bytes(), size)
	case "kitty":
		return sendKittyImage(w, buf.Bytes(), size)
	case "sixel":
		if err := runRenderer(w, buf.Bytes(), "img2sixel", "-"); err == nil {
			return nil
		}
		return sendChafaImage(w, buf.Bytes(), size)
	case "chafa":
		return sendChafaImage(w, buf.Bytes(), size)
	case "":
		return fmt.Errorf("no preview protocol matched")
	}
	return fmt.Errorf("unknown preview backend %q", backend)
}

// sendKittyImage transmits a PNG with the kitty graphics protocol in base64
// chunks of at most 4096 bytes; the first chunk carries the placement.
func sendKittyImage(w io.Writer, data []byte, size PreviewSize) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := 0
		if end < len(enc) {
			more = 1
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = fmt.Sprintf("\x1b_Gm=%d;%s\x1b\\", more, enc[pos:end])
		}
		if _, err := io.WriteString(w, seq); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// sendInlineImage emits the iTerm2-style OSC 1337 inline file sequence.
func sendInlineImage(w io.Writer, data []byte, size PreviewSize) error {
	seq := fmt.Sprintf("\x1b]1337;File=name=%s;inline=1;size=%d;width=%d;height=%d:%s\a\n",
		base64.StdEncoding.EncodeToString([]byte("preview.png")), len(data),
		size.Cols, size.Rows, base64.StdEncoding.EncodeToString(data))
	_, err := io.WriteString(w, seq)
	return err
}

func sendChafaImage(w io.Writer, data []byte, size PreviewSize) error {
	if !hasChafa() {
		return fmt.Errorf("chafa not found in PATH")
	}
	return runRenderer(w, data, "chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
}

// runRenderer pipes data into an external renderer writing to w.
func runRenderer(w io.Writer, data []byte, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = w
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
