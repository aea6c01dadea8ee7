package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// HasFzf reports whether fzf is on PATH.
func HasFzf() bool {
	_, err := exec.LookPath("fzf")
	return err == nil
}

// fzfPreviewCommand picks the best image renderer the terminal supports for
// fzf's preview pane, chaining fallbacks with ||.
func fzfPreviewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch {
	case isKitty():
		return "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || " + chafa
	case isInlineImageCapable():
		return "imgcat {} 2>/dev/null || " + chafa
	case isSixelCapable():
		return "img2sixel {} 2>/dev/null || " + chafa
	}
	return chafa
}

// SelectFilesWithFzf lists the images under startDir in fzf with
// multi-select enabled and returns the chosen paths.
func SelectFilesWithFzf(startDir string) ([]string, error) {
	var names []string
	for _, ext := range decodableExt {
		names = append(names, fmt.Sprintf("-iname '*%s'", ext))
	}
	cmdStr := fmt.Sprintf(
		"find %s -type f \\( %s \\) | sort | fzf -m --height 100%% --border --prompt='Pages> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		strings.Join(names, " -o "),
		fzfPreviewCommand(),
	)
	cmd := exec.Command("bash", "-lc", cmdStr)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	clearKittyImages()
	if err != nil {
		return nil, fmt.Errorf("error running fzf for files: %w", err)
	}
	var sel []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sel = append(sel, line)
		}
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("no file selected")
	}
	return sel, nil
}

// clearKittyImages emits the kitty graphics "delete" control sequence.
// Terminals that don't understand it will ignore it.
func clearKittyImages() {
	if isKitty() {
		fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
	}
}
