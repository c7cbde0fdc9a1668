package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runner executes the yt-dlp binary. It exists so tests can substitute a
// fake process without a yt-dlp installation.
type runner interface {
	run(ctx context.Context, args ...string) ([]byte, error)
}

// execRunner runs the real binary.
type execRunner struct {
	binaryPath string
}

func (r *execRunner) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binaryPath, args...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("yt-dlp failed: %w", err)
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, firstLine(msg))
	}

	return out.Bytes(), nil
}

// firstLine keeps error output to a single line; yt-dlp stderr can run to
// pages of extractor diagnostics.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
