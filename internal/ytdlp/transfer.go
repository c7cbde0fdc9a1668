package ytdlp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// FormatOptions selects the format and extractor behavior for one transfer.
type FormatOptions struct {
	// Selector is a yt-dlp -f format expression.
	Selector string

	// ExtractorArgs tunes the extractor, mainly to dodge anti-bot checks.
	ExtractorArgs []string

	// UserAgent overrides the request User-Agent when non-empty.
	UserAgent string
}

// PrimaryFormat builds the quality-first selector: best video at or under
// 720p and the byte-size ceiling, degrading through an ordered preference
// list down to plain "best" when nothing matches.
func PrimaryFormat(policy config.PolicyConfig, userAgent string) FormatOptions {
	n := policy.MaxFileSize
	return FormatOptions{
		Selector: fmt.Sprintf(
			"best[height<=720][filesize<%d]/best[filesize<%d]/mp4[filesize<%d]/best",
			n, n, n,
		),
		ExtractorArgs: []string{"youtube:skip=dash,hls;player_client=android,web"},
		UserAgent:     userAgent,
	}
}

// FallbackFormat builds the permissive selector used after the primary
// attempt is rejected: smallest available, most compatible container.
func FallbackFormat() FormatOptions {
	return FormatOptions{Selector: "worst[ext=mp4]/worst"}
}

// Transferrer downloads the media payload to a local path.
type Transferrer struct {
	runner runner
	cfg    config.DownloadConfig
	logger *slog.Logger
}

// NewTransferrer creates a transfer adapter backed by the yt-dlp binary.
func NewTransferrer(cfg config.DownloadConfig, logger *slog.Logger) *Transferrer {
	return &Transferrer{
		runner: &execRunner{binaryPath: cfg.BinaryPath},
		cfg:    cfg,
		logger: logger,
	}
}

// Transfer downloads url to dest using the given format options, overwriting
// any existing file at dest. A failed transfer is reported as a wrapped
// domain.ErrTransfer.
func (t *Transferrer) Transfer(ctx context.Context, url, dest string, opts FormatOptions) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	args := []string{
		"-f", opts.Selector,
		"-o", dest,
		"--no-warnings",
		"--no-cache-dir",
		"--force-overwrites",
		"--no-playlist",
	}
	for _, ea := range opts.ExtractorArgs {
		args = append(args, "--extractor-args", ea)
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent", opts.UserAgent)
	}
	args = append(args, url)

	if _, err := t.runner.run(ctx, args...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransfer, err)
	}

	return nil
}
