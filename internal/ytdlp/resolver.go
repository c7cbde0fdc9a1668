package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// Resolver answers metadata-only queries against the platform via yt-dlp.
// It never transfers the payload and never writes a file.
type Resolver struct {
	runner runner
	cfg    config.DownloadConfig
	logger *slog.Logger
}

// NewResolver creates a metadata resolver backed by the yt-dlp binary.
func NewResolver(cfg config.DownloadConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		runner: &execRunner{binaryPath: cfg.BinaryPath},
		cfg:    cfg,
		logger: logger,
	}
}

// videoInfo is the subset of yt-dlp's JSON dump the resolver cares about.
// Duration is a float because yt-dlp reports fractional seconds for some
// extractors.
type videoInfo struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	ViewCount int64   `json:"view_count"`
}

// Resolve fetches title, duration and view count for url without downloading
// the media. Any exec, parse or platform-side failure is reported as a
// wrapped domain.ErrExtraction; nothing propagates past this boundary.
func (r *Resolver) Resolve(ctx context.Context, url string) (domain.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.MetadataTimeout)
	defer cancel()

	out, err := r.runner.run(ctx,
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--no-playlist",
		url,
	)
	if err != nil {
		r.logger.Error("metadata extraction failed", "url", url, "error", err)
		return domain.VideoMetadata{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var info videoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		r.logger.Error("metadata parse failed", "url", url, "error", err)
		return domain.VideoMetadata{}, fmt.Errorf("%w: parse info: %v", domain.ErrExtraction, err)
	}

	meta := domain.VideoMetadata{
		Title:     info.Title,
		Duration:  int(info.Duration),
		ViewCount: info.ViewCount,
	}
	if meta.Title == "" {
		meta.Title = "Unknown"
	}

	return meta, nil
}
