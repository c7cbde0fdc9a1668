package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/ytdlp"
)

// MetadataResolver answers metadata-only queries without transferring media.
type MetadataResolver interface {
	Resolve(ctx context.Context, url string) (domain.VideoMetadata, error)
}

// Transferrer downloads the media payload to a local path.
type Transferrer interface {
	Transfer(ctx context.Context, url, dest string, opts ytdlp.FormatOptions) error
}

// Engine converts an untrusted URL into either a policy-compliant local file
// or a classified failure. Each attempt owns a uniquely named temporary file
// that is removed on every exit path except a successful hand-off, where
// ownership of the file passes to the caller.
type Engine struct {
	resolver MetadataResolver
	transfer Transferrer
	policy   config.PolicyConfig
	download config.DownloadConfig
	logger   *slog.Logger
}

// New creates a retrieval engine.
func New(
	resolver MetadataResolver,
	transfer Transferrer,
	policy config.PolicyConfig,
	download config.DownloadConfig,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		resolver: resolver,
		transfer: transfer,
		policy:   policy,
		download: download,
		logger:   logger,
	}
}

// Retrieve runs the full pipeline for url: metadata resolution, policy
// check, primary then fallback transfer, post-download validation. It never
// returns an error; every outcome is funneled into the Result.
func (e *Engine) Retrieve(ctx context.Context, url string) domain.Result {
	meta, err := e.resolver.Resolve(ctx, url)
	if err != nil {
		return domain.Failed(err, domain.VideoMetadata{})
	}

	if meta.Duration > 0 && meta.Duration > e.policy.MaxDurationSeconds() {
		err := fmt.Errorf("%w: video is too long (maximum %d minutes)",
			domain.ErrDurationExceeded, e.policy.MaxDurationSeconds()/60)
		return domain.Failed(err, meta)
	}

	dest := filepath.Join(e.download.TempPath, "video-"+uuid.New().String()+".mp4")

	if err := e.downloadWithFallback(ctx, url, dest); err != nil {
		e.removeQuiet(dest)
		return domain.Failed(err, domain.VideoMetadata{})
	}

	return e.validate(dest, meta)
}

// downloadWithFallback performs the primary transfer and, when it is rejected, one
// fallback attempt with the permissive selector. The primary selector is
// frequently refused by the platform for anti-bot or format-availability
// reasons; the fallback trades quality for reliability.
func (e *Engine) downloadWithFallback(ctx context.Context, url, dest string) error {
	// Idempotent overwrite: never let a stale artifact survive into the
	// validation stage.
	e.removeQuiet(dest)

	primary := ytdlp.PrimaryFormat(e.policy, e.download.UserAgent)
	err := e.transfer.Transfer(ctx, url, dest, primary)
	if err == nil {
		return nil
	}

	e.logger.Warn("primary download failed, trying fallback format",
		"url", url, "error", err)
	e.removeQuiet(dest)

	return e.transfer.Transfer(ctx, url, dest, ytdlp.FallbackFormat())
}

// validate applies the post-download checks in order: existence, non-empty,
// size ceiling. The first failing check wins and any rejected artifact is
// deleted before returning. The existence stat is deliberate even though the
// transfer reported success: yt-dlp can exit zero having written nothing.
func (e *Engine) validate(dest string, meta domain.VideoMetadata) domain.Result {
	fi, err := os.Stat(dest)
	if err != nil {
		// A stat failure other than NotExist may hide an existing
		// artifact, so clean up before rejecting.
		if !os.IsNotExist(err) {
			e.removeQuiet(dest)
		}
		return domain.Failed(fmt.Errorf("%w: file was not created", domain.ErrFileNotCreated), meta)
	}

	size := fi.Size()
	if size == 0 {
		e.removeQuiet(dest)
		return domain.Failed(fmt.Errorf("%w: downloaded file is empty", domain.ErrEmptyFile), meta)
	}

	if size > e.policy.MaxFileSize {
		e.removeQuiet(dest)
		err := fmt.Errorf("%w: file is too large (maximum %d MB)",
			domain.ErrFileTooLarge, e.policy.MaxFileSize/(1024*1024))
		return domain.Failed(err, meta)
	}

	meta.FileSize = size
	return domain.Succeeded(dest, meta)
}

// removeQuiet deletes path if it exists; a failed deletion is logged, never
// propagated.
func (e *Engine) removeQuiet(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
