package ytdlp

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// fakeRunner records invocations and plays back scripted output.
type fakeRunner struct {
	out  []byte
	err  error
	args [][]string
}

func (f *fakeRunner) run(ctx context.Context, args ...string) ([]byte, error) {
	f.args = append(f.args, args)
	return f.out, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testDownloadConfig() config.DownloadConfig {
	return config.DownloadConfig{
		BinaryPath:      "yt-dlp",
		Timeout:         time.Minute,
		MetadataTimeout: 30 * time.Second,
		UserAgent:       "test-agent",
	}
}

func TestResolver_Resolve_Success(t *testing.T) {
	runner := &fakeRunner{out: []byte(`{"title":"A Video","duration":321.4,"view_count":9876}`)}
	r := &Resolver{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	meta, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if meta.Title != "A Video" {
		t.Errorf("Title = %q, want %q", meta.Title, "A Video")
	}
	if meta.Duration != 321 {
		t.Errorf("Duration = %d, want 321", meta.Duration)
	}
	if meta.ViewCount != 9876 {
		t.Errorf("ViewCount = %d, want 9876", meta.ViewCount)
	}

	args := runner.args[0]
	for _, want := range []string{"--dump-single-json", "--skip-download", "https://youtu.be/abc"} {
		if !contains(args, want) {
			t.Errorf("args %v missing %q", args, want)
		}
	}
}

func TestResolver_Resolve_Defaults(t *testing.T) {
	runner := &fakeRunner{out: []byte(`{}`)}
	r := &Resolver{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	meta, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if meta.Title != "Unknown" {
		t.Errorf("Title = %q, want %q", meta.Title, "Unknown")
	}
	if meta.Duration != 0 || meta.ViewCount != 0 {
		t.Errorf("duration/view count should default to zero, got %+v", meta)
	}
}

func TestResolver_Resolve_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("yt-dlp failed: exit status 1: ERROR: video unavailable")}
	r := &Resolver{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	_, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	if err == nil {
		t.Fatal("expected error from failing runner")
	}
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
	if !strings.Contains(err.Error(), "video unavailable") {
		t.Errorf("err %q should carry the extractor message", err)
	}
}

func TestResolver_Resolve_BadJSON(t *testing.T) {
	runner := &fakeRunner{out: []byte("not json")}
	r := &Resolver{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	_, err := r.Resolve(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}

func TestTransferrer_Transfer_Args(t *testing.T) {
	runner := &fakeRunner{}
	tr := &Transferrer{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	opts := PrimaryFormat(config.PolicyConfig{MaxFileSize: 52428800}, "test-agent")
	err := tr.Transfer(context.Background(), "https://youtu.be/abc", "/tmp/out.mp4", opts)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	args := runner.args[0]
	for _, want := range []string{
		"-f", "-o", "/tmp/out.mp4",
		"--no-cache-dir", "--force-overwrites", "--no-playlist",
		"--user-agent", "test-agent",
		"https://youtu.be/abc",
	} {
		if !contains(args, want) {
			t.Errorf("args %v missing %q", args, want)
		}
	}
}

func TestTransferrer_Transfer_Error(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	tr := &Transferrer{runner: runner, cfg: testDownloadConfig(), logger: testLogger()}

	err := tr.Transfer(context.Background(), "https://youtu.be/abc", "/tmp/out.mp4", FallbackFormat())
	if !errors.Is(err, domain.ErrTransfer) {
		t.Errorf("err = %v, want ErrTransfer", err)
	}
}

func TestPrimaryFormat_Selector(t *testing.T) {
	opts := PrimaryFormat(config.PolicyConfig{MaxFileSize: 52428800}, "")

	want := "best[height<=720][filesize<52428800]/best[filesize<52428800]/mp4[filesize<52428800]/best"
	if opts.Selector != want {
		t.Errorf("Selector = %q, want %q", opts.Selector, want)
	}
	if len(opts.ExtractorArgs) == 0 {
		t.Error("primary format should carry extractor args")
	}
}

func TestFallbackFormat_Selector(t *testing.T) {
	opts := FallbackFormat()
	if opts.Selector != "worst[ext=mp4]/worst" {
		t.Errorf("Selector = %q, want %q", opts.Selector, "worst[ext=mp4]/worst")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo\nthree"); got != "one" {
		t.Errorf("firstLine = %q, want %q", got, "one")
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine = %q, want %q", got, "single")
	}
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
