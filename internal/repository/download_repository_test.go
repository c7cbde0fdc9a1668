package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconidentify/tubegrab/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRepo(t *testing.T) *SQLiteDownloadRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteDownloadRepository(path, testLogger())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSave_AssignsID(t *testing.T) {
	repo := newTestRepo(t)

	entry := domain.NewDownloadLogEntry(12345, domain.PlatformYouTube, "https://youtu.be/abc", domain.DownloadCompleted)
	if err := repo.Save(context.Background(), entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("Save should assign the generated ID")
	}

	second := domain.NewDownloadLogEntry(12345, domain.PlatformYouTube, "https://youtu.be/def", domain.DownloadFailed)
	if err := repo.Save(context.Background(), second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if second.ID <= entry.ID {
		t.Errorf("IDs should increment: %d then %d", entry.ID, second.ID)
	}
}

func TestUserStats_CountsCompletedOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := domain.NewDownloadLogEntry(777, domain.PlatformYouTube, "https://youtu.be/ok", domain.DownloadCompleted)
		if err := repo.Save(ctx, entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	failed := domain.NewDownloadLogEntry(777, domain.PlatformYouTube, "https://youtu.be/bad", domain.DownloadFailed)
	if err := repo.Save(ctx, failed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	other := domain.NewDownloadLogEntry(888, domain.PlatformYouTube, "https://youtu.be/ok", domain.DownloadCompleted)
	if err := repo.Save(ctx, other); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stats, err := repo.UserStats(ctx, 777)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}

	if len(stats) != 1 {
		t.Fatalf("stats groups = %d, want 1", len(stats))
	}
	if stats[0].Platform != domain.PlatformYouTube {
		t.Errorf("platform = %q, want %q", stats[0].Platform, domain.PlatformYouTube)
	}
	if stats[0].Count != 3 {
		t.Errorf("count = %d, want 3 (failed rows excluded)", stats[0].Count)
	}
}

func TestUserStats_EmptyForUnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.UserStats(context.Background(), 424242)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("stats = %v, want empty", stats)
	}
}

func TestInit_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	repo, err := NewSQLiteDownloadRepository(path, testLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	entry := domain.NewDownloadLogEntry(1, domain.PlatformYouTube, "https://youtu.be/x", domain.DownloadCompleted)
	if err := repo.Save(context.Background(), entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	repo.Close()

	// Reopening must keep existing rows.
	repo2, err := NewSQLiteDownloadRepository(path, testLogger())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo2.Close()

	stats, err := repo2.UserStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if len(stats) != 1 || stats[0].Count != 1 {
		t.Errorf("stats after reopen = %v, want one completed row", stats)
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
