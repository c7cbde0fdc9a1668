package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// DownloadRepository is the append-only sink for retrieval outcomes.
type DownloadRepository interface {
	Save(ctx context.Context, entry *domain.DownloadLogEntry) error
	UserStats(ctx context.Context, userID int64) ([]domain.PlatformCount, error)
}

// SQLiteDownloadRepository persists download log entries in SQLite.
// Rows are inserted once per attempt and never mutated or deleted.
type SQLiteDownloadRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteDownloadRepository opens the database at path and ensures the
// schema exists.
func NewSQLiteDownloadRepository(path string, logger *slog.Logger) (*SQLiteDownloadRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &SQLiteDownloadRepository{db: db, logger: logger}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// init creates the downloads table and its indexes. Idempotent.
func (r *SQLiteDownloadRepository) init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			platform TEXT NOT NULL,
			video_url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_downloads_user_id
		ON downloads(user_id);

		CREATE INDEX IF NOT EXISTS idx_downloads_created_at
		ON downloads(created_at);
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	r.logger.Info("download log initialized")
	return nil
}

// Save inserts one log entry and fills in its generated ID.
func (r *SQLiteDownloadRepository) Save(ctx context.Context, entry *domain.DownloadLogEntry) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO downloads (user_id, platform, video_url, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.UserID, entry.Platform.String(), entry.VideoURL, string(entry.Status), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("save download: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}

	return nil
}

// UserStats returns the user's completed download counts grouped by platform.
func (r *SQLiteDownloadRepository) UserStats(ctx context.Context, userID int64) ([]domain.PlatformCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT platform, COUNT(*) AS count
		FROM downloads
		WHERE user_id = ? AND status = 'completed'
		GROUP BY platform
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PlatformCount
	for rows.Next() {
		var pc domain.PlatformCount
		var platform string
		if err := rows.Scan(&platform, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan user stats: %w", err)
		}
		pc.Platform = domain.Platform(platform)
		stats = append(stats, pc)
	}

	return stats, rows.Err()
}

// Ping verifies the database connection is alive.
func (r *SQLiteDownloadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database.
func (r *SQLiteDownloadRepository) Close() error {
	return r.db.Close()
}
