package domain

import (
	"time"
)

// DownloadStatus is the terminal outcome recorded for one attempt.
type DownloadStatus string

const (
	DownloadCompleted DownloadStatus = "completed"
	DownloadFailed    DownloadStatus = "failed"
)

// DownloadLogEntry is one row of the append-only download log. Entries are
// never mutated or deleted after creation.
type DownloadLogEntry struct {
	ID        int64
	UserID    int64
	Platform  Platform
	VideoURL  string
	Status    DownloadStatus
	CreatedAt time.Time
}

// NewDownloadLogEntry creates a log entry for a finished attempt.
func NewDownloadLogEntry(userID int64, platform Platform, videoURL string, status DownloadStatus) *DownloadLogEntry {
	return &DownloadLogEntry{
		UserID:    userID,
		Platform:  platform,
		VideoURL:  videoURL,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// PlatformCount is a per-platform aggregate of completed downloads.
type PlatformCount struct {
	Platform Platform
	Count    int
}
