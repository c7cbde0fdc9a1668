package domain

import "errors"

// Retrieval error taxonomy. Every failure a retrieval attempt can surface
// wraps one of these sentinels, so callers may classify with errors.Is while
// the user-facing layer only ever shows the message text.
var (
	// ErrExtraction is returned when the metadata query fails.
	ErrExtraction = errors.New("metadata extraction failed")

	// ErrDurationExceeded is returned when the video is longer than the
	// configured ceiling.
	ErrDurationExceeded = errors.New("video duration exceeds limit")

	// ErrTransfer is returned when the download itself failed, after the
	// built-in fallback attempt.
	ErrTransfer = errors.New("video download failed")

	// ErrFileNotCreated is returned when the transfer reported success but
	// no file exists at the target path.
	ErrFileNotCreated = errors.New("downloaded file was not created")

	// ErrEmptyFile is returned when the downloaded file is zero bytes.
	ErrEmptyFile = errors.New("downloaded file is empty")

	// ErrFileTooLarge is returned when the downloaded file is over the
	// configured size ceiling.
	ErrFileTooLarge = errors.New("downloaded file exceeds size limit")
)
