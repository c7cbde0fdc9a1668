package domain

// Platform identifies the source video platform.
type Platform string

const (
	// PlatformYouTube is the only platform this bot supports.
	PlatformYouTube Platform = "youtube"
)

// String returns the string representation of the Platform.
func (p Platform) String() string {
	return string(p)
}

// VideoMetadata describes a video as reported by the extraction backend,
// resolved before any payload transfer. Immutable once produced.
type VideoMetadata struct {
	// Title is the video title, "Unknown" when the platform reports none.
	Title string

	// Duration is the video length in seconds. Zero means unknown.
	Duration int

	// ViewCount is the platform-reported view count, zero when absent.
	ViewCount int64

	// FileSize is the size of the downloaded artifact in bytes, populated
	// only after the download passed post-validation.
	FileSize int64
}

// Empty reports whether the metadata carries no resolved information.
func (m VideoMetadata) Empty() bool {
	return m == VideoMetadata{}
}
