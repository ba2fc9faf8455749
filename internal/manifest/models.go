package manifest

import "time"

// Status records what happened to a sampled frame.
type Status string

const (
	// StatusWritten means the JPEG and its metadata were both written.
	StatusWritten Status = "written"
	// StatusMetadataFailed means the JPEG exists without geotag metadata.
	StatusMetadataFailed Status = "metadata_failed"
	// StatusWriteFailed means no JPEG was produced for the frame.
	StatusWriteFailed Status = "write_failed"
)

// Run is one extraction pass over a video.
type Run struct {
	ID         string
	Video      string
	Captions   string
	Every      int
	MatchMode  string
	Encoding   string
	StartedAt  time.Time
	FinishedAt *time.Time
	FramesRead int
	Written    int
	Failures   int
}

// Frame is the catalog row of one matched frame.
type Frame struct {
	RunID        string
	FrameIndex   int
	File         string
	CaptionIndex int
	Position     time.Duration
	Latitude     *float64
	Longitude    *float64
	Altitude     *float64
	Status       Status
	Error        string
}
