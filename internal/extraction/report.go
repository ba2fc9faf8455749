package extraction

import "time"

// FrameFailure describes a sampled frame that did not come out fully tagged.
type FrameFailure struct {
	FrameIndex int
	// File is empty when the JPEG itself could not be written.
	File string
	Err  error
}

// Report summarizes a run.
type Report struct {
	RunID            string
	OutputDir        string
	FramesRead       int
	Sampled          int
	Matched          int
	Written          int
	MetadataFailures int
	WriteFailures    int
	Failures         []FrameFailure
	Duration         time.Duration
}

// FailureCount returns metadata and write failures combined.
func (r Report) FailureCount() int {
	return r.MetadataFailures + r.WriteFailures
}
