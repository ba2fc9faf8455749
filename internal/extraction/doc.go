// Package extraction runs the frame sampling and geotagging pipeline.
//
// Run walks the decoded frames of a video once, in order. Every Nth frame
// is matched against the caption track; a matched frame is written as
// frame_<k>.jpg, where k counts written frames from zero, and the caption's
// telemetry is embedded into it as EXIF. A failed metadata write leaves the
// untagged JPEG in place and the run moves on. The run is not resumable:
// rerunning overwrites frames from frame_0.jpg.
//
// An exclusive lock file in the output directory keeps two runs from
// interleaving their frames, and an optional SQLite manifest records every
// written frame.
package extraction
