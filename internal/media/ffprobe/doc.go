// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: video/audio/subtitle stream properties, including frame rate
//     and frame count for video
//
// Inspect runs the binary; Parse decodes a payload already in hand.
package ffprobe
