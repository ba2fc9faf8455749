// Package subtitles parses SRT caption tracks and locates them for a video.
//
// DJI drones write one caption per video frame carrying the telemetry that
// geotag embeds into extracted stills. Captions come from an explicit path, a
// sidecar file next to the video, or the container's embedded subtitle
// stream, in that order.
//
// Track.Find performs the frame-to-caption lookup with first-match semantics.
package subtitles
