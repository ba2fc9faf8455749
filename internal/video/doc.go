// Package video decodes video files into sequential frames.
//
// Two decoders implement Source: ffmpeg piping raw rgb24 frames (any format
// ffmpeg reads, including DJI MP4/MOV) and a pure-Go MPEG-1 decoder that
// needs no external binaries. Open selects one from configuration.
package video
