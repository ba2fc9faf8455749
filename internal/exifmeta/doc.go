// Package exifmeta converts caption telemetry into EXIF tags and embeds them
// into JPEG frames.
//
// Conversions follow the fixed-precision rules of DJI geotagging tools:
// coordinates become truncated degree/minute/second triples and decimals
// become n/100 rationals. The precise encoding relaxes both for callers that
// do not need byte-compatible output.
//
// Key entry points:
//   - Build: telemetry.Fields to Tags
//   - Write / Embed: insert Tags into a JPEG file or buffer
//   - Read / Decode: flatten an image's EXIF block for display and tests
//   - ExiftoolDump: full exiftool report when the binary is available
package exifmeta
