// Package services defines shared utilities consumed by the extraction
// pipeline and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and frame indexes for
//     logging.
//   - Structured error markers plus the Wrap helper so the CLI can classify
//     failures (bad input vs missing tool vs malformed telemetry).
package services
