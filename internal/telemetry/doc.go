// Package telemetry turns the free-form text of a drone caption into a flat
// key/value mapping of the bracketed tokens it contains (exposure settings,
// GPS position, altitudes, capture timestamp).
//
// Extraction never validates values; typed accessors on Fields parse on demand
// and report malformed tokens as errors.
package telemetry
