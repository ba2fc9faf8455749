// Package config loads, normalizes, and validates geotag configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides for the
// ffmpeg/ffprobe binaries. The Config type centralizes every knob the CLI and
// the extraction pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical mode names, and clear validation errors.
package config
