// Package main hosts the geotag CLI entrypoint and command graph.
//
// The Cobra command tree wraps the extraction pipeline ("extract") and the
// helpers around it: caption inspection, EXIF inspection of written frames,
// the per-directory frame manifest, a preflight report and configuration
// scaffolding. Configuration and logging are resolved once in
// commandContext so subcommands only deal with their own flags.
//
// Keep this package lean: new behaviour belongs in internal packages first
// and is surfaced here through flags or commands.
package main
