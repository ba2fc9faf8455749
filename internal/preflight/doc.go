// Package preflight reports whether the external tools and output location
// an extraction needs are usable. The CLI "geotag doctor" command renders the
// results; "geotag extract" runs the same checks before decoding starts.
package preflight
