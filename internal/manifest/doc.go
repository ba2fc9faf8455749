// Package manifest keeps a SQLite catalog of the frames an extraction run
// produced, stored as frames.db inside the output directory.
//
// Each output directory holds only its latest run; BeginRun discards earlier
// rows since a partial run is never resumed.
package manifest
