package testsupport

import (
	"path/filepath"
	"testing"

	"geotag/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Tool binaries point at names that never resolve so tests cannot shell out
// by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Tools.FFmpeg = "geotag-test-missing-ffmpeg"
	cfgVal.Tools.FFprobe = "geotag-test-missing-ffprobe"
	cfgVal.Tools.Exiftool = "geotag-test-missing-exiftool"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEvery overrides the sampling interval.
func WithEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extract.Every = n
	}
}

// WithMatchMode overrides the caption matching mode.
func WithMatchMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extract.MatchMode = mode
	}
}

// WithoutManifest disables the frame catalog.
func WithoutManifest() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = false
	}
}
