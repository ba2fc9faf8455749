package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"geotag/internal/config"
)

func TestLoadDefaultConfigWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEOTAG_FFMPEG", "")
	t.Setenv("GEOTAG_FFPROBE", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantPath := filepath.Join(tempHome, ".config", "geotag", "config.toml")
	if resolved != wantPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, wantPath)
	}
	if cfg.Extract.Every != 30 {
		t.Fatalf("unexpected default every: %d", cfg.Extract.Every)
	}
	if cfg.Extract.MatchMode != config.MatchTime {
		t.Fatalf("unexpected default match mode: %q", cfg.Extract.MatchMode)
	}
	if cfg.Extract.Encoding != config.EncodingLegacy {
		t.Fatalf("unexpected default encoding: %q", cfg.Extract.Encoding)
	}
	if cfg.Camera.Make != "DJI" || cfg.Camera.Model != "Mini 3 Pro" {
		t.Fatalf("unexpected camera defaults: %+v", cfg.Camera)
	}
	if !cfg.Manifest.Enabled {
		t.Fatal("expected manifest enabled by default")
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "geotag.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Extract struct {
			Every     int    `toml:"every"`
			MatchMode string `toml:"match_mode"`
			Encoding  string `toml:"encoding"`
		} `toml:"extract"`
		Camera struct {
			Model string `toml:"model"`
		} `toml:"camera"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "frames")
	custom.Extract.Every = 5
	custom.Extract.MatchMode = " Frame_Index "
	custom.Extract.Encoding = "PRECISE"
	custom.Camera.Model = "  Mavic 3 "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Extract.Every != 5 {
		t.Fatalf("expected every 5, got %d", cfg.Extract.Every)
	}
	if cfg.Extract.MatchMode != config.MatchFrameIndex {
		t.Fatalf("expected normalized match mode, got %q", cfg.Extract.MatchMode)
	}
	if cfg.Extract.Encoding != config.EncodingPrecise {
		t.Fatalf("expected precise encoding, got %q", cfg.Extract.Encoding)
	}
	if cfg.Camera.Model != "Mavic 3" {
		t.Fatalf("expected trimmed model, got %q", cfg.Camera.Model)
	}
	if cfg.Camera.Make != "DJI" {
		t.Fatalf("expected default make to survive partial file, got %q", cfg.Camera.Make)
	}
	if got := cfg.FrameDir("/videos/DJI_0055.MP4"); got != filepath.Join(tempDir, "frames", "DJI_0055_frames") {
		t.Fatalf("unexpected frame dir: %q", got)
	}
}

func TestFrameDirDefaultsToRelativeFolder(t *testing.T) {
	cfg := config.Default()
	if got := cfg.FrameDir("C/clips/DJI_0055.MP4"); got != "DJI_0055_frames" {
		t.Fatalf("unexpected frame dir: %q", got)
	}
}

func TestEnvOverridesToolBinaries(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEOTAG_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("GEOTAG_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"every", func(c *config.Config) { c.Extract.Every = 0 }, "extract.every"},
		{"match", func(c *config.Config) { c.Extract.MatchMode = "nearest" }, "extract.match_mode"},
		{"encoding", func(c *config.Config) { c.Extract.Encoding = "float" }, "extract.encoding"},
		{"decoder", func(c *config.Config) { c.Extract.Decoder = "opencv" }, "extract.decoder"},
		{"quality", func(c *config.Config) { c.Extract.JPEGQuality = 101 }, "extract.jpeg_quality"},
		{"resize", func(c *config.Config) { c.Extract.ResizeWidth = -1 }, "extract.resize_width"},
		{"altitude", func(c *config.Config) { c.Extract.AltitudeSource = "baro" }, "extract.altitude_source"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "geotag.toml")
	if err := os.WriteFile(configPath, []byte("[extract]\nframes_per_second = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Extract.Every != config.Default().Extract.Every {
		t.Fatalf("sample every differs from default: %d", cfg.Extract.Every)
	}
}

func TestEncodeIncludesSections(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, section := range []string{"[extract]", "[camera]", "[manifest]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("expected %s in encoded config:\n%s", section, data)
		}
	}
}
