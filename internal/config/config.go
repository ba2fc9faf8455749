package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output location configuration.
type Paths struct {
	// OutputDir is the parent directory for per-video frame folders. When empty
	// frames land in ./<video>_frames relative to the working directory.
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Extract contains frame sampling and metadata encoding settings.
type Extract struct {
	Every          int    `toml:"every"`
	MatchMode      string `toml:"match_mode"`
	Encoding       string `toml:"encoding"`
	Decoder        string `toml:"decoder"`
	JPEGQuality    int    `toml:"jpeg_quality"`
	ResizeWidth    int    `toml:"resize_width"`
	AltitudeSource string `toml:"altitude_source"`
}

// Camera contains the fixed IFD0 identification strings written to every frame.
type Camera struct {
	Make     string `toml:"make"`
	Model    string `toml:"model"`
	Software string `toml:"software"`
}

// Tools contains external binary locations.
type Tools struct {
	FFmpeg   string `toml:"ffmpeg"`
	FFprobe  string `toml:"ffprobe"`
	Exiftool string `toml:"exiftool"`
}

// Manifest controls the per-directory SQLite frame catalog.
type Manifest struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for geotag.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Extract: sampling interval, caption matching, rational encoding, decoder
//   - Camera: make/model/software strings
//   - Tools: ffmpeg, ffprobe and exiftool binaries
//   - Manifest: frame catalog toggle
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Extract  Extract  `toml:"extract"`
	Camera   Camera   `toml:"camera"`
	Tools    Tools    `toml:"tools"`
	Manifest Manifest `toml:"manifest"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("geotag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// FrameDir returns the directory frames of the given video are written to.
func (c *Config) FrameDir(videoPath string) string {
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_frames"
	if c.Paths.OutputDir == "" {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// FFmpegBinary returns the ffmpeg executable used for decoding.
func (c *Config) FFmpegBinary() string {
	if c.Tools.FFmpeg == "" {
		return defaultFFmpeg
	}
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if c.Tools.FFprobe == "" {
		return defaultFFprobe
	}
	return c.Tools.FFprobe
}

// ExiftoolBinary returns the exiftool executable used by inspect --exiftool.
func (c *Config) ExiftoolBinary() string {
	if c.Tools.Exiftool == "" {
		return defaultExiftool
	}
	return c.Tools.Exiftool
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
