package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtract()
	c.normalizeCamera()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtract() {
	c.Extract.MatchMode = lowerOr(c.Extract.MatchMode, defaultMatchMode)
	if c.Extract.MatchMode == "frame_index" || c.Extract.MatchMode == "index" {
		c.Extract.MatchMode = MatchFrameIndex
	}
	c.Extract.Encoding = lowerOr(c.Extract.Encoding, defaultEncoding)
	c.Extract.Decoder = lowerOr(c.Extract.Decoder, defaultDecoder)
	c.Extract.AltitudeSource = lowerOr(c.Extract.AltitudeSource, defaultAltitudeSource)
	if c.Extract.JPEGQuality == 0 {
		c.Extract.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeCamera() {
	c.Camera.Make = strings.TrimSpace(c.Camera.Make)
	c.Camera.Model = strings.TrimSpace(c.Camera.Model)
	c.Camera.Software = strings.TrimSpace(c.Camera.Software)
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv("GEOTAG_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("GEOTAG_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = strings.TrimSpace(value)
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Exiftool = strings.TrimSpace(c.Tools.Exiftool)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
