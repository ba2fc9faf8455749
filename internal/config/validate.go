package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtract() error {
	if c.Extract.Every < 1 {
		return errors.New("extract.every must be at least 1")
	}
	if err := ensureOneOf("extract.match_mode", c.Extract.MatchMode, MatchTime, MatchFrameIndex); err != nil {
		return err
	}
	if err := ensureOneOf("extract.encoding", c.Extract.Encoding, EncodingLegacy, EncodingPrecise); err != nil {
		return err
	}
	if err := ensureOneOf("extract.decoder", c.Extract.Decoder, DecoderAuto, DecoderFFmpeg, DecoderMPEG); err != nil {
		return err
	}
	if err := ensureOneOf("extract.altitude_source", c.Extract.AltitudeSource, AltitudeRelative, AltitudeAbsolute); err != nil {
		return err
	}
	if c.Extract.JPEGQuality < 1 || c.Extract.JPEGQuality > 100 {
		return errors.New("extract.jpeg_quality must be between 1 and 100")
	}
	if c.Extract.ResizeWidth < 0 {
		return errors.New("extract.resize_width must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := ensureOneOf("logging.format", c.Logging.Format, "console", "json"); err != nil {
		return err
	}
	return ensureOneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error")
}

func ensureOneOf(key, value string, allowed ...string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (allowed: %v)", key, value, allowed)
}
