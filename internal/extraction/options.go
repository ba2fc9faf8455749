package extraction

import (
	"fmt"
	"strings"

	"geotag/internal/config"
	"geotag/internal/exifmeta"
	"geotag/internal/services"
	"geotag/internal/telemetry"
)

// LockFileName is held exclusively inside the output directory during a run.
const LockFileName = ".geotag.lock"

// Options controls one extraction run.
type Options struct {
	Video    string
	Captions string
	// OutputDir receives frame_<k>.jpg files; created when missing.
	OutputDir string
	// Every samples frames whose index is a multiple of it.
	Every          int
	Match          string
	Encoding       exifmeta.Encoding
	Camera         exifmeta.Camera
	AltitudeSource telemetry.Key
	JPEGQuality    int
	// ResizeWidth scales frames down to this width; 0 keeps the source size.
	ResizeWidth int
	Manifest    bool
}

// OptionsFromConfig seeds Options from the extract, camera and manifest
// sections. Callers fill in the video, captions and output paths.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Options{
		Every:          cfg.Extract.Every,
		Match:          cfg.Extract.MatchMode,
		Encoding:       exifmeta.Encoding(cfg.Extract.Encoding),
		Camera:         exifmeta.Camera(cfg.Camera),
		AltitudeSource: telemetry.Key(cfg.Extract.AltitudeSource),
		JPEGQuality:    cfg.Extract.JPEGQuality,
		ResizeWidth:    cfg.Extract.ResizeWidth,
		Manifest:       cfg.Manifest.Enabled,
	}
}

func (o *Options) validate() error {
	if strings.TrimSpace(o.Video) == "" {
		return services.Wrap(services.ErrValidation, "extract", "validate", "video path is required", nil)
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return services.Wrap(services.ErrValidation, "extract", "validate", "output directory is required", nil)
	}
	if o.Every < 1 {
		return services.Wrap(services.ErrValidation, "extract", "validate", fmt.Sprintf("sampling interval must be >= 1 (got %d)", o.Every), nil)
	}
	switch o.Match {
	case "":
		o.Match = config.MatchTime
	case config.MatchTime, config.MatchFrameIndex:
	default:
		return services.Wrap(services.ErrValidation, "extract", "validate", "unknown match mode "+o.Match, nil)
	}
	switch o.Encoding {
	case "":
		o.Encoding = exifmeta.EncodingLegacy
	case exifmeta.EncodingLegacy, exifmeta.EncodingPrecise:
	default:
		return services.Wrap(services.ErrValidation, "extract", "validate", "unknown encoding "+string(o.Encoding), nil)
	}
	switch o.AltitudeSource {
	case "":
		o.AltitudeSource = telemetry.KeyRelAlt
	case telemetry.KeyRelAlt, telemetry.KeyAbsAlt:
	default:
		return services.Wrap(services.ErrValidation, "extract", "validate", "unknown altitude source "+string(o.AltitudeSource), nil)
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = 95
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return services.Wrap(services.ErrValidation, "extract", "validate", fmt.Sprintf("jpeg quality must be 1-100 (got %d)", o.JPEGQuality), nil)
	}
	if o.ResizeWidth < 0 {
		return services.Wrap(services.ErrValidation, "extract", "validate", "resize width must not be negative", nil)
	}
	return nil
}
