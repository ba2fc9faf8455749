package config

const (
	defaultConfigPath     = "~/.config/geotag/config.toml"
	defaultEvery          = 30
	defaultMatchMode      = MatchTime
	defaultEncoding       = EncodingLegacy
	defaultDecoder        = DecoderAuto
	defaultJPEGQuality    = 95
	defaultAltitudeSource = AltitudeRelative
	defaultCameraMake     = "DJI"
	defaultCameraModel    = "Mini 3 Pro"
	defaultCameraSoftware = "geotag"
	defaultFFmpeg         = "ffmpeg"
	defaultFFprobe        = "ffprobe"
	defaultExiftool       = "exiftool"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Caption matching modes.
const (
	// MatchTime converts the frame index to elapsed time using the frame rate.
	MatchTime = "time"
	// MatchFrameIndex compares the raw frame index against caption milliseconds.
	MatchFrameIndex = "frame-index"
)

// Rational encodings.
const (
	EncodingLegacy  = "legacy"
	EncodingPrecise = "precise"
)

// Decoders.
const (
	DecoderAuto   = "auto"
	DecoderFFmpeg = "ffmpeg"
	DecoderMPEG   = "mpeg"
)

// Altitude sources.
const (
	AltitudeRelative = "rel_alt"
	AltitudeAbsolute = "abs_alt"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Extract: Extract{
			Every:          defaultEvery,
			MatchMode:      defaultMatchMode,
			Encoding:       defaultEncoding,
			Decoder:        defaultDecoder,
			JPEGQuality:    defaultJPEGQuality,
			AltitudeSource: defaultAltitudeSource,
		},
		Camera: Camera{
			Make:     defaultCameraMake,
			Model:    defaultCameraModel,
			Software: defaultCameraSoftware,
		},
		Tools: Tools{
			FFmpeg:   defaultFFmpeg,
			FFprobe:  defaultFFprobe,
			Exiftool: defaultExiftool,
		},
		Manifest: Manifest{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
