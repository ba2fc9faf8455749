package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"

	"geotag/internal/config"
	"geotag/internal/services"
)

// Info describes the decoded stream.
type Info struct {
	Width     int
	Height    int
	FrameRate float64
	// FrameCount is 0 when the container does not report one.
	FrameCount int
}

// Frame is one decoded picture. Image is only valid until the next call to
// Next on the same source.
type Frame struct {
	Index int
	Image image.Image
}

// Source yields decoded frames in presentation order.
type Source interface {
	Info() Info
	// Next returns io.EOF after the last frame.
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// Open picks a decoder for path according to cfg.Extract.Decoder.
func Open(ctx context.Context, cfg *config.Config, path string) (Source, error) {
	decoder := config.DecoderAuto
	if cfg != nil {
		decoder = cfg.Extract.Decoder
	}
	switch decoder {
	case config.DecoderMPEG:
		return OpenMPEG(path)
	case config.DecoderFFmpeg:
		return OpenFFmpeg(ctx, cfg, path)
	case config.DecoderAuto, "":
		if IsMPEG1(path) {
			src, err := OpenMPEG(path)
			if err == nil || !errors.Is(err, services.ErrValidation) {
				return src, err
			}
		}
		return OpenFFmpeg(ctx, cfg, path)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "video", "open", "unknown decoder "+decoder, nil)
	}
}

// IsMPEG1 reports whether path starts with an MPEG-1 pack header. MPEG-2
// program streams share the start code but carry 01 instead of 0010 in the
// following marker bits.
func IsMPEG1(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	var header [5]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return false
	}
	return bytes.Equal(header[:4], packStartCode) && header[4]&0xf0 == 0x20
}

var packStartCode = []byte{0x00, 0x00, 0x01, 0xba}
