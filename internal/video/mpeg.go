package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/mpeg"

	"geotag/internal/services"
)

// maxEmptyDecodes bounds consecutive nil decodes before the stream is
// treated as corrupt.
const maxEmptyDecodes = 16

// mpegSource decodes MPEG-1 program streams without external tools.
type mpegSource struct {
	file  *os.File
	mpg   *mpeg.MPEG
	info  Info
	index int
	ended bool
}

// OpenMPEG opens an MPEG-1 file with the pure-Go decoder. Streams without a
// decodable video track are rejected.
func OpenMPEG(path string) (Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "video", "open", "video not readable", err)
	}
	mpg, err := mpeg.New(file)
	if err != nil {
		file.Close()
		return nil, services.Wrap(services.ErrValidation, "video", "open", "not an MPEG-1 stream", err)
	}
	if mpg.NumVideoStreams() == 0 || mpg.Width() <= 0 || mpg.Height() <= 0 {
		file.Close()
		return nil, services.Wrap(services.ErrValidation, "video", "open",
			fmt.Sprintf("no MPEG-1 video stream in %s", path), nil)
	}
	mpg.SetAudioEnabled(false)
	return newMPEGSource(file, mpg), nil
}

func newMPEGSource(file *os.File, mpg *mpeg.MPEG) *mpegSource {
	info := Info{
		Width:     mpg.Width(),
		Height:    mpg.Height(),
		FrameRate: mpg.Framerate(),
	}
	if info.FrameRate > 0 {
		info.FrameCount = int(mpg.Duration().Seconds()*info.FrameRate + 0.5)
	}
	return &mpegSource{file: file, mpg: mpg, info: info}
}

func (s *mpegSource) Info() Info {
	return s.info
}

func (s *mpegSource) Next(ctx context.Context) (Frame, error) {
	// The decoder signals its end only once; asking again would block.
	if s.ended {
		return Frame{}, io.EOF
	}
	for empty := 0; ; empty++ {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		if frame := s.mpg.DecodeVideo(); frame != nil {
			out := Frame{Index: s.index, Image: frame.YCbCr()}
			s.index++
			return out, nil
		}
		if s.mpg.HasEnded() {
			s.ended = true
			return Frame{}, io.EOF
		}
		if empty >= maxEmptyDecodes {
			return Frame{}, services.Wrap(services.ErrValidation, "video", "decode",
				fmt.Sprintf("frame %d: MPEG-1 decoder produced no picture", s.index), errors.New("corrupt or video-less stream"))
		}
	}
}

func (s *mpegSource) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close video: %w", err)
	}
	return nil
}
