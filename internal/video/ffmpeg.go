package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"geotag/internal/config"
	"geotag/internal/media/ffprobe"
	"geotag/internal/services"
)

const bytesPerPixel = 3

// rawSource reads packed rgb24 frames from an ffmpeg pipe.
type rawSource struct {
	info   Info
	r      io.ReadCloser
	buf    []byte
	index  int
	wait   func() error
	stderr *bytes.Buffer
	closed bool
}

// OpenFFmpeg probes path and starts ffmpeg decoding it to raw rgb24 frames.
func OpenFFmpeg(ctx context.Context, cfg *config.Config, path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "video", "open", "video not readable", err)
	}
	ffprobeBinary, ffmpegBinary := "ffprobe", "ffmpeg"
	if cfg != nil {
		ffprobeBinary, ffmpegBinary = cfg.FFprobeBinary(), cfg.FFmpegBinary()
	}

	probe, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "probe", "ffprobe failed", err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "video", "probe", "no video stream in "+path, nil)
	}
	info := Info{
		Width:      stream.Width,
		Height:     stream.Height,
		FrameRate:  stream.FrameRate(),
		FrameCount: stream.FrameCount(),
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "probe", fmt.Sprintf("invalid dimensions %dx%d", info.Width, info.Height), nil)
	}
	if info.FrameCount == 0 && info.FrameRate > 0 {
		info.FrameCount = int(probe.DurationSeconds()*info.FrameRate + 0.5)
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, //nolint:gosec
		"-v", "error", "-nostdin", "-i", path,
		"-map", "0:v:0", "-f", "rawvideo", "-pix_fmt", "rgb24", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "decode", "start ffmpeg", err)
	}
	src := newRawSource(stdout, info, cmd.Wait)
	src.stderr = &stderr
	return src, nil
}

func newRawSource(r io.ReadCloser, info Info, wait func() error) *rawSource {
	return &rawSource{
		info: info,
		r:    r,
		buf:  make([]byte, info.Width*info.Height*bytesPerPixel),
		wait: wait,
	}
}

func (s *rawSource) Info() Info {
	return s.info
}

func (s *rawSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if _, err := io.ReadFull(s.r, s.buf); err != nil {
		if errors.Is(err, io.EOF) {
			if werr := s.finish(); werr != nil {
				return Frame{}, werr
			}
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, fmt.Errorf("frame %d: truncated rgb24 payload", s.index)
		}
		return Frame{}, fmt.Errorf("frame %d: read: %w", s.index, err)
	}
	frame := Frame{Index: s.index, Image: rgbToImage(s.buf, s.info.Width, s.info.Height)}
	s.index++
	return frame, nil
}

func (s *rawSource) finish() error {
	if s.closed || s.wait == nil {
		return nil
	}
	s.closed = true
	if err := s.wait(); err != nil {
		detail := ""
		if s.stderr != nil {
			detail = strings.TrimSpace(s.stderr.String())
		}
		return services.Wrap(services.ErrExternalTool, "video", "decode", detail, err)
	}
	return nil
}

// Close stops the decoder. After end of stream the process has been reaped
// and its pipe already closed, so there is nothing left to release.
func (s *rawSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.r.Close()
	if s.wait != nil {
		// Closing the pipe early makes ffmpeg exit with a broken pipe.
		_ = s.wait()
	}
	return err
}

func rgbToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf); i, j = i+bytesPerPixel, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
