package testsupport

import (
	"context"
	"io"

	"geotag/internal/video"
)

// FakeSource is an in-memory video.Source producing Frames gradient frames.
type FakeSource struct {
	Frames    int
	Width     int
	Height    int
	FrameRate float64
	// FailAt, when positive, makes Next return Err at that frame index.
	FailAt int
	Err    error

	next   int
	Closed bool
}

// NewFakeSource returns a 16x16 source at 30 fps.
func NewFakeSource(frames int) *FakeSource {
	return &FakeSource{Frames: frames, Width: 16, Height: 16, FrameRate: 30}
}

func (s *FakeSource) Info() video.Info {
	return video.Info{Width: s.Width, Height: s.Height, FrameRate: s.FrameRate, FrameCount: s.Frames}
}

func (s *FakeSource) Next(ctx context.Context) (video.Frame, error) {
	if err := ctx.Err(); err != nil {
		return video.Frame{}, err
	}
	if s.next >= s.Frames {
		return video.Frame{}, io.EOF
	}
	if s.FailAt > 0 && s.next == s.FailAt {
		return video.Frame{}, s.Err
	}
	frame := video.Frame{Index: s.next, Image: Image(s.Width, s.Height)}
	s.next++
	return frame, nil
}

func (s *FakeSource) Close() error {
	s.Closed = true
	return nil
}

// Opener returns an extraction-compatible open function yielding src.
func (s *FakeSource) Opener() func(context.Context, string) (video.Source, error) {
	return func(context.Context, string) (video.Source, error) {
		return s, nil
	}
}
