package video_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"geotag/internal/config"
	"geotag/internal/services"
	"geotag/internal/testsupport"
	"geotag/internal/video"
)

// clip.mpg is the gen2brain/mpeg test stream: 160x120 at 30 fps, about nine
// seconds of MPEG-1 video with one MP2 audio track.
const fixture = "testdata/clip.mpg"

func decodeAll(t *testing.T, src video.Source) []image.Image {
	t.Helper()
	ctx := context.Background()
	var frames []image.Image
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next after %d frames: %v", len(frames), err)
		}
		if frame.Index != len(frames) {
			t.Fatalf("frame index = %d, want %d", frame.Index, len(frames))
		}
		frames = append(frames, cloneImage(frame.Image))
	}
	return frames
}

func cloneImage(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func isUniform(img image.Image) bool {
	b := img.Bounds()
	first := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != first {
				return false
			}
		}
	}
	return true
}

func TestOpenMPEGDecodesFixture(t *testing.T) {
	src, err := video.OpenMPEG(fixture)
	if err != nil {
		t.Fatalf("OpenMPEG: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Width != 160 || info.Height != 120 || info.FrameRate != 30 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.FrameCount < 270 || info.FrameCount > 300 {
		t.Fatalf("frame count estimate = %d, want 270-300", info.FrameCount)
	}

	frames := decodeAll(t, src)
	if len(frames) < 200 {
		t.Fatalf("decoded %d frames, want at least 200", len(frames))
	}
	if b := frames[0].Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Fatalf("frame bounds = %v", b)
	}
	textured := false
	for _, img := range frames {
		if !isUniform(img) {
			textured = true
			break
		}
	}
	if !textured {
		t.Fatal("every decoded frame is a single flat colour")
	}

	// The decoder reports its end once; further calls must not block.
	for i := 0; i < 2; i++ {
		if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
			t.Fatalf("Next after end = %v, want io.EOF", err)
		}
	}
}

func TestOpenMPEGRejectsUnsupportedStreams(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"no video stream": testsupport.WriteProgramStream(t, filepath.Join(dir, "audio.mpg"), false, 0),
		"mpeg-2":          testsupport.WriteProgramStream(t, filepath.Join(dir, "mpeg2.mpg"), true, 1),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			src, err := video.OpenMPEG(path)
			if err == nil {
				src.Close()
				t.Fatal("expected OpenMPEG to fail")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestIsMPEG1SniffsPackHeader(t *testing.T) {
	dir := t.TempDir()
	jpegNamedMPG := testsupport.WriteJPEG(t, filepath.Join(dir, "clip.mpg"), 4, 4)
	renamed := testsupport.WriteProgramStream(t, filepath.Join(dir, "renamed.mp4"), false, 1)
	mpeg2 := testsupport.WriteProgramStream(t, filepath.Join(dir, "mpeg2.mpg"), true, 1)
	tests := map[string]bool{
		fixture:                           true,
		renamed:                           true,
		mpeg2:                             false,
		jpegNamedMPG:                      false,
		filepath.Join(dir, "missing.mpg"): false,
	}
	for path, want := range tests {
		if got := video.IsMPEG1(path); got != want {
			t.Errorf("IsMPEG1(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestOpenAutoPicksDecoderFromContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()

	src, err := video.Open(context.Background(), cfg, fixture)
	if err != nil {
		t.Fatalf("auto decoder on MPEG-1 without ffmpeg: %v", err)
	}
	src.Close()

	// MPEG-2 and video-less MPEG-1 streams go to ffmpeg; the missing ffprobe
	// binary shows which decoder was tried.
	for _, path := range []string{
		testsupport.WriteProgramStream(t, filepath.Join(dir, "mpeg2.mpg"), true, 1),
		testsupport.WriteProgramStream(t, filepath.Join(dir, "audio.mpg"), false, 0),
	} {
		if _, err := video.Open(context.Background(), cfg, path); !errors.Is(err, services.ErrExternalTool) {
			t.Fatalf("Open(%s) = %v, want ffmpeg path (ErrExternalTool)", filepath.Base(path), err)
		}
	}

	cfg.Extract.Decoder = config.DecoderMPEG
	if _, err := video.Open(context.Background(), cfg, filepath.Join(dir, "mpeg2.mpg")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("forced mpeg decoder on MPEG-2 = %v, want ErrValidation", err)
	}
}

func TestOpenFFmpegDecodesFixture(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
	cfg := config.Default()
	src, err := video.OpenFFmpeg(context.Background(), &cfg, fixture)
	if err != nil {
		t.Fatalf("OpenFFmpeg: %v", err)
	}
	info := src.Info()
	if info.Width != 160 || info.Height != 120 || info.FrameRate < 29.9 || info.FrameRate > 30.1 {
		t.Fatalf("unexpected info %+v", info)
	}
	frames := decodeAll(t, src)
	if err := src.Close(); err != nil {
		t.Fatalf("Close after end of stream: %v", err)
	}

	ref, err := video.OpenMPEG(fixture)
	if err != nil {
		t.Fatalf("OpenMPEG: %v", err)
	}
	defer ref.Close()
	refFrames := decodeAll(t, ref)
	if len(frames) < 200 || len(refFrames) < 200 {
		t.Fatalf("ffmpeg decoded %d frames, pure-Go decoder %d", len(frames), len(refFrames))
	}

	// Both decoders should show the same picture; range conversion differs
	// slightly between them so only the mean channel error is bounded.
	if d := meanChannelDiff(frames[30], refFrames[30]); d > 40 {
		t.Fatalf("frame 30 differs between decoders by %.1f per channel", d)
	}
}

func meanChannelDiff(a, b image.Image) float64 {
	bounds := a.Bounds()
	var total, n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ca := color.RGBAModel.Convert(a.At(x, y)).(color.RGBA)
			cb := color.RGBAModel.Convert(b.At(x, y)).(color.RGBA)
			total += diff(ca.R, cb.R) + diff(ca.G, cb.G) + diff(ca.B, cb.B)
			n += 3
		}
	}
	return float64(total) / float64(n)
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
