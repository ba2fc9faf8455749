package testsupport

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Cue is one caption written by WriteSRT.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// WriteSRT writes cues as an SRT file at path.
func WriteSRT(t testing.TB, path string, cues ...Cue) string {
	t.Helper()

	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	mustWrite(t, path, []byte(b.String()))
	return path
}

func srtTimestamp(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, d/time.Millisecond)
}

// DJICaption renders a caption in the layout DJI drones write, with the given
// bracketed tokens on the telemetry line.
func DJICaption(frame int, tokens string) string {
	return fmt.Sprintf("<font size=\"28\">FrameCnt: %d, DiffTime: 33ms\n2023-06-14 10:23:45.123\n%s</font>", frame, tokens)
}

// Image returns a w x h gradient.
func Image(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 96, A: 255})
		}
	}
	return img
}

// WriteJPEG encodes a w x h gradient at path.
func WriteJPEG(t testing.TB, path string, w, h int) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, Image(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteProgramStream writes a header-only MPEG program stream at path. By
// default it carries an MPEG-1 pack header and a system header declaring one
// audio stream and videoStreams video streams; mpeg2 switches to an MPEG-2
// pack header instead. The remainder is padding, so nothing decodes.
func WriteProgramStream(t testing.TB, path string, mpeg2 bool, videoStreams int) string {
	t.Helper()

	var header []byte
	if mpeg2 {
		header = []byte{0x00, 0x00, 0x01, 0xba, 0x44, 0x00, 0x04, 0x00, 0x04, 0x01, 0x01, 0x89, 0xc3, 0xf8}
	} else {
		header = []byte{
			0x00, 0x00, 0x01, 0xba, 0x21, 0x00, 0x01, 0x00, 0x25, 0x80, 0x06, 0x2f,
			0x00, 0x00, 0x01, 0xbb, 0x00, 0x0c, 0x80, 0x06, 0x2f, 0x07, 0x20 | byte(videoStreams&0x1f), 0xff,
			0xc0, 0xc0, 0x20, 0xe0, 0xe0, 0x2e,
		}
	}
	data := append(header, bytes.Repeat([]byte{0xff}, 2048)...)
	mustWrite(t, path, data)
	return path
}
