package ffprobe

import (
	"math"
	"testing"
)

const sample = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080,
     "pix_fmt": "yuv420p", "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "nb_frames": "300"},
    {"index": 1, "codec_name": "mov_text", "codec_type": "subtitle"}
  ],
  "format": {"filename": "DJI_0001.MP4", "nb_streams": 2, "duration": "10.01", "size": "1000"}
}`

func TestParseVideoStream(t *testing.T) {
	result, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stream, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if stream.Width != 1920 || stream.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", stream.Width, stream.Height)
	}
	if rate := stream.FrameRate(); math.Abs(rate-29.97) > 0.001 {
		t.Fatalf("unexpected frame rate %v", rate)
	}
	if stream.FrameCount() != 300 {
		t.Fatalf("unexpected frame count %d", stream.FrameCount())
	}
	if result.VideoStreamCount() != 1 || result.SubtitleStreamCount() != 1 {
		t.Fatalf("unexpected stream counts %d/%d", result.VideoStreamCount(), result.SubtitleStreamCount())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestFrameRateFallsBackToBaseRate(t *testing.T) {
	stream := Stream{AvgFrameRate: "0/0", RFrameRate: "25/1"}
	if stream.FrameRate() != 25 {
		t.Fatalf("expected 25, got %v", stream.FrameRate())
	}
	if (Stream{}).FrameRate() != 0 {
		t.Fatal("expected unknown rate to be zero")
	}
	if (Stream{NBFrames: "N/A"}).FrameCount() != 0 {
		t.Fatal("expected unknown frame count to be zero")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
