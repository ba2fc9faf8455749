package extraction_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geotag/internal/config"
	"geotag/internal/exifmeta"
	"geotag/internal/extraction"
	"geotag/internal/manifest"
	"geotag/internal/services"
	"geotag/internal/testsupport"
	"geotag/internal/video"
)

func newOptions(t *testing.T, captions string) extraction.Options {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithEvery(1))
	opts := extraction.OptionsFromConfig(cfg)
	opts.Video = "synthetic.mp4"
	opts.Captions = captions
	opts.OutputDir = cfg.FrameDir(opts.Video)
	return opts
}

func listJPEGs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}

func TestRunSingleCaptionEndToEnd(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.SRT"), testsupport.Cue{
		Start: 0,
		End:   10 * time.Millisecond,
		Text:  "[iso : 100] [shutter : 1/200] [latitude: 12.5] [longitude: 77.5]",
	})
	opts := newOptions(t, srt)
	src := testsupport.NewFakeSource(10)

	report, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: src.Opener()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !src.Closed {
		t.Fatal("expected source to be closed")
	}
	if report.FramesRead != 10 || report.Sampled != 10 || report.Matched != 1 || report.Written != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	files := listJPEGs(t, opts.OutputDir)
	if len(files) != 1 || files[0] != "frame_0.jpg" {
		t.Fatalf("expected only frame_0.jpg, got %v", files)
	}

	entries, err := exifmeta.Read(filepath.Join(opts.OutputDir, "frame_0.jpg"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	iso, _ := exifmeta.Find(entries, "ISOSpeedRatings")
	if shorts, ok := exifmeta.ShortsOf(iso); !ok || shorts[0] != 100 {
		t.Fatalf("ISOSpeedRatings = %+v", iso)
	}
	exposure, _ := exifmeta.Find(entries, "ExposureTime")
	if values, ok := exifmeta.RationalsOf(exposure); !ok || values[0] != exifmeta.ToRatio(1.0/200) {
		t.Fatalf("ExposureTime = %+v", exposure)
	}
	lat, _ := exifmeta.Find(entries, "GPSLatitude")
	values, ok := exifmeta.RationalsOf(lat)
	if !ok || len(values) != 3 {
		t.Fatalf("GPSLatitude = %+v", lat)
	}
	if [3]exifmeta.Rational{values[0], values[1], values[2]} != exifmeta.ToDMS(12.5) {
		t.Fatalf("GPSLatitude = %v, want %v", values, exifmeta.ToDMS(12.5))
	}
}

func TestRunLatitudeOnlyCaptionOmitsGPS(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{
		Start: 0,
		End:   10 * time.Millisecond,
		Text:  "[iso : 100] [latitude: 12.5]",
	})
	opts := newOptions(t, srt)
	src := testsupport.NewFakeSource(3)

	report, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: src.Opener()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Written != 1 || report.MetadataFailures != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	entries, err := exifmeta.Read(filepath.Join(opts.OutputDir, "frame_0.jpg"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := exifmeta.Find(entries, "ISOSpeedRatings"); !ok {
		t.Fatal("expected ISOSpeedRatings to be written")
	}
	for _, tag := range []string{"GPSLatitude", "GPSLatitudeRef", "GPSLongitude"} {
		if e, ok := exifmeta.Find(entries, tag); ok {
			t.Fatalf("expected %s to be omitted without longitude, got %+v", tag, e)
		}
	}
}

func TestRunTagsFrameLogsWithFrameIndex(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"),
		testsupport.Cue{Start: 60 * time.Millisecond, End: 70 * time.Millisecond, Text: "[iso : 100]"},
	)
	opts := newOptions(t, srt)
	src := testsupport.NewFakeSource(4)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: src.Opener(), Logger: logger}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["msg"] != "frame written" {
			continue
		}
		found = true
		if idx, ok := entry["frame_index"].(float64); !ok || idx != 2 {
			t.Fatalf("expected frame_index 2, got %v", entry["frame_index"])
		}
		if entry["run_id"] == nil {
			t.Fatalf("expected run_id on frame log, got %v", entry)
		}
	}
	if !found {
		t.Fatalf("no frame written log in %s", buf.String())
	}
}

func TestRunContinuesAfterMetadataFailure(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"),
		testsupport.Cue{Start: 0, End: 10 * time.Millisecond, Text: "[latitude: 1.2.3] [longitude: 4.5]"},
		testsupport.Cue{Start: 30 * time.Millisecond, End: 40 * time.Millisecond, Text: "[iso : 200] [latitude: 12.5] [longitude: 77.5]"},
	)
	opts := newOptions(t, srt)
	src := testsupport.NewFakeSource(5)

	report, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: src.Opener()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Written != 2 || report.MetadataFailures != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].FrameIndex != 0 {
		t.Fatalf("unexpected failures %+v", report.Failures)
	}
	if !errors.Is(report.Failures[0].Err, services.ErrMetadata) {
		t.Fatalf("expected ErrMetadata, got %v", report.Failures[0].Err)
	}

	if _, err := exifmeta.Read(filepath.Join(opts.OutputDir, "frame_0.jpg")); !errors.Is(err, exifmeta.ErrNoExif) {
		t.Fatalf("expected untagged frame_0.jpg, got %v", err)
	}
	entries, err := exifmeta.Read(filepath.Join(opts.OutputDir, "frame_1.jpg"))
	if err != nil {
		t.Fatalf("Read frame_1: %v", err)
	}
	if e, ok := exifmeta.Find(entries, "GPSLatitudeRef"); !ok || e.Raw != "N" {
		t.Fatalf("expected frame_1.jpg to be tagged, got %+v", e)
	}

	store := testsupport.MustOpenManifest(t, opts.OutputDir)
	frames, err := store.Frames(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 2 || frames[0].Status != manifest.StatusMetadataFailed || frames[1].Status != manifest.StatusWritten {
		t.Fatalf("unexpected manifest rows %+v", frames)
	}
	if frames[1].Latitude == nil || *frames[1].Latitude != 12.5 {
		t.Fatalf("expected latitude in manifest, got %+v", frames[1])
	}
}

func TestRunContinuesAfterExifWriterFailure(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{
		Start: 0,
		End:   time.Second,
		Text:  "[iso : 100]",
	})
	opts := newOptions(t, srt)
	opts.Every = 10
	src := testsupport.NewFakeSource(30)

	calls := 0
	deps := extraction.Deps{
		OpenSource: src.Opener(),
		WriteExif: func(path string, tags exifmeta.Tags) error {
			calls++
			if calls == 1 {
				return errors.New("disk full")
			}
			return exifmeta.Write(path, tags)
		},
	}
	var progress []int
	deps.Progress = func(written, total int) {
		if total != 3 {
			t.Errorf("unexpected total %d", total)
		}
		progress = append(progress, written)
	}

	report, err := extraction.Run(context.Background(), opts, deps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Sampled != 3 || report.Written != 3 || report.MetadataFailures != 1 || calls != 3 {
		t.Fatalf("unexpected report %+v (calls=%d)", report, calls)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Fatalf("unexpected progress %v", progress)
	}
}

func TestRunFrameIndexMatching(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{
		Start: 0,
		End:   10 * time.Millisecond,
		Text:  "[iso : 100]",
	})
	opts := newOptions(t, srt)
	opts.Match = config.MatchFrameIndex
	src := testsupport.NewFakeSource(20)

	report, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: src.Opener()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Indexes 0..10 read as 0..10 ms all fall inside the caption.
	if report.Written != 11 {
		t.Fatalf("expected 11 frames, got %+v", report)
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{End: time.Second, Text: "x"})
	opened := false
	deps := extraction.Deps{
		OpenSource: func(context.Context, string) (video.Source, error) {
			opened = true
			return testsupport.NewFakeSource(1), nil
		},
	}

	opts := newOptions(t, srt)
	opts.Every = 0
	if _, err := extraction.Run(context.Background(), opts, deps); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for every=0, got %v", err)
	}

	opts = newOptions(t, filepath.Join(t.TempDir(), "missing.srt"))
	if _, err := extraction.Run(context.Background(), opts, deps); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing captions, got %v", err)
	}
	if opened {
		t.Fatal("video must not be opened when validation fails")
	}
	if _, err := os.Stat(opts.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("expected no output dir to be created, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{End: time.Hour, Text: "[iso : 100]"})
	opts := newOptions(t, srt)
	src := testsupport.NewFakeSource(100)

	ctx, cancel := context.WithCancel(context.Background())
	deps := extraction.Deps{
		OpenSource: src.Opener(),
		Progress: func(written, _ int) {
			if written == 2 {
				cancel()
			}
		},
	}
	report, err := extraction.Run(ctx, opts, deps)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Written != 2 {
		t.Fatalf("expected 2 written frames before cancellation, got %d", report.Written)
	}
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	srt := testsupport.WriteSRT(t, filepath.Join(t.TempDir(), "synthetic.srt"), testsupport.Cue{End: time.Second, Text: "[iso : 100]"})
	opts := newOptions(t, srt)
	opts.Manifest = false

	outer := testsupport.NewFakeSource(3)
	deps := extraction.Deps{OpenSource: outer.Opener()}
	deps.Progress = func(written, _ int) {
		if written != 1 {
			return
		}
		inner := testsupport.NewFakeSource(1)
		_, err := extraction.Run(context.Background(), opts, extraction.Deps{OpenSource: inner.Opener()})
		if !errors.Is(err, services.ErrValidation) {
			t.Errorf("expected concurrent run to be refused, got %v", err)
		}
	}
	if _, err := extraction.Run(context.Background(), opts, deps); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		index int
		rate  float64
		mode  string
		want  time.Duration
	}{
		{0, 30, config.MatchTime, 0},
		{30, 30, config.MatchTime, time.Second},
		{1, 30, config.MatchTime, 33333333 * time.Nanosecond},
		{1, 30, config.MatchFrameIndex, time.Millisecond},
		{5, 0, config.MatchTime, 5 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := extraction.Position(tt.index, tt.rate, tt.mode); got != tt.want {
			t.Errorf("Position(%d, %v, %s) = %v, want %v", tt.index, tt.rate, tt.mode, got, tt.want)
		}
	}
}
