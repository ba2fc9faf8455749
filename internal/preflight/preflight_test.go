package preflight

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"geotag/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectoryAcceptsMissingLeaf(t *testing.T) {
	result := CheckOutputDirectory("out", filepath.Join(t.TempDir(), "clip_frames", "nested"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
}

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\necho stub version 1.0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	results := CheckBinaries(context.Background(), []Requirement{
		{Name: "Present", Command: present, VersionArg: "-version"},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed || results[0].Detail != present+" (stub version 1.0)" {
		t.Fatalf("unexpected first result %#v", results[0])
	}
	if results[1].Passed || results[1].Detail == "" {
		t.Fatalf("expected missing binary to fail with detail, got %#v", results[1])
	}
	if !Failed(results) {
		t.Fatal("expected required failure to be reported")
	}
	if Failed([]Result{results[0], results[2]}) {
		t.Fatal("optional failures must not fail preflight")
	}
}

func TestCheckMPEGDecoderMakesFFmpegOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "no-such-ffmpeg"
	cfg.Tools.FFprobe = "no-such-ffprobe"
	cfg.Tools.Exiftool = "no-such-exiftool"
	cfg.Extract.Decoder = config.DecoderMPEG

	results := Check(context.Background(), &cfg, t.TempDir())
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected no required failures, got %#v", results)
	}

	cfg.Extract.Decoder = config.DecoderFFmpeg
	if !Failed(Check(context.Background(), &cfg, "")) {
		t.Fatal("expected missing ffmpeg to fail preflight")
	}
}
