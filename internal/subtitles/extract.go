package subtitles

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"geotag/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Extractor pulls an embedded subtitle stream out of a video container.
type Extractor struct {
	binary string
	run    commandRunner
}

// NewExtractor constructs an extractor using the given ffmpeg binary.
func NewExtractor(ffmpegBinary string) *Extractor {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{binary: binary, run: defaultCommandRunner}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Extractor) WithCommandRunner(r commandRunner) {
	if r != nil {
		e.run = r
	}
}

// Extract converts the first subtitle stream of video to SRT at dst.
func (e *Extractor) Extract(ctx context.Context, video, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create caption dir: %w", err)
	}
	args := []string{"-y", "-v", "error", "-i", video, "-map", "0:s:0", "-c:s", "srt", dst}
	if err := e.run(ctx, e.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "captions", "extract embedded", "ffmpeg could not extract a subtitle stream", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("stat extracted captions: %w", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrNotFound, "captions", "extract embedded", "video carries an empty subtitle stream", nil)
	}
	return nil
}

// Resolve picks the caption file for video: explicit when set, then a sidecar
// next to the video, then the embedded stream extracted into workDir.
func Resolve(ctx context.Context, e *Extractor, explicit, video, workDir string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", services.Wrap(services.ErrNotFound, "captions", "resolve", "caption file not readable", err)
		}
		return explicit, nil
	}
	if sidecar, ok := FindSidecar(video); ok {
		return sidecar, nil
	}
	if e == nil {
		return "", services.Wrap(services.ErrNotFound, "captions", "resolve", "no caption file found next to "+filepath.Base(video), nil)
	}
	base := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
	dst := filepath.Join(workDir, base+".srt")
	if err := e.Extract(ctx, video, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
