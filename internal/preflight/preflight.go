package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"geotag/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Check runs every preflight check for an extraction into outDir.
func Check(ctx context.Context, cfg *config.Config, outDir string) []Result {
	if cfg == nil {
		return nil
	}
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "required to decode video and extract embedded captions",
			Optional:    cfg.Extract.Decoder == config.DecoderMPEG,
			VersionArg:  "-version",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "required to read stream dimensions and frame rate",
			Optional:    cfg.Extract.Decoder == config.DecoderMPEG,
			VersionArg:  "-version",
		},
		{
			Name:        "exiftool",
			Command:     cfg.ExiftoolBinary(),
			Description: "used by inspect --exiftool",
			Optional:    true,
			VersionArg:  "-ver",
		},
	}
	results := CheckBinaries(ctx, requirements)
	if outDir != "" {
		results = append(results, CheckOutputDirectory("Output directory", outDir))
	}
	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory accepts a directory that does not exist yet as long as
// its nearest existing ancestor is writable, since extraction creates it.
func CheckOutputDirectory(name, path string) Result {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if _, err := os.Stat(abs); err == nil {
		return CheckDirectoryAccess(name, abs)
	}
	parent := filepath.Dir(abs)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	result := CheckDirectoryAccess(name, parent)
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, parent)
	}
	return result
}
