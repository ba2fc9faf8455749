package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/config"
	"geotag/internal/extraction"
	"geotag/internal/preflight"
	"geotag/internal/services"
	"geotag/internal/subtitles"
	"geotag/internal/video"
)

type extractFlags struct {
	srt      string
	outDir   string
	every    int
	match    string
	encoding string
	decoder  string
	quality  int
	width    int
	altitude string
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract VIDEO",
		Short: "Extract every Nth frame and embed caption telemetry as EXIF",
		Long: `Extract samples every Nth frame of a drone video, keeps the frames that have a
matching caption and writes them as frame_<k>.jpg with GPS, exposure and camera
EXIF tags taken from the caption telemetry.

Captions come from --srt, a sidecar file next to the video (.SRT or .srt), or
the video's embedded subtitle stream, in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			videoPath := args[0]
			if err := applyExtractFlags(cmd, cfg, flags); err != nil {
				return err
			}

			outDir := strings.TrimSpace(flags.outDir)
			if outDir == "" {
				outDir = cfg.FrameDir(videoPath)
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			results := preflight.Check(runCtx, preflightConfig(cfg, videoPath), outDir)
			if preflight.Failed(results) {
				return services.Wrap(services.ErrExternalTool, "extract", "preflight", failedChecks(results), nil)
			}

			// Embedded captions are extracted outside outDir, which another run
			// may hold locked.
			captionDir, err := os.MkdirTemp("", "geotag-captions-")
			if err != nil {
				return fmt.Errorf("create caption work dir: %w", err)
			}
			defer os.RemoveAll(captionDir)
			captions, err := subtitles.Resolve(runCtx, subtitles.NewExtractor(cfg.FFmpegBinary()), flags.srt, videoPath, captionDir)
			if err != nil {
				return err
			}

			opts := extraction.OptionsFromConfig(cfg)
			opts.Video = videoPath
			opts.Captions = captions
			opts.OutputDir = outDir

			progress := newProgressReporter(cmd.ErrOrStderr(), logger)
			report, err := extraction.Run(runCtx, opts, extraction.Deps{
				OpenSource: func(ctx context.Context, path string) (video.Source, error) {
					return video.Open(ctx, cfg, path)
				},
				Logger:   logger,
				Progress: progress.update,
			})
			progress.finish()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.srt, "srt", "", "Caption file (defaults to a sidecar or the embedded subtitle stream)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "Output directory (default <video>_frames)")
	cmd.Flags().IntVarP(&flags.every, "every", "n", 0, "Sample every Nth frame")
	cmd.Flags().StringVar(&flags.match, "match", "", "Caption matching: time or frame-index")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "Rational encoding: legacy or precise")
	cmd.Flags().StringVar(&flags.decoder, "decoder", "", "Video decoder: auto, ffmpeg or mpeg")
	cmd.Flags().IntVar(&flags.quality, "quality", 0, "JPEG quality (1-100)")
	cmd.Flags().IntVar(&flags.width, "width", 0, "Resize frames to this width (0 keeps the source size)")
	cmd.Flags().StringVar(&flags.altitude, "altitude", "", "Altitude source: rel_alt or abs_alt")
	return cmd
}

func applyExtractFlags(cmd *cobra.Command, cfg *config.Config, flags extractFlags) error {
	changed := cmd.Flags().Changed
	if changed("every") {
		cfg.Extract.Every = flags.every
	}
	if changed("match") {
		cfg.Extract.MatchMode = strings.ToLower(strings.TrimSpace(flags.match))
	}
	if changed("encoding") {
		cfg.Extract.Encoding = strings.ToLower(strings.TrimSpace(flags.encoding))
	}
	if changed("decoder") {
		cfg.Extract.Decoder = strings.ToLower(strings.TrimSpace(flags.decoder))
	}
	if changed("quality") {
		cfg.Extract.JPEGQuality = flags.quality
	}
	if changed("width") {
		cfg.Extract.ResizeWidth = flags.width
	}
	if changed("altitude") {
		cfg.Extract.AltitudeSource = strings.ToLower(strings.TrimSpace(flags.altitude))
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "extract", "flags", "", err)
	}
	return nil
}

// preflightConfig relaxes the ffmpeg requirement for MPEG-1 input in auto
// mode. Decoding still goes through video.Open, which falls back to ffmpeg
// when the pure-Go decoder rejects the stream.
func preflightConfig(cfg *config.Config, videoPath string) *config.Config {
	if cfg.Extract.Decoder != config.DecoderAuto || !video.IsMPEG1(videoPath) {
		return cfg
	}
	relaxed := *cfg
	relaxed.Extract.Decoder = config.DecoderMPEG
	return &relaxed
}

func failedChecks(results []preflight.Result) string {
	var failed []string
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	return strings.Join(failed, "; ")
}

func renderReport(report extraction.Report) string {
	rows := [][]string{
		{"Output", report.OutputDir},
		{"Frames read", strconv.Itoa(report.FramesRead)},
		{"Sampled", strconv.Itoa(report.Sampled)},
		{"Matched", strconv.Itoa(report.Matched)},
		{"Written", strconv.Itoa(report.Written)},
		{"Metadata failures", strconv.Itoa(report.MetadataFailures)},
		{"Write failures", strconv.Itoa(report.WriteFailures)},
		{"Duration", report.Duration.Round(10 * time.Millisecond).String()},
	}
	out := renderTable([]string{"Run " + report.RunID, ""}, rows, []columnAlignment{alignLeft, alignRight})
	if len(report.Failures) == 0 {
		return out
	}
	failures := make([][]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		file := f.File
		if file == "" {
			file = "-"
		}
		failures = append(failures, []string{strconv.Itoa(f.FrameIndex), file, f.Err.Error()})
	}
	return out + "\n" + renderTable([]string{"Frame", "File", "Error"}, failures, []columnAlignment{alignRight})
}
