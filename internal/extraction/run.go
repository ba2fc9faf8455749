package extraction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"geotag/internal/config"
	"geotag/internal/exifmeta"
	"geotag/internal/logging"
	"geotag/internal/manifest"
	"geotag/internal/services"
	"geotag/internal/subtitles"
	"geotag/internal/telemetry"
	"geotag/internal/video"
)

// Progress is called after each written frame. total is 0 when the frame
// count of the source is unknown.
type Progress func(written, total int)

// Deps supplies the collaborators of Run. Zero values fall back to the
// production implementations.
type Deps struct {
	OpenSource   func(ctx context.Context, path string) (video.Source, error)
	LoadCaptions func(path string) ([]subtitles.Caption, error)
	WriteExif    func(path string, tags exifmeta.Tags) error
	Logger       *slog.Logger
	Progress     Progress
}

func (d *Deps) withDefaults() {
	if d.OpenSource == nil {
		d.OpenSource = func(ctx context.Context, path string) (video.Source, error) {
			return video.Open(ctx, nil, path)
		}
	}
	if d.LoadCaptions == nil {
		d.LoadCaptions = subtitles.LoadSRT
	}
	if d.WriteExif == nil {
		d.WriteExif = exifmeta.Write
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
}

type runner struct {
	opts    Options
	deps    Deps
	base    *slog.Logger
	logger  *slog.Logger
	track   *subtitles.Track
	source  video.Source
	store   *manifest.Store
	report  Report
	total   int
	written int
}

// Run samples every Nth frame of the video, writes frames that have a
// matching caption as frame_<k>.jpg and embeds the caption's telemetry as
// EXIF. Per-frame failures are logged and collected in the report; only
// setup errors, decoder errors and cancellation abort the run.
func Run(ctx context.Context, opts Options, deps Deps) (Report, error) {
	started := time.Now()
	deps.withDefaults()
	if err := opts.validate(); err != nil {
		return Report{}, err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithStage(ctx, "extract")
	base := logging.NewComponentLogger(deps.Logger, "extraction")
	r := &runner{
		opts:   opts,
		deps:   deps,
		base:   base,
		logger: logging.WithContext(ctx, base),
		report: Report{RunID: runID, OutputDir: opts.OutputDir},
	}

	captions, err := deps.LoadCaptions(opts.Captions)
	if err != nil {
		return r.report, services.Wrap(services.ErrNotFound, "extract", "load captions", opts.Captions, err)
	}
	r.track = subtitles.NewTrack(captions)

	source, err := deps.OpenSource(ctx, opts.Video)
	if err != nil {
		return r.report, err
	}
	defer source.Close()
	r.source = source

	info := source.Info()
	if opts.Match == config.MatchTime && info.FrameRate <= 0 {
		return r.report, services.Wrap(services.ErrValidation, "extract", "match", "frame rate unknown; use frame-index matching", nil)
	}
	if info.FrameCount > 0 {
		r.total = (info.FrameCount + opts.Every - 1) / opts.Every
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return r.report, fmt.Errorf("create output dir: %w", err)
	}
	lock := flock.New(filepath.Join(opts.OutputDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return r.report, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return r.report, services.Wrap(services.ErrValidation, "extract", "lock", "another geotag run is writing to "+opts.OutputDir, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	if opts.Manifest {
		if err := r.beginManifest(ctx, info); err != nil {
			return r.report, err
		}
		defer r.finishManifest()
	}

	r.logger.Info("extraction started",
		logging.String("video", opts.Video),
		logging.String("captions", opts.Captions),
		logging.String("output_dir", opts.OutputDir),
		logging.Int("every", opts.Every),
		logging.String("match_mode", opts.Match),
		logging.String("encoding", string(opts.Encoding)),
		logging.Int("captions_loaded", r.track.Len()),
		logging.Float64("frame_rate", info.FrameRate),
		logging.Int("frame_count", info.FrameCount),
		logging.Bool("manifest", opts.Manifest),
	)

	loopErr := r.loop(ctx, info)
	r.report.Duration = time.Since(started)

	attrs := []logging.Attr{
		logging.Int("frames_read", r.report.FramesRead),
		logging.Int("sampled", r.report.Sampled),
		logging.Int("matched", r.report.Matched),
		logging.Int("written", r.report.Written),
		logging.Int("metadata_failures", r.report.MetadataFailures),
		logging.Int("write_failures", r.report.WriteFailures),
		logging.Duration("duration", r.report.Duration),
	}
	if loopErr != nil {
		r.logger.Error("extraction aborted", logging.Args(append(attrs, logging.Error(loopErr))...)...)
		return r.report, loopErr
	}
	r.logger.Info("extraction complete", logging.Args(attrs...)...)
	return r.report, nil
}

func (r *runner) loop(ctx context.Context, info video.Info) error {
	for {
		frame, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("decode frame %d: %w", r.report.FramesRead, err)
		}
		r.report.FramesRead++

		if frame.Index%r.opts.Every != 0 {
			continue
		}
		r.report.Sampled++

		pos := Position(frame.Index, info.FrameRate, r.opts.Match)
		caption, ok := r.track.Find(pos)
		if !ok {
			r.logger.Debug("no caption for frame",
				logging.Int(logging.FieldFrameIndex, frame.Index),
				logging.Duration("position", pos),
			)
			continue
		}
		r.report.Matched++
		logger := logging.WithContext(services.WithFrameIndex(ctx, frame.Index), r.base)
		r.processFrame(logger, frame, caption, pos)
	}
}

func (r *runner) processFrame(logger *slog.Logger, frame video.Frame, caption subtitles.Caption, pos time.Duration) {
	name := fmt.Sprintf("frame_%d.jpg", r.written)
	path := filepath.Join(r.opts.OutputDir, name)
	fields := telemetry.Extract(caption.Text)
	record := manifest.Frame{
		RunID:        r.report.RunID,
		FrameIndex:   frame.Index,
		CaptionIndex: caption.Index,
		Position:     pos,
	}

	if err := r.writeJPEG(path, frame.Image); err != nil {
		r.report.WriteFailures++
		r.report.Failures = append(r.report.Failures, FrameFailure{FrameIndex: frame.Index, Err: err})
		logging.WarnWithContext(logger, "frame write failed", "frame_write_failed",
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the output directory"),
		)
		record.Status = manifest.StatusWriteFailed
		record.Error = err.Error()
		r.recordFrame(logger, record)
		return
	}
	r.written++
	r.report.Written++
	record.File = name
	record.Status = manifest.StatusWritten
	fillPosition(&record, fields, r.opts.AltitudeSource)

	if err := r.writeMetadata(path, fields); err != nil {
		r.report.MetadataFailures++
		r.report.Failures = append(r.report.Failures, FrameFailure{FrameIndex: frame.Index, File: path, Err: err})
		logging.WarnWithContext(logger, "frame metadata write failed", "metadata_failed",
			logging.String("file", path),
			logging.Int("caption_index", caption.Index),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		record.Status = manifest.StatusMetadataFailed
		record.Error = err.Error()
	} else {
		logger.Debug("frame written",
			logging.String("file", path),
			logging.Int("fields", len(fields)),
		)
	}
	r.recordFrame(logger, record)

	if r.deps.Progress != nil {
		r.deps.Progress(r.report.Written, r.total)
	}
}

func (r *runner) writeJPEG(path string, img image.Image) error {
	if img == nil {
		return errors.New("decoder returned an empty frame")
	}
	if w := r.opts.ResizeWidth; w > 0 && w < img.Bounds().Dx() {
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(r.opts.JPEGQuality)); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (r *runner) writeMetadata(path string, fields telemetry.Fields) error {
	tags, err := exifmeta.Build(fields, exifmeta.BuildOptions{
		Camera:      r.opts.Camera,
		Encoding:    r.opts.Encoding,
		AltitudeKey: r.opts.AltitudeSource,
	})
	if err != nil {
		return services.Wrap(services.ErrMetadata, "extract", "build exif", "", err)
	}
	if err := r.deps.WriteExif(path, tags); err != nil {
		return services.Wrap(services.ErrMetadata, "extract", "write exif", "", err)
	}
	return nil
}

func (r *runner) beginManifest(ctx context.Context, info video.Info) error {
	store, err := manifest.Open(ctx, r.opts.OutputDir)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	if _, err := store.BeginRun(ctx, manifest.Run{
		ID:        r.report.RunID,
		Video:     r.opts.Video,
		Captions:  r.opts.Captions,
		Every:     r.opts.Every,
		MatchMode: r.opts.Match,
		Encoding:  string(r.opts.Encoding),
	}); err != nil {
		_ = store.Close()
		return fmt.Errorf("begin manifest run: %w", err)
	}
	r.store = store
	r.logger.Debug("manifest opened", logging.String("path", store.Path()), logging.Int("frame_count", info.FrameCount))
	return nil
}

func (r *runner) recordFrame(logger *slog.Logger, record manifest.Frame) {
	if r.store == nil {
		return
	}
	// The run context may already be cancelled; the row still belongs in the catalog.
	if err := r.store.RecordFrame(context.Background(), record); err != nil {
		logging.WarnWithContext(logger, "manifest write failed", "manifest_failed", logging.Error(err))
	}
}

func (r *runner) finishManifest() {
	if r.store == nil {
		return
	}
	if err := r.store.FinishRun(context.Background(), r.report.RunID, r.report.FramesRead, r.report.Written, r.report.FailureCount()); err != nil {
		logging.WarnWithContext(r.logger, "manifest finish failed", "manifest_failed", logging.Error(err))
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("failed to close manifest", logging.Error(err))
	}
}

// Position converts a frame index into the caption time it is matched
// against. In frame-index mode the raw index is read as milliseconds, which
// only lines up with captions for 1000 fps footage.
func Position(index int, frameRate float64, mode string) time.Duration {
	if mode == config.MatchFrameIndex || frameRate <= 0 {
		return time.Duration(index) * time.Millisecond
	}
	return time.Duration(math.Round(float64(index) * float64(time.Second) / frameRate))
}

func fillPosition(record *manifest.Frame, fields telemetry.Fields, altitudeKey telemetry.Key) {
	if v, ok, err := fields.Float(telemetry.KeyLatitude); ok && err == nil {
		record.Latitude = &v
	}
	if v, ok, err := fields.Float(telemetry.KeyLongitude); ok && err == nil {
		record.Longitude = &v
	}
	if v, ok, err := fields.Float(altitudeKey); ok && err == nil {
		record.Altitude = &v
	}
}
