package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FileName is the catalog file created inside each output directory.
const FileName = "frames.db"

// ErrNoRuns is returned by LatestRun on an empty catalog.
var ErrNoRuns = errors.New("no runs recorded")

// Store manages the frame catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog in dir.
func Open(ctx context.Context, dir string) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun clears earlier runs and records a new one. An empty run.ID is
// replaced with a fresh UUID. The stored run is returned.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM frames"); err != nil {
		return Run{}, fmt.Errorf("clear frames: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs"); err != nil {
		return Run{}, fmt.Errorf("clear runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, video, captions, every, match_mode, encoding, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Video,
		run.Captions,
		run.Every,
		run.MatchMode,
		run.Encoding,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// RecordFrame inserts or replaces the row for one frame.
func (s *Store) RecordFrame(ctx context.Context, frame Frame) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO frames (
            run_id, frame_index, file, caption_index, position_ms,
            latitude, longitude, altitude, status, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		frame.RunID,
		frame.FrameIndex,
		nullableString(frame.File),
		nullableInt(frame.CaptionIndex),
		frame.Position.Milliseconds(),
		nullableFloat(frame.Latitude),
		nullableFloat(frame.Longitude),
		nullableFloat(frame.Altitude),
		string(frame.Status),
		nullableString(frame.Error),
	)
	if err != nil {
		return fmt.Errorf("record frame %d: %w", frame.FrameIndex, err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, framesRead, written, failures int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, frames_read = ?, written = ?, failures = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		framesRead,
		written,
		failures,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, video, captions, every, match_mode, encoding, started_at, finished_at, frames_read, written, failures
         FROM runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// Frames lists the frames of a run ordered by frame index.
func (s *Store) Frames(ctx context.Context, runID string) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, frame_index, file, caption_index, position_ms, latitude, longitude, altitude, status, error
         FROM frames WHERE run_id = ? ORDER BY frame_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		frame, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	return frames, nil
}
