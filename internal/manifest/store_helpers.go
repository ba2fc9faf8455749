package manifest

import (
	"database/sql"
	"time"
)

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Video,
		&run.Captions,
		&run.Every,
		&run.MatchMode,
		&run.Encoding,
		&startedRaw,
		&finishedRaw,
		&run.FramesRead,
		&run.Written,
		&run.Failures,
	); err != nil {
		return Run{}, err
	}
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanFrame(row scanner) (Frame, error) {
	var (
		frame        Frame
		file         sql.NullString
		captionIndex sql.NullInt64
		positionMS   int64
		latitude     sql.NullFloat64
		longitude    sql.NullFloat64
		altitude     sql.NullFloat64
		status       string
		errorMessage sql.NullString
	)
	if err := row.Scan(
		&frame.RunID,
		&frame.FrameIndex,
		&file,
		&captionIndex,
		&positionMS,
		&latitude,
		&longitude,
		&altitude,
		&status,
		&errorMessage,
	); err != nil {
		return Frame{}, err
	}
	frame.File = file.String
	frame.CaptionIndex = int(captionIndex.Int64)
	frame.Position = time.Duration(positionMS) * time.Millisecond
	frame.Latitude = floatPtr(latitude)
	frame.Longitude = floatPtr(longitude)
	frame.Altitude = floatPtr(altitude)
	frame.Status = Status(status)
	frame.Error = errorMessage.String
	return frame, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
