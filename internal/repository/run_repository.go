package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
)

// Execer is satisfied by *sql.DB and *sql.Tx
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// RunRepository handles database operations for runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, input_dir, map_path, video_path,
	track_count, segment_count, point_count, frame_count,
	filter, threshold, min_length,
	bounds_preset, south, west, north, east,
	theme, created_at`

// Insert stores a run. Pass a transaction to insert it together with its
// tracks; nil uses the repository's database.
func (r *RunRepository) Insert(ex Execer, run *models.RunRecord) error {
	if ex == nil {
		ex = r.db
	}
	query := `INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := ex.Exec(query,
		run.ID, run.InputDir, run.MapPath, run.VideoPath,
		run.TrackCount, run.SegmentCount, run.PointCount, run.FrameCount,
		run.Filter, run.Threshold, run.MinLength,
		run.BoundsPreset, run.South, run.West, run.North, run.East,
		run.Theme, run.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRuns retrieves runs, newest first, with filtering and pagination
func (r *RunRepository) GetRuns(filter models.RunFilter) ([]models.RunRecord, int64, error) {
	where := ""
	var args []interface{}
	if filter.InputDir != "" {
		where = " WHERE input_dir = ?"
		args = append(args, filter.InputDir)
	}

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	query := "SELECT " + runColumns + " FROM runs" + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, total, nil
}

// GetRunByID retrieves a single run. It returns nil when there is none.
func (r *RunRepository) GetRunByID(id string) (*models.RunRecord, error) {
	row := r.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*models.RunRecord, error) {
	var run models.RunRecord
	var created int64
	err := s.Scan(
		&run.ID, &run.InputDir, &run.MapPath, &run.VideoPath,
		&run.TrackCount, &run.SegmentCount, &run.PointCount, &run.FrameCount,
		&run.Filter, &run.Threshold, &run.MinLength,
		&run.BoundsPreset, &run.South, &run.West, &run.North, &run.East,
		&run.Theme, &created,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	return &run, nil
}
