package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/combined-routes/internal/models"
)

// TrackRepository handles database operations for the tracks of a run
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// InsertBatch stores the tracks of a run inside tx
func (r *TrackRepository) InsertBatch(tx *sql.Tx, tracks []models.TrackRecord) error {
	stmt, err := tx.Prepare(`INSERT INTO tracks
		(run_id, draw_order, name, path, start_time, points, segments, kept_points, length_meters, frame_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range tracks {
		t := &tracks[i]
		var frame sql.NullInt64
		if t.FrameIndex != nil {
			frame = sql.NullInt64{Int64: int64(*t.FrameIndex), Valid: true}
		}
		res, err := stmt.Exec(
			t.RunID, t.DrawOrder, t.Name, t.Path, t.StartTime.UTC().UnixNano(),
			t.Points, t.Segments, t.KeptPoints, t.LengthMeters, frame,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track %s: %w", t.Name, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			t.ID = id
		}
	}
	return nil
}

// GetTracksByRun retrieves the tracks of a run in draw order
func (r *TrackRepository) GetTracksByRun(runID string) ([]models.TrackRecord, error) {
	rows, err := r.db.Query(`SELECT id, run_id, draw_order, name, path, start_time,
		points, segments, kept_points, length_meters, frame_index
		FROM tracks WHERE run_id = ? ORDER BY draw_order`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.TrackRecord{}
	for rows.Next() {
		var t models.TrackRecord
		var start int64
		var frame sql.NullInt64
		err := rows.Scan(
			&t.ID, &t.RunID, &t.DrawOrder, &t.Name, &t.Path, &start,
			&t.Points, &t.Segments, &t.KeptPoints, &t.LengthMeters, &frame,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.StartTime = time.Unix(0, start).UTC()
		if frame.Valid {
			idx := int(frame.Int64)
			t.FrameIndex = &idx
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}
	return tracks, nil
}
