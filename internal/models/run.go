package models

import "time"

// RunRecord is a catalog entry for one render run
type RunRecord struct {
	ID       string `json:"id" db:"id"`
	InputDir string `json:"input_dir" db:"input_dir"`

	// Outputs
	MapPath   string `json:"map_path" db:"map_path"`
	VideoPath string `json:"video_path,omitempty" db:"video_path"`

	// Counts
	TrackCount   int `json:"track_count" db:"track_count"`
	SegmentCount int `json:"segment_count" db:"segment_count"`
	PointCount   int `json:"point_count" db:"point_count"`
	FrameCount   int `json:"frame_count" db:"frame_count"`

	// Segmentation parameters
	Filter    bool    `json:"filter" db:"filter"`
	Threshold float64 `json:"threshold" db:"threshold"`
	MinLength int     `json:"min_length" db:"min_length"`

	// Viewport
	BoundsPreset string  `json:"bounds_preset,omitempty" db:"bounds_preset"`
	South        float64 `json:"south" db:"south"`
	West         float64 `json:"west" db:"west"`
	North        float64 `json:"north" db:"north"`
	East         float64 `json:"east" db:"east"`

	Theme     string    `json:"theme" db:"theme"` // dark, light
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TrackRecord is a catalog entry for one track drawn in a run
type TrackRecord struct {
	ID        int64     `json:"id" db:"id"`
	RunID     string    `json:"run_id" db:"run_id"`
	DrawOrder int       `json:"draw_order" db:"draw_order"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	StartTime time.Time `json:"start_time" db:"start_time"`

	Points       int     `json:"points" db:"points"`
	Segments     int     `json:"segments" db:"segments"`
	KeptPoints   int     `json:"kept_points" db:"kept_points"`
	LengthMeters float64 `json:"length_meters" db:"length_meters"`
	FrameIndex   *int    `json:"frame_index,omitempty" db:"frame_index"`
}

// RunFilter represents filter parameters for listing runs
type RunFilter struct {
	InputDir string `form:"inputDir"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// RunsResponse represents a paginated response of runs
type RunsResponse struct {
	Data       []RunRecord `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
