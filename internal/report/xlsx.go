// Package report writes a spreadsheet describing a render run.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jengzang/combined-routes/internal/models"
)

// Sheet names
const (
	TracksSheet = "Tracks"
	RunSheet    = "Run"
)

var trackHeader = []interface{}{
	"Order", "File", "Start time (UTC)", "Points", "Segments", "Kept points", "Length (km)", "Frame",
}

// Write writes the run summary and its tracks, in draw order, as an xlsx
// workbook.
func Write(w io.Writer, run models.RunRecord, tracks []models.TrackRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TracksSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeTracks(f, tracks); err != nil {
		return err
	}

	if _, err := f.NewSheet(RunSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeRun(f, run); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeTracks(f *excelize.File, tracks []models.TrackRecord) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetSheetRow(TracksSheet, "A1", &trackHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(TracksSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, t := range tracks {
		var frame interface{} = ""
		if t.FrameIndex != nil {
			frame = *t.FrameIndex
		}
		row := []interface{}{
			t.DrawOrder,
			t.Name,
			t.StartTime.UTC().Format(time.RFC3339),
			t.Points,
			t.Segments,
			t.KeptPoints,
			roundKm(t.LengthMeters),
			frame,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TracksSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write track %s: %w", t.Name, err)
		}
	}

	if err := f.SetColWidth(TracksSheet, "B", "C", 24); err != nil {
		return err
	}
	return nil
}

func writeRun(f *excelize.File, run models.RunRecord) error {
	rows := [][]interface{}{
		{"Run", run.ID},
		{"Created (UTC)", run.CreatedAt.UTC().Format(time.RFC3339)},
		{"Input directory", run.InputDir},
		{"Map", run.MapPath},
		{"Video", run.VideoPath},
		{"Tracks", run.TrackCount},
		{"Segments", run.SegmentCount},
		{"Points drawn", run.PointCount},
		{"Frames", run.FrameCount},
		{"Filter", run.Filter},
		{"Threshold", run.Threshold},
		{"Minimum segment length", run.MinLength},
		{"Bounds preset", run.BoundsPreset},
		{"Bounds", fmt.Sprintf("%g,%g,%g,%g", run.South, run.West, run.North, run.East)},
		{"Theme", run.Theme},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RunSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write run summary: %w", err)
		}
	}
	return f.SetColWidth(RunSheet, "A", "A", 26)
}

func roundKm(meters float64) float64 {
	return float64(int64(meters+0.5)) / 1000
}
