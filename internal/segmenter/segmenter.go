// Package segmenter splits a track's fixes into contiguous segments,
// breaking wherever two consecutive fixes are further apart than a
// threshold and discarding runs that are too short to draw.
package segmenter

import (
	"errors"
	"fmt"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/spatial"
)

// Default segmentation parameters
const (
	DefaultThreshold = 0.001 // degrees, planar
	DefaultMinLength = 5     // positions
)

// Options controls how a track is split
type Options struct {
	// Filter enables break detection and the minimum length filter. When
	// false every non-empty track is drawn as a single segment.
	Filter    bool
	Threshold float64
	MinLength int
}

// DefaultOptions returns the parameters used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Filter:    true,
		Threshold: DefaultThreshold,
		MinLength: DefaultMinLength,
	}
}

// ErrInvalidOptions is wrapped by every Validate failure
var ErrInvalidOptions = errors.New("invalid segmentation options")

// Validate checks the threshold and minimum length
func (o Options) Validate() error {
	if !o.Filter {
		return nil
	}
	if o.Threshold < 0 {
		return fmt.Errorf("%w: threshold %v is negative", ErrInvalidOptions, o.Threshold)
	}
	if o.MinLength < 1 {
		return fmt.Errorf("%w: minimum segment length %d is below 1", ErrInvalidOptions, o.MinLength)
	}
	return nil
}

// Apply segments positions according to the options
func (o Options) Apply(positions []models.Position) []models.Segment {
	if !o.Filter {
		if len(positions) == 0 {
			return nil
		}
		return []models.Segment{{Start: 0, Positions: positions}}
	}
	return Split(positions, o.Threshold, o.MinLength)
}

// Breaks returns the indices i for which the step from positions[i] to
// positions[i+1] is strictly longer than threshold.
func Breaks(positions []models.Position, threshold float64) []int {
	var breaks []int
	for i := 0; i < len(positions)-1; i++ {
		if spatial.PlanarDistance(positions[i], positions[i+1]) > threshold {
			breaks = append(breaks, i)
		}
	}
	return breaks
}

// Split partitions positions into maximal runs between breaks and keeps
// the runs holding at least minLength positions. Runs below the minimum
// are dropped, not merged with their neighbours. Returned segments share
// the input's backing array.
func Split(positions []models.Position, threshold float64, minLength int) []models.Segment {
	if len(positions) == 0 {
		return nil
	}

	var segments []models.Segment
	keep := func(start, end int) {
		// end is inclusive
		if end-start+1 < minLength {
			return
		}
		segments = append(segments, models.Segment{
			Index:     len(segments),
			Start:     start,
			Positions: positions[start : end+1 : end+1],
		})
	}

	start := 0
	for _, b := range Breaks(positions, threshold) {
		keep(start, b)
		start = b + 1
	}
	keep(start, len(positions)-1)

	return segments
}
