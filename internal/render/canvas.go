// Package render holds the map canvas that segments are drawn onto and the
// writers that turn it into a map document, GeoJSON or a raster image.
package render

import (
	"errors"
	"fmt"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/spatial"
)

// Line is one drawn polyline.
type Line struct {
	Track     string
	Order     int // draw order of the owning track
	Segment   int
	Color     string
	Weight    float64
	Positions []models.Position
}

// Canvas accumulates polylines in draw order. It is not safe for
// concurrent use; lines added later are drawn on top.
type Canvas struct {
	theme    Theme
	lines    []Line
	rect     spatial.Rect
	points   int
	viewport *models.Bounds
}

// ErrEmptySegment is returned when a segment without positions is drawn.
var ErrEmptySegment = errors.New("segment has no positions")

// NewCanvas creates an empty canvas styled by theme.
func NewCanvas(theme Theme) *Canvas {
	return &Canvas{
		theme: theme,
		rect:  spatial.EmptyRect(),
	}
}

// Theme returns the canvas theme.
func (c *Canvas) Theme() Theme {
	return c.theme
}

// AddSegment draws seg on top of everything drawn so far.
func (c *Canvas) AddSegment(track *models.Track, seg models.Segment) error {
	if seg.Len() == 0 {
		return fmt.Errorf("failed to draw segment %d of %s: %w", seg.Index, track.Name, ErrEmptySegment)
	}
	c.lines = append(c.lines, Line{
		Track:     track.Name,
		Order:     seg.Track,
		Segment:   seg.Index,
		Color:     c.theme.LineColor,
		Weight:    c.theme.LineWeight,
		Positions: seg.Positions,
	})
	c.rect = c.rect.AddAll(seg.Positions)
	c.points += seg.Len()
	return nil
}

// Lines returns the drawn lines in draw order.
func (c *Canvas) Lines() []Line {
	return c.lines
}

// Points returns the number of drawn positions.
func (c *Canvas) Points() int {
	return c.points
}

// Bounds returns the bounds of everything drawn so far.
func (c *Canvas) Bounds() (models.Bounds, bool) {
	if c.rect.IsEmpty() {
		return models.Bounds{}, false
	}
	return c.rect.Bounds(), true
}

// FitBounds pins the viewport to b.
func (c *Canvas) FitBounds(b models.Bounds) {
	c.viewport = &b
}

// Pinned reports whether the viewport was pinned with FitBounds.
func (c *Canvas) Pinned() bool {
	return c.viewport != nil
}

// Outside returns how many drawn positions fall outside the pinned
// viewport. It is zero when no viewport was pinned.
func (c *Canvas) Outside() int {
	if c.viewport == nil {
		return 0
	}
	vp := spatial.RectFromBounds(*c.viewport)
	n := 0
	for _, l := range c.lines {
		for _, p := range l.Positions {
			if !vp.Contains(p) {
				n++
			}
		}
	}
	return n
}

// Viewport returns the pinned viewport, or the bounds of the drawn lines
// when none was pinned.
func (c *Canvas) Viewport() (models.Bounds, bool) {
	if c.viewport != nil {
		return *c.viewport, true
	}
	return c.Bounds()
}
