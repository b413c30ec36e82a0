package spatial

import (
	"github.com/golang/geo/r2"

	"github.com/jengzang/combined-routes/internal/models"
)

// Rect accumulates positions into a planar min/max rectangle over the raw
// coordinates, x being longitude and y latitude. No range validation or
// longitude wrapping is applied. The zero value is not usable; start from
// EmptyRect.
type Rect struct {
	r r2.Rect
}

// EmptyRect returns a rectangle containing no positions.
func EmptyRect() Rect {
	return Rect{r: r2.EmptyRect()}
}

// RectFromBounds converts explicit bounds into a Rect.
func RectFromBounds(b models.Bounds) Rect {
	return Rect{r: r2.RectFromPoints(point(b.SouthWest), point(b.NorthEast))}
}

// Add extends the rectangle to contain p.
func (r Rect) Add(p models.Position) Rect {
	return Rect{r: r.r.AddPoint(point(p))}
}

// AddAll extends the rectangle to contain every position.
func (r Rect) AddAll(positions []models.Position) Rect {
	for _, p := range positions {
		r = r.Add(p)
	}
	return r
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p models.Position) bool {
	return r.r.ContainsPoint(point(p))
}

// IsEmpty reports whether the rectangle contains no positions.
func (r Rect) IsEmpty() bool {
	return r.r.IsEmpty()
}

// Bounds returns the rectangle's corners. The result is the zero Bounds
// when the rectangle is empty.
func (r Rect) Bounds() models.Bounds {
	if r.IsEmpty() {
		return models.Bounds{}
	}
	lo, hi := r.r.Lo(), r.r.Hi()
	return models.Bounds{
		SouthWest: models.Position{Lat: lo.Y, Lon: lo.X},
		NorthEast: models.Position{Lat: hi.Y, Lon: hi.X},
	}
}

func point(p models.Position) r2.Point {
	return r2.Point{X: p.Lon, Y: p.Lat}
}
