package spatial

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"

	"github.com/jengzang/combined-routes/internal/models"
)

// PlanarDistance returns the Euclidean distance between two positions
// treating (lat, lon) as plain planar coordinates. It is the distance used
// for break detection; no geodesic correction is applied.
func PlanarDistance(a, b models.Position) float64 {
	return r2.Point{X: a.Lat, Y: a.Lon}.Sub(r2.Point{X: b.Lat, Y: b.Lon}).Norm()
}

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(a, b models.Position) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathLength sums the great-circle distance along consecutive positions, in meters
func PathLength(positions []models.Position) float64 {
	var total float64
	for i := 1; i < len(positions); i++ {
		total += HaversineDistance(positions[i-1], positions[i])
	}
	return total
}

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)
