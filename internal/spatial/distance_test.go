package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/combined-routes/internal/models"
)

func TestPlanarDistance(t *testing.T) {
	t.Parallel()

	a := models.Position{Lat: 0, Lon: 0}
	b := models.Position{Lat: 3, Lon: 4}

	assert.InDelta(t, 5.0, PlanarDistance(a, b), 1e-12)
	assert.InDelta(t, 5.0, PlanarDistance(b, a), 1e-12)
	assert.Zero(t, PlanarDistance(a, a))
}

func TestPlanarDistance_IgnoresLatitudeScaling(t *testing.T) {
	t.Parallel()

	// One degree of longitude is far shorter near the pole, but the planar
	// distance treats every degree the same.
	equator := PlanarDistance(models.Position{Lat: 0, Lon: 0}, models.Position{Lat: 0, Lon: 1})
	polar := PlanarDistance(models.Position{Lat: 80, Lon: 0}, models.Position{Lat: 80, Lon: 1})

	assert.InDelta(t, equator, polar, 1e-12)
}

func TestHaversineDistance(t *testing.T) {
	t.Parallel()

	// One degree of latitude is roughly 111.2 km.
	d := HaversineDistance(models.Position{Lat: 0, Lon: 0}, models.Position{Lat: 1, Lon: 0})
	assert.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1)
}

func TestPathLength(t *testing.T) {
	t.Parallel()

	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength([]models.Position{{Lat: 1, Lon: 1}}))

	positions := []models.Position{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}, {Lat: 2, Lon: 0}}
	assert.InDelta(t, 2*EarthRadiusMeters*math.Pi/180, PathLength(positions), 1)
}
