package render

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/combined-routes/internal/models"
)

func TestWriteGeoJSON(t *testing.T) {
	t.Parallel()

	c := NewCanvas(Dark)
	require.NoError(t, c.AddSegment(&models.Track{Name: "run.gpx"}, segment(3, 1,
		models.Position{Lat: 59.31, Lon: 18.05}, models.Position{Lat: 59.32, Lon: 18.06})))

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, c))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	ls, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	// GeoJSON stores longitude first.
	assert.Equal(t, orb.LineString{{18.05, 59.31}, {18.06, 59.32}}, ls)
	assert.Equal(t, "run.gpx", fc.Features[0].Properties.MustString("track"))
	assert.Equal(t, 3, fc.Features[0].Properties.MustInt("order"))
	assert.Equal(t, 1, fc.Features[0].Properties.MustInt("segment"))
}
