package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/combined-routes/internal/models"
)

func segment(order, index int, positions ...models.Position) models.Segment {
	return models.Segment{Track: order, Index: index, Positions: positions}
}

func TestCanvas_AddSegmentKeepsDrawOrder(t *testing.T) {
	t.Parallel()

	c := NewCanvas(Dark)
	early := &models.Track{Name: "early.gpx"}
	late := &models.Track{Name: "late.gpx"}

	require.NoError(t, c.AddSegment(early, segment(0, 0, models.Position{Lat: 1, Lon: 1}, models.Position{Lat: 1, Lon: 2})))
	require.NoError(t, c.AddSegment(late, segment(1, 0, models.Position{Lat: 2, Lon: 2})))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "early.gpx", lines[0].Track)
	assert.Equal(t, "late.gpx", lines[1].Track)
	assert.Equal(t, 1, lines[1].Order)
	assert.Equal(t, Dark.LineColor, lines[0].Color)
	assert.Equal(t, 3, c.Points())
}

func TestCanvas_RejectsEmptySegment(t *testing.T) {
	t.Parallel()

	c := NewCanvas(Dark)
	err := c.AddSegment(&models.Track{Name: "x.gpx"}, segment(0, 0))
	assert.ErrorIs(t, err, ErrEmptySegment)
	assert.Empty(t, c.Lines())
}

func TestCanvas_Viewport(t *testing.T) {
	t.Parallel()

	t.Run("empty canvas has no viewport", func(t *testing.T) {
		t.Parallel()
		c := NewCanvas(Light)
		_, ok := c.Viewport()
		assert.False(t, ok)
		assert.False(t, c.Pinned())
	})

	t.Run("auto-fits drawn lines", func(t *testing.T) {
		t.Parallel()
		c := NewCanvas(Dark)
		require.NoError(t, c.AddSegment(&models.Track{}, segment(0, 0,
			models.Position{Lat: 10, Lon: 20}, models.Position{Lat: 12, Lon: 25})))

		vp, ok := c.Viewport()
		require.True(t, ok)
		assert.InDelta(t, 10, vp.SouthWest.Lat, 1e-9)
		assert.InDelta(t, 25, vp.NorthEast.Lon, 1e-9)
	})

	t.Run("pinned bounds win over drawn lines", func(t *testing.T) {
		t.Parallel()
		c := NewCanvas(Dark)
		pinned := models.Bounds{
			SouthWest: models.Position{Lat: 59.303377, Lon: 18.030198},
			NorthEast: models.Position{Lat: 59.361293, Lon: 18.154801},
		}
		c.FitBounds(pinned)
		require.NoError(t, c.AddSegment(&models.Track{}, segment(0, 0, models.Position{Lat: 0, Lon: 0})))

		vp, ok := c.Viewport()
		require.True(t, ok)
		assert.Equal(t, pinned, vp)
		assert.True(t, c.Pinned())

		drawn, ok := c.Bounds()
		require.True(t, ok)
		assert.InDelta(t, 0, drawn.NorthEast.Lat, 1e-9)
	})
}

func TestCanvas_AutoFitIsPlanar(t *testing.T) {
	t.Parallel()

	t.Run("longitudes far apart are not wrapped", func(t *testing.T) {
		t.Parallel()
		c := NewCanvas(Dark)
		require.NoError(t, c.AddSegment(&models.Track{}, segment(0, 0,
			models.Position{Lat: 35, Lon: -100}, models.Position{Lat: 41, Lon: 100})))

		vp, ok := c.Viewport()
		require.True(t, ok)
		assert.Equal(t, -100.0, vp.SouthWest.Lon)
		assert.Equal(t, 100.0, vp.NorthEast.Lon)
		assert.Less(t, vp.SouthWest.Lon, vp.NorthEast.Lon)
	})

	t.Run("out-of-range latitudes still fit", func(t *testing.T) {
		t.Parallel()
		c := NewCanvas(Dark)
		require.NoError(t, c.AddSegment(&models.Track{}, segment(0, 0,
			models.Position{Lat: 95, Lon: 1}, models.Position{Lat: 96, Lon: 2})))

		vp, ok := c.Viewport()
		require.True(t, ok)
		assert.Equal(t, 95.0, vp.SouthWest.Lat)
		assert.Equal(t, 96.0, vp.NorthEast.Lat)
	})
}

func TestCanvas_Outside(t *testing.T) {
	t.Parallel()

	c := NewCanvas(Dark)
	require.NoError(t, c.AddSegment(&models.Track{}, segment(0, 0,
		models.Position{Lat: 59.33, Lon: 18.06}, models.Position{Lat: 0, Lon: 0})))
	assert.Equal(t, 0, c.Outside())

	c.FitBounds(models.Bounds{
		SouthWest: models.Position{Lat: 59.303377, Lon: 18.030198},
		NorthEast: models.Position{Lat: 59.361293, Lon: 18.154801},
	})
	require.NoError(t, c.AddSegment(&models.Track{}, segment(1, 0, models.Position{Lat: 59.36, Lon: 18.15})))
	assert.Equal(t, 1, c.Outside())
	assert.Equal(t, 3, c.Points())
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	theme, err := ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, Dark.Name, theme.Name)

	theme, err = ThemeByName("LIGHT")
	require.NoError(t, err)
	assert.Equal(t, Light.Name, theme.Name)

	_, err = ThemeByName("sepia")
	assert.Error(t, err)
}
