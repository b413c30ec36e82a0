package render

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON writes the drawn lines as a FeatureCollection of
// LineStrings in draw order.
func WriteGeoJSON(w io.Writer, c *Canvas) error {
	fc := geojson.NewFeatureCollection()
	for _, l := range c.Lines() {
		ls := make(orb.LineString, len(l.Positions))
		for i, p := range l.Positions {
			ls[i] = orb.Point{p.Lon, p.Lat}
		}

		f := geojson.NewFeature(ls)
		f.Properties["track"] = l.Track
		f.Properties["order"] = l.Order
		f.Properties["segment"] = l.Segment
		f.Properties["stroke"] = l.Color
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}
	return nil
}
