package render

import (
	"fmt"
	"html/template"
	"io"
)

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { width: 100%; height: 100%; margin: 0; padding: 0; background: {{.Background}}; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map", {preferCanvas: true, maxZoom: {{.MaxZoom}}, zoomControl: {{.Controls}}});
L.tileLayer({{.TileURL}}, {attribution: {{.Attribution}}, maxZoom: {{.MaxZoom}}}).addTo(map);
var lines = {{.Lines}};
for (var i = 0; i < lines.length; i++) {
  L.polyline(lines[i].points, {color: lines[i].color, weight: lines[i].weight}).addTo(map);
}
{{if .HasBounds}}map.fitBounds({{.Bounds}});{{else}}map.setView([0, 0], 2);{{end}}
</script>
</body>
</html>
`))

type htmlLine struct {
	Points [][2]float64 `json:"points"`
	Color  string       `json:"color"`
	Weight float64      `json:"weight"`
}

type htmlPage struct {
	Title       string
	Background  template.CSS
	TileURL     string
	Attribution string
	MaxZoom     int
	Controls    bool
	Lines       []htmlLine
	HasBounds   bool
	Bounds      [2][2]float64
}

// HTMLOptions tweaks the generated map document.
type HTMLOptions struct {
	Title string
	// Static hides the zoom controls, used for frame snapshots.
	Static bool
}

// WriteHTML writes a Leaflet map document with one polyline per drawn
// segment, in draw order, fitted to the canvas viewport.
func WriteHTML(w io.Writer, c *Canvas, opts HTMLOptions) error {
	theme := c.Theme()
	page := htmlPage{
		Title:       opts.Title,
		Background:  template.CSS(theme.Background),
		TileURL:     theme.TileURL,
		Attribution: theme.Attribution,
		MaxZoom:     theme.MaxZoom,
		Controls:    !opts.Static,
		Lines:       make([]htmlLine, 0, len(c.Lines())),
	}
	if page.Title == "" {
		page.Title = "Combined routes"
	}

	for _, l := range c.Lines() {
		points := make([][2]float64, len(l.Positions))
		for i, p := range l.Positions {
			points[i] = [2]float64{p.Lat, p.Lon}
		}
		page.Lines = append(page.Lines, htmlLine{Points: points, Color: l.Color, Weight: l.Weight})
	}

	if vp, ok := c.Viewport(); ok {
		page.HasBounds = true
		page.Bounds = vp.Pairs()
	}

	if err := mapTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to write map document: %w", err)
	}
	return nil
}
