package render

import (
	"fmt"
	"strings"
)

// Theme selects the basemap and line styling.
type Theme struct {
	Name        string
	TileURL     string
	Attribution string
	Background  string // used when no tiles are drawn
	LineColor   string
	LineWeight  float64
	MaxZoom     int
}

// Built-in themes
var (
	Dark = Theme{
		Name:        "dark",
		TileURL:     "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Background:  "#0e0e0e",
		LineColor:   "#ffa500",
		LineWeight:  3,
		MaxZoom:     20,
	}

	Light = Theme{
		Name:        "light",
		TileURL:     "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		Background:  "#ffffff",
		LineColor:   "#ffa500",
		LineWeight:  3,
		MaxZoom:     20,
	}
)

// ThemeByName returns the built-in theme with the given name.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", Dark.Name:
		return Dark, nil
	case Light.Name:
		return Light, nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}
