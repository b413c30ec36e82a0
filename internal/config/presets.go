package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/combined-routes/internal/models"
)

// Preset is a named map viewport
type Preset struct {
	Name  string  `yaml:"name" validate:"required"`
	South float64 `yaml:"south" validate:"gte=-90,lte=90"`
	West  float64 `yaml:"west" validate:"gte=-180,lte=180"`
	North float64 `yaml:"north" validate:"gte=-90,lte=90,gtefield=South"`
	East  float64 `yaml:"east" validate:"gte=-180,lte=180,gtefield=West"`
}

// Bounds converts the preset to map bounds
func (p Preset) Bounds() models.Bounds {
	return models.Bounds{
		SouthWest: models.Position{Lat: p.South, Lon: p.West},
		NorthEast: models.Position{Lat: p.North, Lon: p.East},
	}
}

// PresetsFile is the layout of a presets YAML file
type PresetsFile struct {
	Presets []Preset `yaml:"presets" validate:"dive"`
}

// Stockholm is the built-in preset
var Stockholm = Preset{Name: "stockholm", South: 59.303377, West: 18.030198, North: 59.361293, East: 18.154801}

// ErrUnknownPreset is returned for bounds that are neither a known preset
// nor a coordinate list.
var ErrUnknownPreset = errors.New("unknown bounds preset")

// Presets is a set of named viewports
type Presets map[string]Preset

// DefaultPresets returns the built-in presets
func DefaultPresets() Presets {
	return Presets{Stockholm.Name: Stockholm}
}

// LoadPresets returns the built-in presets extended by the presets in
// path. Presets from the file replace built-in ones with the same name.
func LoadPresets(path string) (Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	var file PresetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid presets %s: %w", path, err)
	}
	for _, p := range file.Presets {
		presets[strings.ToLower(p.Name)] = p
	}
	return presets, nil
}

// Names returns the preset names, sorted
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a --bounds value into map bounds. The value is either a
// preset name or four comma separated numbers: south,west,north,east.
// The returned name is empty for explicit coordinates.
func (p Presets) Resolve(value string) (models.Bounds, string, error) {
	value = strings.TrimSpace(value)
	if preset, ok := p[strings.ToLower(value)]; ok {
		return preset.Bounds(), preset.Name, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return models.Bounds{}, "", fmt.Errorf("%w %q (known: %s)", ErrUnknownPreset, value, strings.Join(p.Names(), ", "))
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return models.Bounds{}, "", fmt.Errorf("invalid bounds %q: %w", value, err)
		}
		v[i] = f
	}
	preset := Preset{Name: "custom", South: v[0], West: v[1], North: v[2], East: v[3]}
	if err := validator.New().Struct(preset); err != nil {
		return models.Bounds{}, "", fmt.Errorf("invalid bounds %q: %w", value, err)
	}
	return preset.Bounds(), "", nil
}
