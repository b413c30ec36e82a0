package models

import "time"

// Position is a single recorded fix. Values are opaque to the pipeline;
// no range validation is applied.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Track is one recorded activity: its fixes in recording order plus the
// start time taken from the file metadata.
type Track struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	StartTime time.Time  `json:"startTime"`
	Positions []Position `json:"positions"`
}

// Len returns the number of fixes in the track.
func (t *Track) Len() int {
	return len(t.Positions)
}
