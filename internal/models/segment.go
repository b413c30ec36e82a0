package models

// Segment is a contiguous run of a track's positions kept after break
// filtering. Positions aliases the track's backing array and must not be
// modified.
type Segment struct {
	Track     int        `json:"track"` // draw order of the owning track
	Index     int        `json:"index"` // position of the segment within its track
	Start     int        `json:"start"` // index of the first position in the track
	Positions []Position `json:"positions"`
}

// End returns the index one past the segment's last position in the track.
func (s Segment) End() int {
	return s.Start + len(s.Positions)
}

// Len returns the number of positions in the segment.
func (s Segment) Len() int {
	return len(s.Positions)
}
