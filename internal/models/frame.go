package models

import "time"

// Frame is one captured snapshot of the cumulative canvas.
type Frame struct {
	Index      int       `json:"index"`
	Track      string    `json:"track"` // name of the track drawn last
	PNG        []byte    `json:"-"`     // encoded snapshot
	CapturedAt time.Time `json:"capturedAt"`
}
