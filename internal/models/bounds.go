package models

// Bounds is a geographic viewport given by its south-west and north-east
// corners.
type Bounds struct {
	SouthWest Position `json:"southWest" yaml:"southWest"`
	NorthEast Position `json:"northEast" yaml:"northEast"`
}

// Pairs returns the bounds as [[lat, lon], [lat, lon]], the layout map
// libraries expect.
func (b Bounds) Pairs() [2][2]float64 {
	return [2][2]float64{
		{b.SouthWest.Lat, b.SouthWest.Lon},
		{b.NorthEast.Lat, b.NorthEast.Lon},
	}
}
