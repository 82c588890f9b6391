package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Near reports whether both components differ from other by less than eps degrees.
func (c Coordinates) Near(other Coordinates, eps float64) bool {
	return math.Abs(c.Lat-other.Lat) < eps && math.Abs(c.Lon-other.Lon) < eps
}
