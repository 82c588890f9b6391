package domain

// Represents a path between two coordinates as returned by a routing provider
// or derived from one.
// A Route with exactly two points is a straight line between its endpoints and
// does not follow roads; such routes are never committed to an assignment.
type Route struct {
	Points      []Coordinates
	DurationMin float64
	DistanceKm  float64
}

// IsRoadFollowing reports whether the route has more than two points.
func (r Route) IsRoadFollowing() bool { return len(r.Points) > 2 }

// Valid reports whether the route is usable for cost evaluation.
func (r Route) Valid() bool { return r.IsRoadFollowing() && r.DurationMin > 0 }
