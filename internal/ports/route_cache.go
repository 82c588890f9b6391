package ports

import "ambulance-dispatch-service/internal/domain"

// Memo of origin->destination routes consulted before provider calls.
type RouteCache interface {
	// Return the cached route; false on miss, expiry or a degenerate entry.
	Lookup(origin, destination domain.Coordinates) (domain.Route, bool)
	Store(origin, destination domain.Coordinates, route domain.Route)
}
