package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Contract for retrieving a road-following route between two coordinates.
type RouteProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Return a validated route, or an error when no valid route was obtained.
	FetchRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error)
}
