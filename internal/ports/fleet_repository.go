package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Port: a boundary for loading the fleet (facilities and units) from a data source.
type FleetRepository interface {
	// Retrieve all facilities ordered by name.
	ListFacilities(ctx context.Context) ([]*domain.Facility, error)
	// Retrieve all units ordered by ID.
	ListUnits(ctx context.Context) ([]*domain.Unit, error)
}
