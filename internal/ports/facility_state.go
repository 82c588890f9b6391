package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// FacilityStateRefresher updates wait time and occupancy before each cycle.
type FacilityStateRefresher interface {
	Refresh(ctx context.Context, facilities []*domain.Facility) error
}
