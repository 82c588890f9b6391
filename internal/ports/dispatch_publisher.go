package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Sink for cycle results and unit positions consumed by the presentation layer.
type DispatchPublisher interface {
	PublishCycle(ctx context.Context, a *domain.Assignment) error
	PublishPosition(ctx context.Context, unitID, facility string, pos domain.Coordinates) error
}
