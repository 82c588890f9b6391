package publish

import (
	"context"

	"ambulance-dispatch-service/internal/domain"

	"go.uber.org/zap"
)

// LogPublisher writes cycles and positions to the logger. Used when no
// broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishCycle(ctx context.Context, a *domain.Assignment) error {
	for _, id := range a.Order {
		e := a.Entries[id]
		p.log.Info("assignment",
			zap.String("cycle_id", a.CycleID),
			zap.String("unit", id),
			zap.String("facility", e.Facility.Name),
			zap.Float64("cost", e.Cost),
			zap.Float64("eta_min", e.EstimatedDurationMin),
			zap.Bool("shared", e.SharedFacility),
		)
	}
	return nil
}

func (p *LogPublisher) PublishPosition(ctx context.Context, unitID, facility string, pos domain.Coordinates) error {
	p.log.Debug("position",
		zap.String("unit", unitID),
		zap.String("facility", facility),
		zap.Float64("lat", pos.Lat),
		zap.Float64("lon", pos.Lon),
	)
	return nil
}
