package services

import (
	"context"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Candidate is a scored (facility, route) option for one unit.
type Candidate struct {
	Facility *domain.Facility
	Route    domain.Route
	Cost     float64
}

// Evaluator scores every candidate facility for a unit in parallel.
type Evaluator struct {
	provider ports.RouteProvider
	cache    ports.RouteCache
	cost     *CostModel
	workers  int
	log      *zap.Logger
}

func NewEvaluator(
	provider ports.RouteProvider,
	cache ports.RouteCache,
	cost *CostModel,
	workers int,
	log *zap.Logger,
) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	if cost == nil {
		cost = NewCostModel(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{provider: provider, cache: cache, cost: cost, workers: workers, log: log}
}

// Evaluate returns one candidate per facility that produced a valid route,
// in facility input order. Failing tasks drop their candidate only.
func (e *Evaluator) Evaluate(ctx context.Context, unit *domain.Unit, facilities []*domain.Facility) []Candidate {
	if len(facilities) == 0 {
		return nil
	}

	slots := make([]*Candidate, len(facilities))

	var g errgroup.Group
	g.SetLimit(min(len(facilities), e.workers))

	for i, f := range facilities {
		g.Go(func() error {
			c, err := e.evaluateOne(ctx, unit, f)
			if err != nil {
				e.log.Debug("candidate dropped",
					zap.String("unit", unit.ID),
					zap.String("facility", f.Name),
					zap.Error(err),
				)
				return nil
			}
			slots[i] = c
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Candidate, 0, len(facilities))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func (e *Evaluator) evaluateOne(
	ctx context.Context,
	unit *domain.Unit,
	facility *domain.Facility,
) (c *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("evaluate candidate: panic: %v", r)
		}
	}()

	route, err := e.route(ctx, unit.Position, facility.Location)
	if err != nil {
		return nil, err
	}

	cost, err := e.cost.Cost(unit, facility, route, route.DurationMin)
	if err != nil {
		return nil, err
	}

	return &Candidate{Facility: facility, Route: route, Cost: cost}, nil
}

// route goes through the cache, then the provider; only valid routes are stored.
func (e *Evaluator) route(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	if e.cache != nil {
		if r, ok := e.cache.Lookup(origin, destination); ok && r.Valid() {
			return r, nil
		}
	}

	r, err := e.provider.FetchRoute(ctx, origin, destination)
	if err != nil {
		return domain.Route{}, fmt.Errorf("evaluate candidate: %w", err)
	}
	if !r.Valid() {
		return domain.Route{}, fmt.Errorf("evaluate candidate: route has %d points, duration %.2f", len(r.Points), r.DurationMin)
	}

	if e.cache != nil {
		e.cache.Store(origin, destination, r)
	}
	return r, nil
}
