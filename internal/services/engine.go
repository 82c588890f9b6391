package services

import (
	"context"
	"time"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
	"ambulance-dispatch-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DurationFromProvider = "provider"
	DurationFromGraph    = "graph"
)

const (
	skipNoFacility  = "no_facility"
	skipNoCandidate = "no_candidate"
	skipDegenerate  = "degenerate_path"
	skipCanceled    = "canceled"
)

type EngineConfig struct {
	// Workers caps parallel candidate evaluations per unit.
	Workers          int
	FallbackSpeedKmh float64
	// DurationSource selects which duration is reported as the estimate.
	DurationSource string
	// RelaxExclusivity lets a unit share an already used facility when no
	// unused accepting facility is left.
	RelaxExclusivity bool
	CoincideEpsilon  float64
}

// Engine runs assignment cycles. Units are processed one at a time in input
// order, which keeps the used-facility set consistent without locking.
type Engine struct {
	evaluator *Evaluator
	solver    *RoadGraphSolver
	cfg       EngineConfig
	log       *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewEngine(
	provider ports.RouteProvider,
	cache ports.RouteCache,
	cost *CostModel,
	cfg EngineConfig,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DurationSource == "" {
		cfg.DurationSource = DurationFromProvider
	}

	return &Engine{
		evaluator: NewEvaluator(provider, cache, cost, cfg.Workers, log),
		solver:    NewRoadGraphSolver(cfg.CoincideEpsilon, cfg.FallbackSpeedKmh),
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// RunAssignmentCycle assigns each unit to at most one facility. It never
// fails: units without a viable road-following route are skipped.
func (e *Engine) RunAssignmentCycle(
	ctx context.Context,
	units []*domain.Unit,
	facilities []*domain.Facility,
) *domain.Assignment {
	start := time.Now()
	out := domain.NewAssignment(e.newID(), e.now())
	ctx = obs.WithCycleID(ctx, out.CycleID)
	log := e.log.With(zap.String("cycle_id", out.CycleID))

	used := make(map[string]bool, len(facilities))

	for _, u := range units {
		if ctx.Err() != nil {
			e.skip(log, u, skipCanceled)
			continue
		}

		pool, shared := e.eligible(facilities, used)
		if len(pool) == 0 {
			e.skip(log, u, skipNoFacility)
			continue
		}

		candidates := e.evaluator.Evaluate(ctx, u, pool)
		if len(candidates) == 0 {
			e.skip(log, u, skipNoCandidate)
			continue
		}

		sel := NewSelector[Candidate]()
		for _, c := range candidates {
			sel.Insert(c, c.Cost)
		}
		best, _, _ := sel.PeekMin()

		sol := e.solver.BuildAndSolve(
			best.Route.Points,
			u.ID,
			best.Facility.Name,
			u.Position,
			best.Facility.Location,
			best.Route.DistanceKm,
		)

		estimated := best.Route.DurationMin
		if e.cfg.DurationSource == DurationFromGraph {
			estimated = sol.EstimatedDurationMin
		}

		if len(sol.Path) <= 2 || estimated <= 0 {
			e.skip(log, u, skipDegenerate)
			continue
		}

		cost := roundCost(best.Cost)
		route := domain.Route{
			Points:      sol.Path,
			DurationMin: estimated,
			DistanceKm:  sol.TotalDistanceKm,
		}

		// Snapshot the facility; the refresher mutates it between cycles.
		facility := *best.Facility

		used[facility.Name] = true
		u.AppendHistory(domain.HistoryRecord{
			Facility:   best.Facility.Name,
			Cost:       cost,
			Route:      route,
			DistanceKm: sol.TotalDistanceKm,
			At:         e.now(),
		})
		out.Commit(domain.AssignmentEntry{
			UnitID:               u.ID,
			Facility:             &facility,
			Route:                route,
			Cost:                 cost,
			DistanceKm:           sol.TotalDistanceKm,
			ProviderDurationMin:  best.Route.DurationMin,
			GraphDurationMin:     sol.EstimatedDurationMin,
			EstimatedDurationMin: estimated,
			SharedFacility:       shared,
		})
		obs.Commits.Inc()

		log.Info("unit assigned",
			zap.String("unit", u.ID),
			zap.String("facility", best.Facility.Name),
			zap.Float64("cost", cost),
			zap.Int("points", len(sol.Path)),
			zap.Bool("graph_fallback", sol.Fallback),
			zap.Bool("shared", shared),
		)
	}

	obs.CycleDuration.Observe(time.Since(start).Seconds())
	log.Info("assignment cycle done",
		zap.Int("units", len(units)),
		zap.Int("assigned", out.Len()),
		zap.Duration("dur", time.Since(start)),
	)
	return out
}

// eligible returns accepting facilities not used this cycle. When none are
// left and relaxation is enabled it returns every accepting facility and
// reports the pool as shared.
func (e *Engine) eligible(facilities []*domain.Facility, used map[string]bool) ([]*domain.Facility, bool) {
	var open, accepting []*domain.Facility
	for _, f := range facilities {
		if !f.AcceptsPatients() {
			continue
		}
		accepting = append(accepting, f)
		if !used[f.Name] {
			open = append(open, f)
		}
	}

	if len(open) > 0 {
		return open, false
	}
	if e.cfg.RelaxExclusivity && len(accepting) > 0 {
		return accepting, true
	}
	return nil, false
}

func (e *Engine) skip(log *zap.Logger, u *domain.Unit, reason string) {
	obs.UnitsSkipped.WithLabelValues(reason).Inc()
	log.Info("unit skipped", zap.String("unit", u.ID), zap.String("reason", reason))
}
