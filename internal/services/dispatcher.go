package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/ports"

	"go.uber.org/zap"
)

// Dispatcher owns the fleet state and drives the engine on a fixed interval:
// refresh facility state, run a cycle, publish it, then drive every assigned
// unit along its committed route.
type Dispatcher struct {
	engine    *Engine
	refresher ports.FacilityStateRefresher
	publisher ports.DispatchPublisher
	interval  time.Duration
	log       *zap.Logger

	// mu serializes cycles; units and facilities are only touched under it.
	mu         sync.Mutex
	units      []*domain.Unit
	facilities []*domain.Facility

	latestMu sync.RWMutex
	latest   *domain.Assignment
	// view is the facility state as of the last refresh.
	view []domain.Facility

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

type DispatcherOptions struct {
	Refresher ports.FacilityStateRefresher
	Publisher ports.DispatchPublisher
	Interval  time.Duration
	Logger    *zap.Logger
}

func NewDispatcher(
	engine *Engine,
	units []*domain.Unit,
	facilities []*domain.Facility,
	opts DispatcherOptions,
) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	return &Dispatcher{
		engine:     engine,
		refresher:  opts.Refresher,
		publisher:  opts.Publisher,
		interval:   opts.Interval,
		log:        opts.Logger,
		units:      units,
		facilities: facilities,
		view:       snapshotFacilities(facilities),
	}
}

// RunOnce runs a single cycle and returns its assignment. Refresh and publish
// failures are logged; they never discard the cycle.
func (d *Dispatcher) RunOnce(ctx context.Context) (*domain.Assignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dispatch cycle: %w", err)
	}

	if d.refresher != nil {
		if err := d.refresher.Refresh(ctx, d.facilities); err != nil {
			d.log.Warn("facility state refresh failed", zap.Error(err))
		}
	}
	view := snapshotFacilities(d.facilities)
	d.latestMu.Lock()
	d.view = view
	d.latestMu.Unlock()

	a := d.engine.RunAssignmentCycle(ctx, d.units, d.facilities)

	d.latestMu.Lock()
	d.latest = a
	d.latestMu.Unlock()

	if d.publisher != nil {
		if err := d.publisher.PublishCycle(ctx, a); err != nil {
			d.log.Warn("publish cycle failed", zap.String("cycle_id", a.CycleID), zap.Error(err))
		}
	}

	d.drive(ctx, a)
	return a, nil
}

// drive publishes every waypoint of each committed route, then moves the
// unit to the route's end so the next cycle starts at the facility.
func (d *Dispatcher) drive(ctx context.Context, a *domain.Assignment) {
	byID := make(map[string]*domain.Unit, len(d.units))
	for _, u := range d.units {
		byID[u.ID] = u
	}

	for _, id := range a.Order {
		e := a.Entries[id]
		u, ok := byID[id]
		if !ok || len(e.Route.Points) == 0 {
			continue
		}

		if d.publisher != nil {
			for _, p := range e.Route.Points {
				if err := d.publisher.PublishPosition(ctx, id, e.Facility.Name, p); err != nil {
					d.log.Warn("publish position failed", zap.String("unit", id), zap.Error(err))
					break
				}
			}
		}

		u.MoveTo(e.Route.Points[len(e.Route.Points)-1])
	}
}

// Latest returns the most recent cycle, or nil before the first one.
func (d *Dispatcher) Latest() *domain.Assignment {
	d.latestMu.RLock()
	defer d.latestMu.RUnlock()
	return d.latest
}

// Facilities returns every facility as of the last refresh, ordered by name.
// It does not wait for a running cycle.
func (d *Dispatcher) Facilities() []domain.Facility {
	d.latestMu.RLock()
	defer d.latestMu.RUnlock()
	return slices.Clone(d.view)
}

func snapshotFacilities(fs []*domain.Facility) []domain.Facility {
	out := make([]domain.Facility, 0, len(fs))
	for _, f := range fs {
		c := *f
		c.Specialties = slices.Clone(f.Specialties)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Facility) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Start runs a cycle immediately and then every interval until Stop or ctx
// cancellation.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			if _, err := d.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.log.Error("dispatch cycle failed", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the loop and waits for the running cycle to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		if d.cancel == nil {
			return
		}
		d.cancel()
		<-d.done
	})
}
