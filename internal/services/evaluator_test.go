package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ambulance-dispatch-service/internal/adapters/routing"
	"ambulance-dispatch-service/internal/domain"

	"go.uber.org/zap/zaptest"
)

type panicProvider struct{}

func (p *panicProvider) Name() string { return "panic" }

func (p *panicProvider) FetchRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	if destination == laEstancia {
		panic("boom")
	}
	return roadRoute(origin, destination, 6, 5), nil
}

type mapCache struct {
	mu sync.Mutex
	m  map[[2]domain.Coordinates]domain.Route
}

func newMapCache() *mapCache { return &mapCache{m: map[[2]domain.Coordinates]domain.Route{}} }

func (c *mapCache) Lookup(o, d domain.Coordinates) (domain.Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[[2]domain.Coordinates{o, d}]
	return r, ok
}

func (c *mapCache) Store(o, d domain.Coordinates, r domain.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[[2]domain.Coordinates{o, d}] = r
}

func TestEvaluateKeepsInputOrderAndDropsFailures(t *testing.T) {
	provider := routing.NewMockRouteProvider("mock", []routing.MockRoute{
		okRoute(unitPos, sanJose, 10, 12),
		{From: unitPos, To: laEstancia, Err: errors.New("provider down")},
		{From: unitPos, To: susanaLopez, Route: roadRoute(unitPos, susanaLopez, 2, 8)},
		okRoute(unitPos, santaGracia, 7, 4),
	})
	e := NewEvaluator(provider, nil, NewCostModel(pinnedTraffic), 3, zaptest.NewLogger(t))

	facilities := []*domain.Facility{
		facility("San José", sanJose, "General", 5, 4, 0),
		facility("La Estancia", laEstancia, "General", 3, 4, 0),
		facility("Susana López", susanaLopez, "General", 4, 4, 0),
		facility("Santa Gracia", santaGracia, "General", 6, 4, 0),
	}

	got := e.Evaluate(context.Background(), domain.NewUnit("A1", unitPos, "General"), facilities)

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Facility.Name != "San José" || got[1].Facility.Name != "Santa Gracia" {
		t.Fatalf("candidates = [%s %s]", got[0].Facility.Name, got[1].Facility.Name)
	}
	if provider.Calls() != 4 {
		t.Fatalf("provider calls = %d, want 4", provider.Calls())
	}
}

func TestEvaluateRecoversPanickingTask(t *testing.T) {
	e := NewEvaluator(&panicProvider{}, nil, NewCostModel(pinnedTraffic), 2, zaptest.NewLogger(t))
	facilities := []*domain.Facility{
		facility("San José", sanJose, "General", 5, 4, 0),
		facility("La Estancia", laEstancia, "General", 3, 4, 0),
	}

	got := e.Evaluate(context.Background(), domain.NewUnit("A1", unitPos, "General"), facilities)

	if len(got) != 1 || got[0].Facility.Name != "San José" {
		t.Fatalf("expected only San José to survive, got %d candidates", len(got))
	}
}

func TestEvaluateUsesCache(t *testing.T) {
	provider := routing.NewMockRouteProvider("mock", []routing.MockRoute{okRoute(unitPos, sanJose, 10, 12)})
	cache := newMapCache()
	e := NewEvaluator(provider, cache, NewCostModel(pinnedTraffic), 4, nil)

	u := domain.NewUnit("A1", unitPos, "General")
	fs := []*domain.Facility{facility("San José", sanJose, "General", 5, 4, 0)}

	for range 3 {
		if got := e.Evaluate(context.Background(), u, fs); len(got) != 1 {
			t.Fatalf("got %d candidates, want 1", len(got))
		}
	}
	if provider.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.Calls())
	}
}

func TestEvaluateIgnoresDegenerateCacheEntry(t *testing.T) {
	provider := routing.NewMockRouteProvider("mock", []routing.MockRoute{okRoute(unitPos, sanJose, 10, 12)})
	cache := newMapCache()
	cache.Store(unitPos, sanJose, roadRoute(unitPos, sanJose, 2, 12))
	e := NewEvaluator(provider, cache, NewCostModel(pinnedTraffic), 1, nil)

	got := e.Evaluate(context.Background(), domain.NewUnit("A1", unitPos, "General"),
		[]*domain.Facility{facility("San José", sanJose, "General", 5, 4, 0)})

	if len(got) != 1 || len(got[0].Route.Points) != 10 {
		t.Fatal("expected provider route to replace degenerate cache entry")
	}
	if r, _ := cache.Lookup(unitPos, sanJose); len(r.Points) != 10 {
		t.Fatalf("cache holds %d points, want 10", len(r.Points))
	}
}
