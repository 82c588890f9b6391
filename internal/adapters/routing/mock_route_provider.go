package routing

import (
	"context"
	"fmt"
	"sync"

	"ambulance-dispatch-service/internal/domain"
)

// MockRoute is a canned response for one origin->destination pair.
type MockRoute struct {
	From, To domain.Coordinates
	Route    domain.Route
	Err      error
}

// MockRouteProvider returns canned routes and counts calls. Unknown pairs fail.
type MockRouteProvider struct {
	name string
	m    map[[2]domain.Coordinates]MockRoute

	mu    sync.Mutex
	calls int
}

func NewMockRouteProvider(name string, routes []MockRoute) *MockRouteProvider {
	m := make(map[[2]domain.Coordinates]MockRoute, len(routes))
	for _, r := range routes {
		m[[2]domain.Coordinates{r.From, r.To}] = r
	}
	return &MockRouteProvider{name: name, m: m}
}

func (p *MockRouteProvider) Name() string { return p.name }

func (p *MockRouteProvider) FetchRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.m[[2]domain.Coordinates{origin, destination}]
	if !ok {
		return domain.Route{}, fmt.Errorf("%s: missing pair %v -> %v", p.name, origin, destination)
	}
	if r.Err != nil {
		return domain.Route{}, r.Err
	}
	return r.Route, nil
}

func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
