package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ambulance-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func road(n int, minutes float64) domain.Route {
	return domain.Route{Points: samplePoints(n), DurationMin: minutes}
}

func TestChainReturnsFirstValidRoute(t *testing.T) {
	a := NewMockRouteProvider("a", []MockRoute{{From: origin, To: destination, Err: errors.New("down")}})
	b := NewMockRouteProvider("b", []MockRoute{{From: origin, To: destination, Route: road(6, 4)}})
	c := NewMockRouteProvider("c", []MockRoute{{From: origin, To: destination, Route: road(9, 2)}})

	chain := NewProviderChain(zaptest.NewLogger(t), a, b, c)
	route, err := chain.FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Len(t, route.Points, 6)
	assert.Equal(t, 1, a.Calls())
	assert.Equal(t, 1, b.Calls())
	assert.Equal(t, 0, c.Calls())
	assert.Equal(t, []string{"a", "b", "c"}, chain.Providers())
}

func TestChainRejectsDegenerateProviderOutput(t *testing.T) {
	a := NewMockRouteProvider("a", []MockRoute{{From: origin, To: destination, Route: road(2, 4)}})
	b := NewMockRouteProvider("b", []MockRoute{{From: origin, To: destination, Route: road(3, 4)}})

	route, err := NewProviderChain(nil, a, b).FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Len(t, route.Points, 3)
}

func TestChainDefiniteFailure(t *testing.T) {
	a := NewMockRouteProvider("a", []MockRoute{{From: origin, To: destination, Err: errors.New("timeout")}})
	b := NewMockRouteProvider("b", []MockRoute{{From: origin, To: destination, Route: road(5, 0)}})

	route, err := NewProviderChain(nil, a, b).FetchRoute(context.Background(), origin, destination)
	require.ErrorIs(t, err, ErrNoRoute)
	assert.ErrorIs(t, err, ErrInvalidRoute)
	assert.Contains(t, err.Error(), "timeout")
	assert.Empty(t, route.Points)
}

func TestChainWithoutProviders(t *testing.T) {
	_, err := NewProviderChain(nil).FetchRoute(context.Background(), origin, destination)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestChainFallsBackAcrossHTTPProviders(t *testing.T) {
	var osrmHits, ghHits atomic.Int32
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		osrmHits.Add(1)
		writeBody(w, http.StatusInternalServerError, "boom")
	}))
	defer osrm.Close()
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ghHits.Add(1)
		writeBody(w, http.StatusOK, `{"paths":[{"distance":900,"time":60000,"points":"`+encoded(7)+`"}]}`)
	}))
	defer gh.Close()

	opts := ClientOptions{Policy: fastPolicy(2)}
	ghProvider, err := NewGraphHopperProvider("k", gh.URL, opts)
	require.NoError(t, err)

	chain := NewProviderChain(nil, NewOSRMProvider(osrm.URL, opts), ghProvider)
	route, err := chain.FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Len(t, route.Points, 7)
	assert.EqualValues(t, 2, osrmHits.Load())
	assert.EqualValues(t, 1, ghHits.Load())
}
