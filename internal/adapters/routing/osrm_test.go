package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOSRMFetchRoute(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeBody(w, http.StatusOK, osrmBody(10, 720))
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL+"/", ClientOptions{Policy: fastPolicy(2), Logger: zaptest.NewLogger(t)})
	route, err := p.FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Equal(t, "/route/v1/driving/-76.614700,2.444800;-76.612537,2.441981", gotPath)
	assert.Contains(t, gotQuery, "geometries=geojson")
	assert.Contains(t, gotQuery, "overview=full")

	require.Len(t, route.Points, 10)
	assert.InDelta(t, origin.Lat, route.Points[0].Lat, 1e-9)
	assert.InDelta(t, origin.Lon, route.Points[0].Lon, 1e-9)
	assert.InDelta(t, 12.0, route.DurationMin, 1e-9)
	assert.InDelta(t, 1.5, route.DistanceKm, 1e-9)
}

func TestOSRMDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"code":`},
		{name: "not ok", body: `{"code":"NoRoute","message":"Impossible route","routes":[]}`},
		{name: "no routes", body: `{"code":"Ok","routes":[]}`},
		{name: "straight line", body: osrmBody(2, 300)},
		{name: "zero duration", body: osrmBody(5, 0)},
		{name: "short coordinate", body: `{"code":"Ok","routes":[{"geometry":{"coordinates":[[1],[2,3],[4,5]]},"duration":60}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeOSRM([]byte(tt.body))
			assert.ErrorIs(t, err, ErrInvalidRoute)
		})
	}
}

func TestRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			writeBody(w, http.StatusServiceUnavailable, `{"message":"busy"}`)
			return
		}
		writeBody(w, http.StatusOK, osrmBody(4, 120))
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, ClientOptions{Policy: fastPolicy(2)})
	route, err := p.FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Len(t, route.Points, 4)
	assert.EqualValues(t, 2, hits.Load())
}

func TestRetryStopsAtAttemptLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeBody(w, http.StatusBadGateway, "upstream down")
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, ClientOptions{Policy: fastPolicy(2)})
	_, err := p.FetchRoute(context.Background(), origin, destination)
	require.Error(t, err)

	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadGateway, he.Code)
	assert.EqualValues(t, 2, hits.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeBody(w, http.StatusBadRequest, `{"code":"InvalidQuery"}`)
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, ClientOptions{Policy: fastPolicy(3)})
	_, err := p.FetchRoute(context.Background(), origin, destination)
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestNoRetryOnInvalidPayload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeBody(w, http.StatusOK, osrmBody(2, 60))
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, ClientOptions{Policy: fastPolicy(3)})
	_, err := p.FetchRoute(context.Background(), origin, destination)
	assert.ErrorIs(t, err, ErrInvalidRoute)
	assert.EqualValues(t, 1, hits.Load())
}

func TestTimeoutEscalatesPerAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(150 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		writeBody(w, http.StatusOK, osrmBody(6, 300))
	}))
	defer srv.Close()

	policy := RetryPolicy{
		Attempts:    2,
		BackoffBase: time.Millisecond,
		TimeoutBase: 30 * time.Millisecond,
		TimeoutStep: time.Second,
	}
	p := NewOSRMProvider(srv.URL, ClientOptions{Policy: policy})

	route, err := p.FetchRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Len(t, route.Points, 6)
	assert.EqualValues(t, 2, hits.Load())
}

func TestTransportFailureIsRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOSRMProvider(url, ClientOptions{Policy: fastPolicy(2)})
	start := time.Now()
	_, err := p.FetchRoute(context.Background(), origin, destination)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), ErrInvalidRoute.Error()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRetryPolicyTimeout(t *testing.T) {
	p := RetryPolicy{TimeoutBase: 2 * time.Second, TimeoutStep: 3 * time.Second}
	assert.Equal(t, 2*time.Second, p.timeout(0))
	assert.Equal(t, 5*time.Second, p.timeout(1))
	assert.Equal(t, 8*time.Second, p.timeout(2))
}
