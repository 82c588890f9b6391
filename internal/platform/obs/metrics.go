package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// ProviderRequests counts routing provider attempts by outcome
	// (ok, transport, status, invalid, rate_limited).
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_provider_requests_total", Help: "Routing provider attempts by outcome."},
		[]string{"provider", "outcome"},
	)
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "routing_provider_latency_seconds", Help: "Routing provider attempt latency in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20}},
		[]string{"provider"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_cache_lookups_total", Help: "Route cache lookups by result."},
		[]string{"result"},
	)
	CacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "route_cache_evictions_total", Help: "Route cache entries evicted by the size bound."},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "assignment_cycle_duration_seconds", Help: "Assignment cycle duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	Commits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "assignment_commits_total", Help: "Units committed to a facility."},
	)
	UnitsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "assignment_units_skipped_total", Help: "Units left unassigned in a cycle by reason."},
		[]string{"reason"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests, HTTPDuration,
			ProviderRequests, ProviderLatency,
			CacheLookups, CacheEvictions,
			CycleDuration, Commits, UnitsSkipped,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
