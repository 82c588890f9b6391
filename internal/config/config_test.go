package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"osrm", "ors", "graphhopper"}, cfg.Routing.Providers)
	assert.Equal(t, 2, cfg.Routing.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Routing.BackoffBase)
	assert.Equal(t, 5*time.Second, cfg.Routing.TimeoutBase)
	assert.Zero(t, cfg.Routing.RateLimit)
	assert.Equal(t, cfg.Dispatch.Workers, cfg.Routing.RateBurst)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Cache.Precision)
	assert.Equal(t, 6, cfg.Dispatch.Workers)
	assert.Equal(t, 60.0, cfg.Dispatch.FallbackSpeedKmh)
	assert.Equal(t, "provider", cfg.Dispatch.DurationSource)
	assert.True(t, cfg.Dispatch.RelaxExclusivity)
}

func TestOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"ROUTING_PROVIDERS":    " GraphHopper , osrm ,",
		"ROUTE_RETRY_ATTEMPTS": 3,
		"DURATION_SOURCE":      "GRAPH",
		"RELAX_EXCLUSIVITY":    false,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"graphhopper", "osrm"}, cfg.Routing.Providers)
	assert.Equal(t, 3, cfg.Routing.Attempts)
	assert.Equal(t, "graph", cfg.Dispatch.DurationSource)
	assert.False(t, cfg.Dispatch.RelaxExclusivity)
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "unknown provider", key: "ROUTING_PROVIDERS", val: "osrm,here"},
		{name: "no providers", key: "ROUTING_PROVIDERS", val: ""},
		{name: "zero attempts", key: "ROUTE_RETRY_ATTEMPTS", val: 0},
		{name: "zero cache size", key: "ROUTE_CACHE_SIZE", val: 0},
		{name: "bad duration source", key: "DURATION_SOURCE", val: "average"},
		{name: "bad driver", key: "DATABASE_DRIVER", val: "mysql"},
		{name: "zero speed", key: "FALLBACK_SPEED_KMH", val: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(map[string]any{tt.key: tt.val}))
			assert.Error(t, err)
		})
	}
}
