package routing

import (
	"fmt"

	"ambulance-dispatch-service/internal/config"
	"ambulance-dispatch-service/internal/ports"

	"go.uber.org/zap"
)

// NewProvidersFromConfig builds the providers named in cfg.Providers, in order.
// Keyed providers without an API key are skipped with a warning.
func NewProvidersFromConfig(cfg config.RoutingConfig, log *zap.Logger) ([]ports.RouteProvider, error) {
	opts := ClientOptions{
		Policy: RetryPolicy{
			Attempts:    cfg.Attempts,
			BackoffBase: cfg.BackoffBase,
			TimeoutBase: cfg.TimeoutBase,
			TimeoutStep: cfg.TimeoutStep,
		},
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    log,
	}

	providers := make([]ports.RouteProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "osrm":
			providers = append(providers, NewOSRMProvider(cfg.OSRMBaseURL, opts))
		case "ors":
			p, err := NewORSProvider(cfg.ORSAPIKey, cfg.ORSBaseURL, opts)
			if err != nil {
				log.Warn("skipping routing provider", zap.String("provider", name), zap.Error(err))
				continue
			}
			providers = append(providers, p)
		case "graphhopper":
			p, err := NewGraphHopperProvider(cfg.GraphHopperAPIKey, cfg.GraphHopperURL, opts)
			if err != nil {
				log.Warn("skipping routing provider", zap.String("provider", name), zap.Error(err))
				continue
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("routing providers: unknown provider %q", name)
		}
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("routing providers: none usable out of %v", cfg.Providers)
	}
	return providers, nil
}
