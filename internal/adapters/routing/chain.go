package routing

import (
	"context"
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/ports"

	"go.uber.org/zap"
)

// ProviderChain tries its providers strictly in order and returns the first
// valid route. It never substitutes a straight line when all of them fail.
//
// The chain is safe for concurrent use as long as its providers are.
type ProviderChain struct {
	providers []ports.RouteProvider
	log       *zap.Logger
}

func NewProviderChain(log *zap.Logger, providers ...ports.RouteProvider) *ProviderChain {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProviderChain{providers: providers, log: log}
}

func (c *ProviderChain) Name() string { return "chain" }

// Providers returns the provider names in priority order.
func (c *ProviderChain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

func (c *ProviderChain) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (domain.Route, error) {
	if len(c.providers) == 0 {
		return domain.Route{}, fmt.Errorf("fetch route: %w: no providers configured", ErrNoRoute)
	}

	errs := make([]error, 0, len(c.providers))
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		route, err := p.FetchRoute(ctx, origin, destination)
		if err == nil {
			// Providers validate their own output; re-check so a misbehaving
			// adapter cannot leak a degenerate route.
			if verr := validateRoute(route); verr != nil {
				err = fmt.Errorf("%s: %w", p.Name(), verr)
			} else {
				return route, nil
			}
		}

		c.log.Debug("provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		errs = append(errs, err)
	}

	return domain.Route{}, fmt.Errorf("fetch route: %w: %w", ErrNoRoute, errors.Join(errs...))
}
