package routing

import (
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
)

var (
	// ErrNoRoute is returned when every provider failed to produce a valid route.
	ErrNoRoute = errors.New("no provider returned a valid route")
	// ErrInvalidRoute marks responses that were received but are unusable:
	// not-ok status, malformed payload, degenerate polyline or non-positive duration.
	ErrInvalidRoute = errors.New("invalid route response")
)

// validateRoute enforces the minimum a provider route needs to be accepted.
func validateRoute(r domain.Route) error {
	if len(r.Points) <= 2 {
		return fmt.Errorf("%w: polyline has %d points", ErrInvalidRoute, len(r.Points))
	}
	if r.DurationMin <= 0 {
		return fmt.Errorf("%w: duration %.3f min", ErrInvalidRoute, r.DurationMin)
	}
	return nil
}

func invalidf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRoute, fmt.Sprintf(format, a...))
}
