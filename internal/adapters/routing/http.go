package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ambulance-dispatch-service/internal/platform/obs"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 8 << 20

// RetryPolicy controls how a single provider is retried.
// Attempt i (zero based) runs with a timeout of TimeoutBase + i*TimeoutStep
// and is followed, when retryable, by a sleep of BackoffBase * 2^i.
type RetryPolicy struct {
	Attempts    int
	BackoffBase time.Duration
	TimeoutBase time.Duration
	TimeoutStep time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:    2,
		BackoffBase: 250 * time.Millisecond,
		TimeoutBase: 5 * time.Second,
		TimeoutStep: 5 * time.Second,
	}
}

func (p RetryPolicy) timeout(attempt int) time.Duration {
	return p.TimeoutBase + time.Duration(attempt)*p.TimeoutStep
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// client is the HTTP plumbing shared by every provider adapter.
type client struct {
	name    string
	session *http.Client
	limiter *rate.Limiter
	policy  RetryPolicy
	log     *zap.Logger
}

// ClientOptions configures the shared HTTP client of a provider.
type ClientOptions struct {
	HTTPClient *http.Client
	Policy     RetryPolicy
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64
	// RateBurst is the token bucket size; size it to the evaluator worker cap.
	RateBurst int
	Logger    *zap.Logger
}

func newClient(name string, opts ClientOptions) *client {
	c := &client{
		name:    name,
		session: opts.HTTPClient,
		policy:  opts.Policy,
		log:     opts.Logger,
	}
	if c.session == nil {
		// Per-attempt deadlines come from the request context.
		c.session = &http.Client{}
	}
	if c.policy.Attempts < 1 {
		c.policy.Attempts = 1
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))
	}
	return c
}

func (c *client) Name() string { return c.name }

func (c *client) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do runs a single attempt and returns the response body. The body is read
// while the attempt deadline is still active.
func (c *client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.session.Do(req)
	obs.ProviderLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return b, nil
}

// doWithRetry retries transient failures (network errors, timeouts, 429 and
// 5xx responses) using exponential backoff while respecting context
// cancellation. Any other failure returns immediately so the caller can move
// on to the next provider.
func (c *client) doWithRetry(
	ctx context.Context,
	makeReq func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	backoff := c.policy.BackoffBase

	var lastErr error

	for attempt := 0; attempt < c.policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				obs.ProviderRequests.WithLabelValues(c.name, "rate_limited").Inc()
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		body, err := c.attempt(ctx, attempt, makeReq)
		if err == nil {
			return body, nil
		}
		lastErr = err

		retry := retryable(err)
		c.log.Debug("provider attempt failed",
			zap.String("provider", c.name),
			zap.Int("attempt", attempt+1),
			zap.Bool("retry", retry && attempt+1 < c.policy.Attempts),
			zap.Error(err),
		)

		if !retry || attempt+1 == c.policy.Attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func (c *client) attempt(
	ctx context.Context,
	attempt int,
	makeReq func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.policy.timeout(attempt))
	defer cancel()

	req, err := makeReq(actx)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			obs.ProviderRequests.WithLabelValues(c.name, "status").Inc()
		} else {
			obs.ProviderRequests.WithLabelValues(c.name, "transport").Inc()
		}
		return nil, err
	}
	return body, nil
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
