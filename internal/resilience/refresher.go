// Package resilience wraps cache refreshes in retry, exponential backoff and
// a circuit breaker. The cache and the provider client stay policy-free; any
// collaborator that wants automatic retries goes through a Refresher.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"github.com/avasiliev/weathercache/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is the backoff used when no explicit config is given.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// EnsureFunc is a cache freshness operation for one location.
type EnsureFunc func(ctx context.Context, loc weather.Location) error

// Refresher retries an EnsureFunc on transient failures. Non-retryable error
// kinds (contract, config, unknown) propagate immediately; a rate-limit retry
// hint stretches the backoff delay when it is longer.
type Refresher struct {
	ensure  EnsureFunc
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewRefresher creates a Refresher around ensure.
func NewRefresher(ensure EnsureFunc, backoff BackoffConfig) *Refresher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-refresh",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Refresher{
		ensure:  ensure,
		backoff: backoff,
		circuit: cb,
	}
}

// Refresh runs the ensure operation with retries.
func (r *Refresher) Refresh(ctx context.Context, loc weather.Location) error {
	if r.backoff.MaxRetries < 0 || r.backoff.InitialInterval <= 0 {
		return errInvalidConfig
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := r.circuit.Execute(func() (interface{}, error) {
			return nil, r.ensure(ctx, loc)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		werr := weather.Classify(err)
		if !retryable(werr) || attempt >= r.backoff.MaxRetries {
			return werr
		}

		delay := r.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if r.backoff.MaxInterval > 0 && delay > r.backoff.MaxInterval {
			delay = r.backoff.MaxInterval
		}
		if werr.Kind == weather.ErrRateLimit && werr.RetryAfter > delay {
			delay = werr.RetryAfter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// retryable reports whether a failure kind is worth another attempt: network
// blips, provider throttling and server-side HTTP errors. Contract and config
// failures never heal by retrying.
func retryable(werr *weather.Error) bool {
	switch werr.Kind {
	case weather.ErrNetwork, weather.ErrRateLimit:
		return true
	case weather.ErrHTTP:
		return werr.StatusCode >= 500
	default:
		return false
	}
}
