package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Resilient rate-limits calls to the wrapped Embedder and stops calling it
// while it keeps failing.
type Resilient struct {
	next    Embedder
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewResilient wraps next. rps <= 0 disables rate limiting. The breaker
// opens once 60% of at least 5 calls in a 60s window fail, and lets a trial
// call through after 30s.
func NewResilient(next Embedder, rps float64) *Resilient {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}

	logger := slog.Default().With("component", "embedding-breaker")
	st := gobreaker.Settings{
		Name:        "embedding",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.6
		},
		// caller cancellation is not a provider failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Resilient{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker(st),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Model implements Embedder.
func (r *Resilient) Model() string { return r.next.Model() }

// Embed waits for a rate-limit token, then calls through the breaker. While
// the breaker is open it fails fast with gobreaker.ErrOpenState.
func (r *Resilient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.([]float32), nil
}

// State reports the breaker state for health checks.
func (r *Resilient) State() gobreaker.State { return r.cb.State() }
