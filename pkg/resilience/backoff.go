package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig parameterizes retry-with-backoff (SPEC_FULL.md §4.7).
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig is a conservative default: three retries, 200ms
// initial delay doubling up to 5s.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// Operation is the idempotent unit of work retried by RetryWithBackoff.
type Operation func(ctx context.Context) error

// RetryWithBackoff invokes op, retrying up to cfg.MaxRetries times on
// failure, sleeping min(InitialDelay * Multiplier^attempt, MaxDelay)
// between attempts. The backoff schedule is generated by
// github.com/cenkalti/backoff/v4 — the kernel does not hand-roll the
// exponential math — so the formula in SPEC_FULL.md §4.7 is exactly what
// the library produces for the given parameters, not a reimplementation.
// A zero MaxRetries runs op exactly once with no retry.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, op Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	b.Multiplier = cfg.Multiplier
	b.RandomizationFactor = 0 // deterministic schedule, matches the spec's formula exactly
	b.MaxElapsedTime = 0      // bounded by MaxRetries below, not by elapsed wall time

	bounded := backoff.WithMaxRetries(b, uint64(cfg.MaxRetries))
	bctx := backoff.WithContext(bounded, ctx)

	return backoff.Retry(func() error {
		return op(ctx)
	}, bctx)
}
