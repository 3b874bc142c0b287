package resilience

import (
	"sync"
	"time"
)

// RateLimiterConfig parameterizes a per-key sliding window rate limiter
// (SPEC_FULL.md §4.7).
type RateLimiterConfig struct {
	Window      time.Duration
	MaxRequests int
}

// RateLimiter enforces MaxRequests per Window, independently per key. Keys
// are typically an agent ID, a room ID, or a caller identity string.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewRateLimiter constructs a RateLimiter for cfg.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string][]time.Time),
	}
}

// Check reports whether a request for key is allowed right now, and if so
// records it. Returns false without recording anything if the key is
// already at MaxRequests within the trailing Window.
func (rl *RateLimiter) Check(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := rl.pruneLocked(key, now)
	if len(hits) >= rl.cfg.MaxRequests {
		return false
	}
	rl.buckets[key] = append(hits, now)
	return true
}

// Remaining reports how many more requests key may make in the current
// window pruning timestamps older than Window (and dropping the key once none
// remain) as a side effect.
func (rl *RateLimiter) Remaining(key string) int {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := rl.pruneLocked(key, now)
	remaining := rl.cfg.MaxRequests - len(hits)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// pruneLocked drops timestamps older than Window and writes the pruned
// slice back, returning it. Caller holds rl.mu.
func (rl *RateLimiter) pruneLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.cfg.Window)
	existing := rl.buckets[key]
	if len(existing) == 0 {
		return existing
	}

	kept := existing[:0:0]
	for _, t := range existing {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.buckets, key)
		return nil
	}
	rl.buckets[key] = kept
	return kept
}
