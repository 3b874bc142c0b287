// Package resilience provides the shared utilities the message cycle
// composes with: retry-with-backoff, a circuit breaker, a sliding-window
// rate limiter, and a health aggregator. See SPEC_FULL.md §4.7.
package resilience
