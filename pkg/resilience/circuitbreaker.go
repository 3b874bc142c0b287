package resilience

import (
	"sync"
	"time"

	"github.com/agentoven/kernel/pkg/agent"
)

// CircuitState is one of the three states a CircuitBreaker can be in.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreakerConfig parameterizes a CircuitBreaker (SPEC_FULL.md §4.7).
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// CircuitBreaker guards a flaky downstream call (typically a model
// provider). Closed: pass through, counting consecutive failures. Open:
// fail fast for OpenTimeout, then move to half-open. Half-open: pass
// exactly one call through at a time, counting consecutive successes; any
// failure re-opens immediately.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu               sync.Mutex
	state            CircuitState
	consecutiveFails int
	consecutiveOK    int
	openedAt         time.Time
	halfOpenInFlight bool
}

// NewCircuitBreaker constructs a breaker starting in the closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed}
}

// State returns the breaker's current state, transitioning open→half-open
// first if OpenTimeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpenLocked()
	return cb.state
}

func (cb *CircuitBreaker) maybeHalfOpenLocked() {
	if cb.state == CircuitOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CircuitHalfOpen
		cb.consecutiveOK = 0
		cb.halfOpenInFlight = false
	}
}

// Allow reports whether a call may proceed right now, reserving the single
// half-open probe slot if applicable. Callers that get false MUST NOT
// invoke the guarded operation and should surface a timeout/open-circuit
// failure instead (SPEC_FULL.md §8 scenario 6).
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpenLocked()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitHalfOpen:
		if cb.halfOpenInFlight {
			return false
		}
		cb.halfOpenInFlight = true
		return true
	default: // CircuitOpen
		return false
	}
}

// RecordSuccess reports a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenInFlight = false
		cb.consecutiveOK++
		if cb.consecutiveOK >= cb.cfg.SuccessThreshold {
			cb.state = CircuitClosed
			cb.consecutiveFails = 0
			cb.consecutiveOK = 0
		}
	case CircuitClosed:
		cb.consecutiveFails = 0
	}
}

// RecordFailure reports a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenInFlight = false
		cb.openCircuitLocked()
	case CircuitClosed:
		cb.consecutiveFails++
		if cb.consecutiveFails >= cb.cfg.FailureThreshold {
			cb.openCircuitLocked()
		}
	}
}

func (cb *CircuitBreaker) openCircuitLocked() {
	cb.state = CircuitOpen
	cb.openedAt = time.Now()
	cb.consecutiveFails = 0
	cb.consecutiveOK = 0
}

// Do runs op if the breaker allows it, recording the outcome. It returns
// an ErrRuntime-flavored KernelError when the circuit is open.
func (cb *CircuitBreaker) Do(op func() error) error {
	if !cb.Allow() {
		return agent.NewError(agent.ErrRuntime, "circuit breaker open, call rejected")
	}
	err := op()
	if err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}
