// Package circuitbreaker guards flaky upstreams. After a run of consecutive
// failures the breaker opens and calls fail fast; once the cool-off passes,
// a small probe budget decides whether to close again.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

var (
	// ErrCircuitOpen fails a call fast while the upstream is cooling off.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrHalfOpenLimit rejects calls beyond the probe budget while the
	// breaker is testing the upstream.
	ErrHalfOpenLimit = errors.New("circuit breaker half-open probe limit reached")
)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config tunes a breaker. Zero values fall back to defaults sized for the
// news upstream.
type Config struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Cooloff          time.Duration
	MaxProbes        uint32
}

type CircuitBreaker struct {
	name             string
	failureThreshold uint32
	successThreshold uint32
	cooloff          time.Duration
	maxProbes        uint32

	mu         sync.Mutex
	state      State
	generation uint64
	requests   uint32
	successes  uint32
	failures   uint32
	openedAt   time.Time
}

func NewCircuitBreaker(name string, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Cooloff == 0 {
		cfg.Cooloff = 30 * time.Second
	}
	// The probe budget must cover the successes needed to close, or a
	// half-open breaker could never recover.
	if cfg.MaxProbes < cfg.SuccessThreshold {
		cfg.MaxProbes = cfg.SuccessThreshold
	}

	return &CircuitBreaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		cooloff:          cfg.Cooloff,
		maxProbes:        cfg.MaxProbes,
	}
}

// Execute runs fn under the breaker. A panic in fn counts as a failure and
// is re-raised.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, false)
			panic(r)
		}
	}()

	err = fn()
	cb.afterRequest(generation, err == nil)
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state := cb.currentState(now)

	if state == StateOpen {
		return cb.generation, ErrCircuitOpen
	}
	if state == StateHalfOpen && cb.requests >= cb.maxProbes {
		return cb.generation, ErrHalfOpenLimit
	}

	cb.requests++
	return cb.generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state := cb.currentState(now)
	if cb.generation != before {
		return
	}

	if success {
		cb.onSuccess(state, now)
	} else {
		cb.onFailure(state, now)
	}
}

func (cb *CircuitBreaker) onSuccess(state State, now time.Time) {
	cb.successes++
	cb.failures = 0

	if state == StateHalfOpen && cb.successes >= cb.successThreshold {
		cb.setState(StateClosed, now)
	}
}

func (cb *CircuitBreaker) onFailure(state State, now time.Time) {
	cb.failures++
	cb.successes = 0

	if state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.setState(StateOpen, now)
	}
}

// currentState moves an expired open breaker to half-open. Callers hold the
// mutex.
func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.After(cb.openedAt.Add(cb.cooloff)) {
		cb.setState(StateHalfOpen, now)
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.requests = 0
	cb.successes = 0
	cb.failures = 0

	if state == StateOpen {
		cb.openedAt = now
	}

	logger.Info("Circuit breaker state changed",
		zap.String("name", cb.name),
		zap.String("from", prev.String()),
		zap.String("to", state.String()),
	)
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.currentState(time.Now())
}
