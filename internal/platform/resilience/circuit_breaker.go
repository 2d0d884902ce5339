package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes a breaker. Enabled is read by callers that
// decide whether to build one at all.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

// Normalize replaces out-of-range values with the defaults.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateChangeFunc observes breaker transitions. It runs outside the breaker lock.
type StateChangeFunc func(from, to CircuitState)

// CircuitBreaker is a small stateful breaker for dependency protection.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
	onStateChange       StateChangeFunc
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = cfg.Normalize()
	return &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// OnStateChange registers fn for every transition.
func (b *CircuitBreaker) OnStateChange(fn StateChangeFunc) {
	b.mu.Lock()
	b.onStateChange = fn
	b.mu.Unlock()
}

// Execute runs fn when the breaker admits it. isFailure decides which errors
// count against the breaker; nil counts every error.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}
	to, notify := b.state, b.onStateChange
	b.mu.Unlock()

	emit(notify, from, to)
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.toClosed()
		}
	}
	to, notify := b.state, b.onStateChange
	b.mu.Unlock()

	emit(notify, from, to)
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.toOpen()
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.toOpen()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
	to, notify := b.state, b.onStateChange
	b.mu.Unlock()

	emit(notify, from, to)
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) toClosed() {
	b.state = CircuitStateClosed
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.state = CircuitStateHalfOpen
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func emit(fn StateChangeFunc, from, to CircuitState) {
	if fn != nil && from != to {
		fn(from, to)
	}
}
