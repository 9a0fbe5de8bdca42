package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"team-dashboard/backend/pkg/logger"
)

// ErrCircuitOpen is returned while the breaker short-circuits calls
var ErrCircuitOpen = errors.New("circuit open")

// State of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// BreakerConfig holds configuration for a circuit breaker
type BreakerConfig struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	RetryTimeout     time.Duration
}

// DefaultBreakerConfig returns the settings used for remote storage backends
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		RetryTimeout:     30 * time.Second,
	}
}

// Breaker stops calling a failing dependency until RetryTimeout has passed,
// then lets a few probe calls through before closing again.
type Breaker struct {
	cfg BreakerConfig
	log *logger.Logger
	now func() time.Time

	mu          sync.Mutex
	state       State
	failures    uint
	successes   uint
	nextAttempt time.Time

	totalRequests uint64
	totalFailures uint64
	openCount     uint64
}

// NewBreaker creates a closed breaker
func NewBreaker(cfg BreakerConfig, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.Discard()
	}
	return &Breaker{cfg: cfg, log: log, now: time.Now, state: StateClosed}
}

// Do runs fn unless the circuit is open. Context cancellation is not counted
// as a dependency failure.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.allow() {
		b.log.Warn("Circuit breaker preventing request", "name", b.cfg.Name)
		return ErrCircuitOpen
	}

	start := b.now()
	err := fn(ctx)
	switch {
	case err == nil:
		b.onSuccess()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		// caller gave up
	default:
		b.onFailure()
		b.log.Warn("Circuit breaker recorded failure",
			"name", b.cfg.Name,
			"error", err.Error(),
			"duration", b.now().Sub(start).String(),
		)
	}
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalRequests++
	switch b.state {
	case StateOpen:
		if b.now().Before(b.nextAttempt) {
			return false
		}
		b.state = StateHalfOpen
		b.successes = 0
		b.log.Info("Circuit breaker half-open", "name", b.cfg.Name)
		return true
	case StateHalfOpen:
		return b.successes < b.cfg.SuccessThreshold
	}
	return true
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.log.Info("Circuit breaker closed", "name", b.cfg.Name)
		}
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailures++
	if b.state == StateClosed {
		b.failures++
		if b.failures < b.cfg.FailureThreshold {
			return
		}
	}
	b.state = StateOpen
	b.openCount++
	b.nextAttempt = b.now().Add(b.cfg.RetryTimeout)
	b.log.Info("Circuit breaker opened",
		"name", b.cfg.Name,
		"nextAttempt", b.nextAttempt.Format(time.RFC3339),
	)
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Metrics returns counters for the health endpoint
func (b *Breaker) Metrics() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]any{
		"name":           b.cfg.Name,
		"state":          string(b.state),
		"total_requests": b.totalRequests,
		"total_failures": b.totalFailures,
		"open_count":     b.openCount,
	}
}
