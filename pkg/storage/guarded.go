package storage

import (
	"context"
	"time"

	"team-dashboard/backend/pkg/resilience"
)

// Guarded bounds every call to a remote store with a timeout and a circuit breaker
type Guarded struct {
	next    KV
	breaker *resilience.Breaker
	timeout time.Duration
}

// NewGuarded wraps next. A zero timeout leaves the caller's deadline alone.
func NewGuarded(next KV, breaker *resilience.Breaker, timeout time.Duration) *Guarded {
	return &Guarded{next: next, breaker: breaker, timeout: timeout}
}

// Breaker returns the breaker for health reporting
func (g *Guarded) Breaker() *resilience.Breaker {
	return g.breaker
}

// Unwrap returns the wrapped store
func (g *Guarded) Unwrap() KV {
	return g.next
}

func (g *Guarded) do(ctx context.Context, fn func(context.Context) error) error {
	return g.breaker.Do(ctx, func(ctx context.Context) error {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

func (g *Guarded) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = g.do(ctx, func(ctx context.Context) error {
		var e error
		value, ok, e = g.next.Get(ctx, key)
		return e
	})
	return value, ok, err
}

func (g *Guarded) Set(ctx context.Context, key, value string) error {
	return g.do(ctx, func(ctx context.Context) error {
		return g.next.Set(ctx, key, value)
	})
}

func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.do(ctx, func(ctx context.Context) error {
		return g.next.Delete(ctx, key)
	})
}

// Ping bypasses the breaker so health checks can observe recovery
func (g *Guarded) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

func (g *Guarded) Close() error {
	return g.next.Close()
}
