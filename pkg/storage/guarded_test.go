package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"team-dashboard/backend/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyKV struct {
	*MemoryKV
	err   error
	calls int
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestGuardedPassesThrough(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("test"), nil)
	exerciseKV(t, NewGuarded(NewMemoryKV(), breaker, time.Second))
}

func TestGuardedShortCircuitsAfterFailures(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	inner := &flakyKV{MemoryKV: NewMemoryKV(), err: down}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name: "test", FailureThreshold: 2, SuccessThreshold: 1, RetryTimeout: time.Hour,
	}, nil)
	kv := NewGuarded(inner, breaker, time.Second)

	_, _, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, kv.Set(ctx, "k", "v"), down)

	_, _, err = kv.Get(ctx, "k")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, resilience.StateOpen, kv.Breaker().State())
	assert.Same(t, inner, kv.Unwrap())
}
