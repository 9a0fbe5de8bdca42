package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{Name: "kv", FailureThreshold: 2, SuccessThreshold: 1, RetryTimeout: time.Minute}, nil)
	b.now = func() time.Time { return clock }

	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }
	ok := func(context.Context) error { return nil }
	ctx := context.Background()

	assert.ErrorIs(t, b.Do(ctx, fail), boom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(ctx, fail), boom)
	assert.Equal(t, StateOpen, b.State())

	assert.ErrorIs(t, b.Do(ctx, ok), ErrCircuitOpen)

	clock = clock.Add(2 * time.Minute)
	assert.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{Name: "kv", FailureThreshold: 1, SuccessThreshold: 2, RetryTimeout: time.Second}, nil)
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	_ = b.Do(ctx, func(context.Context) error { return errors.New("down") })
	clock = clock.Add(2 * time.Second)
	_ = b.Do(ctx, func(context.Context) error { return errors.New("still down") })

	assert.Equal(t, StateOpen, b.State())
	assert.EqualValues(t, 2, b.Metrics()["open_count"])
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "kv", FailureThreshold: 1, SuccessThreshold: 1, RetryTimeout: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}
