// Package storage holds the per-profile key-value substrate that backs every
// store of the dashboard. Values are opaque strings; list-shaped keys are
// JSON encoded by LoadList and SaveList.
package storage

import (
	"context"
	"errors"
	"fmt"

	"team-dashboard/backend/pkg/config"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/pkg/resilience"
)

// ErrMalformedState is returned when a persisted value cannot be decoded
// into the shape its key requires.
var ErrMalformedState = errors.New("malformed persisted state")

// KV is a string key-value store
type KV interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key builds the physical key for a logical key of one profile
func Key(profileID, key string) string {
	return fmt.Sprintf("profile:%s:%s", profileID, key)
}

// New opens the backend selected by cfg.Storage.Backend. Remote backends are
// wrapped in a circuit breaker.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (KV, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return NewMemoryKV(), nil
	case config.BackendRedis:
		kv, err := NewRedisKV(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, err
		}
		breaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("redis-kv"), log)
		return NewGuarded(kv, breaker, cfg.Storage.Timeout), nil
	case config.BackendPostgres:
		db, err := OpenPostgres(cfg, log)
		if err != nil {
			return nil, err
		}
		kv, err := NewGormKV(db)
		if err != nil {
			return nil, err
		}
		breaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("postgres-kv"), log)
		return NewGuarded(kv, breaker, cfg.Storage.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
