package di

import (
	"context"
	"testing"

	"team-dashboard/backend/pkg/config"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	cfg := config.Load()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Observability.TracingEnabled = false
	cfg.Observability.MetricsEnabled = true
	cfg.Board.Roster = []string{"pm:天天", "tester:南羽"}
	return cfg
}

func TestNewWiresMemoryBackend(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, memoryConfig(), logger.Discard())
	require.NoError(t, err)
	defer c.Close(ctx)

	assert.IsType(t, &storage.MemoryKV{}, c.KV)
	assert.NotNil(t, c.MetricsHandler)
	assert.Len(t, c.IdentityService.Roles(), 2)
	assert.Equal(t, "末日求生", c.Project.Name)

	c.Health.RunChecks(ctx)
	assert.True(t, c.Health.IsSystemHealthy())
}

func TestNewWithoutMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.Observability.MetricsEnabled = false

	c, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, c.MetricsHandler)
	assert.NoError(t, c.Close(ctx))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Backend = "etcd"

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}
