package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the behaviour every backend must share
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()
	key := Key("test-profile", "currentRole")

	_, ok, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, key, "天天"))
	v, ok, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "天天", v)

	require.NoError(t, kv.Set(ctx, key, "铭"))
	v, _, _ = kv.Get(ctx, key)
	assert.Equal(t, "铭", v)

	require.NoError(t, kv.Delete(ctx, key))
	_, ok, err = kv.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kv.Ping(ctx))
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	exerciseKV(t, kv)

	ctx := context.Background()
	_ = kv.Set(ctx, "a", "1")
	_ = kv.Set(ctx, "b", "2")
	assert.Equal(t, 2, kv.Count())
	kv.Flush()
	assert.Equal(t, 0, kv.Count())
}

func TestKeyNamespacesProfiles(t *testing.T) {
	assert.Equal(t, "profile:p1:team_messages", Key("p1", "team_messages"))
	assert.NotEqual(t, Key("p1", "currentRole"), Key("p2", "currentRole"))
}
