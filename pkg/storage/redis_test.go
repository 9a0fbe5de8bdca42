package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	kv, err := NewRedisKV(context.Background(), addr)
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}
