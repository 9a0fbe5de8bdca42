package repository

import (
	"context"
	"testing"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := NewKVMessageRepository(kv)

	list, err := repo.List(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)

	msgs := []models.Message{{ID: "1", User: "天天", Content: "hi", Time: "t"}}
	require.NoError(t, repo.Replace(ctx, "p1", msgs))

	list, err = repo.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, msgs, list)

	other, err := repo.List(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, other)

	raw, ok, _ := kv.Get(ctx, "profile:p1:team_messages")
	require.True(t, ok)
	assert.Contains(t, raw, `"user":"天天"`)
}

func TestMessageRepositoryMalformed(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.Key("p1", models.KeyMessages), `{"oops":true}`))

	_, err := NewKVMessageRepository(kv).List(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrMalformedState)
}

func TestResourceRepositoryKeepsCollectionsApart(t *testing.T) {
	ctx := context.Background()
	repo := NewKVResourceRepository(storage.NewMemoryKV())

	scene := []models.Resource{{ID: "s1", Name: "bg.png", Type: "image/png"}}
	require.NoError(t, repo.Replace(ctx, "p1", models.CollectionScene, scene))

	got, err := repo.List(ctx, "p1", models.CollectionScene)
	require.NoError(t, err)
	assert.Equal(t, scene, got)

	chars, err := repo.List(ctx, "p1", models.CollectionCharacter)
	require.NoError(t, err)
	assert.Empty(t, chars)
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVIdentityRepository(storage.NewMemoryKV())

	_, ok, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "p1", "南羽"))
	name, ok, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "南羽", name)
}
