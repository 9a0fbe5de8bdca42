package repository

import (
	"context"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/storage"
)

type ResourceRepository interface {
	List(ctx context.Context, profileID string, c models.Collection) ([]models.Resource, error)
	Replace(ctx context.Context, profileID string, c models.Collection, resources []models.Resource) error
}

type KVResourceRepository struct {
	kv storage.KV
}

func NewKVResourceRepository(kv storage.KV) *KVResourceRepository {
	return &KVResourceRepository{kv: kv}
}

func (r *KVResourceRepository) List(ctx context.Context, profileID string, c models.Collection) ([]models.Resource, error) {
	return storage.LoadList[models.Resource](ctx, r.kv, storage.Key(profileID, c.StorageKey()))
}

func (r *KVResourceRepository) Replace(ctx context.Context, profileID string, c models.Collection, resources []models.Resource) error {
	return storage.SaveList(ctx, r.kv, storage.Key(profileID, c.StorageKey()), resources)
}
