package repository

import (
	"context"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/storage"
)

type IdentityRepository interface {
	// Get returns the stored name and whether one was ever stored
	Get(ctx context.Context, profileID string) (string, bool, error)
	Set(ctx context.Context, profileID, name string) error
}

type KVIdentityRepository struct {
	kv storage.KV
}

func NewKVIdentityRepository(kv storage.KV) *KVIdentityRepository {
	return &KVIdentityRepository{kv: kv}
}

func (r *KVIdentityRepository) Get(ctx context.Context, profileID string) (string, bool, error) {
	return r.kv.Get(ctx, storage.Key(profileID, models.KeyCurrentRole))
}

func (r *KVIdentityRepository) Set(ctx context.Context, profileID, name string) error {
	return r.kv.Set(ctx, storage.Key(profileID, models.KeyCurrentRole), name)
}
