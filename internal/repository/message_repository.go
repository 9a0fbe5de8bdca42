package repository

import (
	"context"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/storage"
)

type MessageRepository interface {
	// List returns the board in stored order
	List(ctx context.Context, profileID string) ([]models.Message, error)
	// Replace overwrites the whole board
	Replace(ctx context.Context, profileID string, messages []models.Message) error
}

type KVMessageRepository struct {
	kv storage.KV
}

func NewKVMessageRepository(kv storage.KV) *KVMessageRepository {
	return &KVMessageRepository{kv: kv}
}

func (r *KVMessageRepository) List(ctx context.Context, profileID string) ([]models.Message, error) {
	return storage.LoadList[models.Message](ctx, r.kv, storage.Key(profileID, models.KeyMessages))
}

func (r *KVMessageRepository) Replace(ctx context.Context, profileID string, messages []models.Message) error {
	return storage.SaveList(ctx, r.kv, storage.Key(profileID, models.KeyMessages), messages)
}
