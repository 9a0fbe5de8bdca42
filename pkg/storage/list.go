package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// LoadList decodes the JSON list stored under key. A missing key is an empty
// list; anything that is not a JSON array is ErrMalformedState.
func LoadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a list", ErrMalformedState, key)
	}

	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, key, err)
	}
	return items, nil
}

// SaveList replaces the list stored under key
func SaveList[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(raw))
}
