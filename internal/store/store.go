// Package store provides the local persistence collaborator: whole-collection
// JSON blobs with read/replace semantics, one Redis key per collection.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Collection keys. Every collection is a single JSON document; there are no
// partial updates at the storage layer.
const (
	KeyProducts   = "pos:products"
	KeyOrders     = "pos:orders"
	KeyCategories = "pos:categories"
	KeyProfile    = "pos:store"
	KeyPIN        = "pos:pin"
)

// Store wraps Redis helpers for JSON blob collections.
type Store struct {
	client *redis.Client
}

// New constructs a blob store over the provided client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// GetJSON unmarshals the collection stored at key into dst. It reports whether
// the key existed; an absent key is not an error so callers can fall back to
// seeded defaults.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil || s.client == nil || key == "" {
		return false, nil
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v and replaces the collection stored at key.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	if s == nil || s.client == nil || key == "" {
		return errors.New("store: not configured")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

// GetString reads a plain string value (used for the PIN hash).
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.client == nil || key == "" {
		return "", false, nil
	}
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// SetString replaces a plain string value.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	if s == nil || s.client == nil || key == "" {
		return errors.New("store: not configured")
	}
	return s.client.Set(ctx, key, value, 0).Err()
}

// Ping probes the underlying client for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("store: not configured")
	}
	return s.client.Ping(ctx).Err()
}
