package persistence

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rocketshoes-cart/pkg/redis"
)

// RedisStore persists blobs under namespaced redis keys without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	blob, err := s.client.Get(ctx, s.client.CartKey(key))
	if err != nil {
		if redis.IsNil(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return blob, nil
}

func (s *RedisStore) Set(ctx context.Context, key, blob string) error {
	if err := s.client.Set(ctx, s.client.CartKey(key), blob, 0); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
