package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements Adapter using Redis as the backing store.
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter builds an adapter against addr, authenticating with
// password (empty for no auth) and selecting db.
func NewRedisAdapter(addr, password string, db int) *RedisAdapter {
	return &RedisAdapter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisAdapter) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %q: %w", key, err)
	}
	return nil
}
