package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each session's cart under cart:<session> with no expiry.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Load(ctx context.Context, session string) ([]byte, error) {
	data, err := r.client.Get(ctx, storageKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotStored
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, session string, data []byte) error {
	if err := r.client.Set(ctx, storageKey(session), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
