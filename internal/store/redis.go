package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV is a Redis implementation of KV. Keys are namespaced with a prefix so
// several clients can share one database.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV creates a Redis-backed store using the "linkclean:" prefix.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: "linkclean:",
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		return "", err
	}

	return value, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

var _ KV = (*RedisKV)(nil)
