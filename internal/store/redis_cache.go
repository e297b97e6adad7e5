package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheKV wraps a durable KV with Redis caching for reads.
type RedisCacheKV struct {
	store  KV
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheKV creates a new Redis-cached KV decorator.
func NewRedisCacheKV(store KV, client *redis.Client, ttl time.Duration) *RedisCacheKV {
	return &RedisCacheKV{
		store:  store,
		client: client,
		prefix: "linkclean:cache:",
		ttl:    ttl,
	}
}

// Get checks the cache first and populates it from the store on a miss.
func (r *RedisCacheKV) Get(ctx context.Context, key string) (string, error) {
	if value, err := r.client.Get(ctx, r.prefix+key).Result(); err == nil {
		return value, nil
	}

	value, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	r.cache(ctx, key, value)

	return value, nil
}

// Set writes through to the store, then refreshes the cache.
func (r *RedisCacheKV) Set(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, value); err != nil {
		return err
	}

	r.cache(ctx, key, value)

	return nil
}

// Delete removes the key from both the store and the cache.
func (r *RedisCacheKV) Delete(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, key); err != nil {
		return err
	}

	_ = r.client.Del(ctx, r.prefix+key).Err()

	return nil
}

func (r *RedisCacheKV) cache(ctx context.Context, key, value string) {
	_ = r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

// Shutdown is a no-op for RedisCacheKV (client managed externally).
func (r *RedisCacheKV) Shutdown() error {
	return nil
}

var _ KV = (*RedisCacheKV)(nil)
