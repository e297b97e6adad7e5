// Package store holds the key-value backends behind the recent-links cache and
// the language preference, plus the rate limit stores.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// KV is a small string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend names a KV implementation selectable from configuration.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendFile     Backend = "file"
)
