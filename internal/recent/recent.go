// Package recent keeps the bounded, deduplicated history of resolved links.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/serroba/linkclean/internal/metrics"
	"github.com/serroba/linkclean/internal/store"
	"go.uber.org/zap"
)

const (
	// StorageKey is the key the list is persisted under.
	StorageKey = "recentLinks"

	// Limit is the maximum number of entries kept.
	Limit = 10
)

// Entry is one remembered link. Its JSON form is the persisted shape.
type Entry struct {
	ID           int64     `json:"id"`
	Link         string    `json:"link"`
	Creator      *string   `json:"creator"`
	PreviewImage *string   `json:"previewImage"`
	Timestamp    time.Time `json:"timestamp"`
}

// Input describes a freshly resolved link.
type Input struct {
	Link         string
	Creator      string
	PreviewImage string
}

// Cache is the recent links list on top of a KV store.
type Cache struct {
	mu      sync.Mutex
	kv      store.KV
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	lastID  int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache persisted in kv.
func NewCache(kv store.KV, logger *zap.Logger, m *metrics.Metrics, opts ...Option) *Cache {
	c := &Cache{
		kv:      kv,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Record puts in at the front of the list, dropping any older entry for the same
// link and anything past Limit. Persistence failures are logged; the updated
// list is returned either way.
func (c *Cache) Record(ctx context.Context, in Input) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.newEntry(in)

	current := c.load(ctx)
	updated := make([]Entry, 0, Limit)
	updated = append(updated, entry)

	for _, e := range current {
		if len(updated) == Limit {
			break
		}

		if e.Link != entry.Link {
			updated = append(updated, e)
		}
	}

	c.persist(ctx, updated)

	return updated
}

// List returns the stored entries, newest first.
func (c *Cache) List(ctx context.Context) []Entry {
	return c.load(ctx)
}

// Clear forgets every entry.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.kv.Delete(ctx, StorageKey)
}

func (c *Cache) newEntry(in Input) Entry {
	now := c.now().UTC()

	id := now.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}

	c.lastID = id

	return Entry{
		ID:           id,
		Link:         in.Link,
		Creator:      optional(in.Creator),
		PreviewImage: optional(in.PreviewImage),
		Timestamp:    now,
	}
}

func (c *Cache) load(ctx context.Context) []Entry {
	raw, err := c.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("failed to read recent links", zap.Error(err))
		}

		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn("discarding unreadable recent links", zap.Error(err))

		return []Entry{}
	}

	if entries == nil {
		return []Entry{}
	}

	if len(entries) > Limit {
		entries = entries[:Limit]
	}

	return entries
}

func (c *Cache) persist(ctx context.Context, entries []Entry) {
	data, err := json.Marshal(entries)
	if err != nil {
		c.metrics.ObserveCacheWrite("error")
		c.logger.Warn("failed to encode recent links", zap.Error(err))

		return
	}

	if err := c.kv.Set(ctx, StorageKey, string(data)); err != nil {
		c.metrics.ObserveCacheWrite("error")
		c.logger.Warn("failed to persist recent links", zap.Error(err))

		return
	}

	c.metrics.ObserveCacheWrite("ok")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
