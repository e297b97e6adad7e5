package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory sliding window implementation of
// ratelimit.Store.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Record adds a hit for key and returns the hits still inside window.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.requests[key][:0]
	for _, ts := range s.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	kept = append(kept, now)
	s.requests[key] = kept

	return int64(len(kept)), nil
}

// Keys returns the number of tracked keys.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Sweep drops keys whose newest hit is older than window.
func (s *RateLimitMemoryStore) Sweep(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-window)

	for key, hits := range s.requests {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.requests, key)
		}
	}
}
