// Package ratelimit applies per-client sliding-window limits to the HTTP API.
// Endpoints that call out to the network (resolution, geolocation) get their
// own, stricter scope.
package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key inside a sliding window.
type Store interface {
	// Record adds one request for key, prunes entries older than window and
	// returns how many remain.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
