package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Violation describes the first limit a request broke.
type Violation struct {
	Scope Scope
	Limit LimitConfig
	Count int64
}

// RetryAfter is the longest a client has to wait before the window has fully
// rolled over.
func (v *Violation) RetryAfter() time.Duration {
	return v.Limit.Window
}

func (v *Violation) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
		v.Scope, v.Count, v.Limit.Max, v.Limit.Window)
}

// Limiter checks requests against a policy.
type Limiter struct {
	store  Store
	policy *Policy
}

// NewLimiter creates a limiter counting in store.
func NewLimiter(store Store, policy *Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Allow records one request from client in every scope and returns the first
// violation, or nil when the request may proceed.
func (l *Limiter) Allow(ctx context.Context, client string, scopes []Scope) (*Violation, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			v, err := l.check(ctx, fmt.Sprintf("%s:%s", client, scope), scope, limit)
			if err != nil || v != nil {
				return v, err
			}
		}
	}

	return nil, nil
}

// AllowRoute checks limits that belong to one route rather than a scope. The
// route is the operation's path template, so all matching paths share counters.
func (l *Limiter) AllowRoute(ctx context.Context, client, route string, limits []LimitConfig) (*Violation, error) {
	for _, limit := range limits {
		v, err := l.check(ctx, fmt.Sprintf("%s:route:%s", client, route), Scope("route:"+route), limit)
		if err != nil || v != nil {
			return v, err
		}
	}

	return nil, nil
}

func (l *Limiter) check(ctx context.Context, prefix string, scope Scope, limit LimitConfig) (*Violation, error) {
	key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

	count, err := l.store.Record(ctx, key, limit.Window)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", key, err)
	}

	if count > limit.Max {
		return &Violation{Scope: scope, Limit: limit, Count: count}, nil
	}

	return nil, nil
}
