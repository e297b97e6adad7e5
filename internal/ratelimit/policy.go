package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// LimitConfig allows at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

func (c LimitConfig) String() string {
	return fmt.Sprintf("%d/%s", c.Max, c.Window)
}

// Policy maps each scope to the limits checked for it. Scopes without an entry
// are unlimited.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy is the policy the server runs with.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 300},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 120},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 60},
			},
			ScopeNetwork: {
				{Window: time.Minute, Max: 20},
				{Window: time.Hour, Max: 200},
			},
		},
	}
}

// Validate rejects non-positive windows and maxima.
func (p *Policy) Validate() error {
	if p == nil {
		return errors.New("nil rate limit policy")
	}

	for scope, limits := range p.Limits {
		for _, l := range limits {
			if l.Window <= 0 || l.Max <= 0 {
				return fmt.Errorf("scope %s: invalid limit %s", scope, l)
			}
		}
	}

	return nil
}
