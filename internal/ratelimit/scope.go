package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a limit.
type Scope string

const (
	// ScopeGlobal counts every request.
	ScopeGlobal Scope = "global"
	// ScopeRead counts safe methods.
	ScopeRead Scope = "read"
	// ScopeWrite counts unsafe methods.
	ScopeWrite Scope = "write"
	// ScopeNetwork counts requests that trigger outbound calls.
	ScopeNetwork Scope = "network"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes limiting for one operation.
type EndpointConfig struct {
	// Scope replaces the method-derived scope. ScopeGlobal always applies.
	Scope Scope

	// Limits, when set, are checked per route instead of the policy's scope
	// limits.
	Limits []LimitConfig

	Disabled bool
}

// Scopes returns the scopes for a request. cfg may be nil.
func Scopes(method string, cfg *EndpointConfig) []Scope {
	if cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// EndpointConfigFrom returns the EndpointConfig attached to the operation, or nil.
func EndpointConfigFrom(op *huma.Operation) *EndpointConfig {
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
