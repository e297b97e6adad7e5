// Package resolver turns share links into canonical URLs, either by reading the
// redirect itself or by asking the resolution backend.
package resolver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/metrics"
)

// Resolver resolves one share link.
type Resolver interface {
	Resolve(ctx context.Context, inputURL string) (*link.Resolved, error)
}

// Strategy selects how links are resolved.
type Strategy string

const (
	StrategyDirect  Strategy = "direct"
	StrategyBackend Strategy = "backend"
)

// Config describes the resolver to build.
type Config struct {
	Strategy Strategy
	Endpoint string
	Client   *http.Client
	Coalesce bool
}

// New builds the configured resolver, instrumented with m. The result is
// ungated; wrap it with Gated for the validated entry point.
func New(cfg Config, m *metrics.Metrics) (Resolver, error) {
	var r Resolver

	switch cfg.Strategy {
	case StrategyDirect:
		r = NewDirect(cfg.Client)
	case StrategyBackend, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("backend strategy needs an endpoint")
		}

		r = NewBackend(cfg.Endpoint, cfg.Client)
	default:
		return nil, fmt.Errorf("unknown resolver strategy %q", cfg.Strategy)
	}

	if cfg.Coalesce {
		r = NewCoalescing(r)
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyBackend
	}

	return NewInstrumented(r, string(strategy), m), nil
}
