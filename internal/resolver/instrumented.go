package resolver

import (
	"context"
	"errors"

	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/metrics"
	"github.com/serroba/linkclean/internal/payload"
)

// Instrumented counts resolution outcomes per strategy.
type Instrumented struct {
	next     Resolver
	strategy string
	metrics  *metrics.Metrics
}

// NewInstrumented wraps next.
func NewInstrumented(next Resolver, strategy string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, strategy: strategy, metrics: m}
}

func (i *Instrumented) Resolve(ctx context.Context, inputURL string) (*link.Resolved, error) {
	resolved, err := i.next.Resolve(ctx, inputURL)
	i.metrics.ObserveResolution(i.strategy, Outcome(err))

	return resolved, err
}

// Outcome classifies a resolution error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, link.ErrNetwork):
		return "network"
	case errors.Is(err, payload.ErrDecode):
		return "decode"
	case errors.Is(err, link.ErrValidation):
		return "validation"
	case errors.Is(err, link.ErrResolution):
		return "resolution"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

var _ Resolver = (*Instrumented)(nil)
