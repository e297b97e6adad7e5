package resolver

import (
	"context"
	"fmt"

	"github.com/serroba/linkclean/internal/link"
)

// Gated only lets through inputs that look like share or canonical links.
type Gated struct {
	next      Resolver
	validator *link.Validator
}

// NewGated wraps next with validator.
func NewGated(next Resolver, validator *link.Validator) *Gated {
	return &Gated{next: next, validator: validator}
}

func (g *Gated) Resolve(ctx context.Context, inputURL string) (*link.Resolved, error) {
	if !g.validator.IsCandidate(inputURL) {
		return nil, fmt.Errorf("%q is not a share link: %w", inputURL, link.ErrValidation)
	}

	return g.next.Resolve(ctx, inputURL)
}

var _ Resolver = (*Gated)(nil)
