package resolver

import (
	"context"

	"github.com/serroba/linkclean/internal/link"
	"golang.org/x/sync/singleflight"
)

// Coalescing shares one in-flight resolution between concurrent callers asking
// for the same link.
type Coalescing struct {
	next  Resolver
	group singleflight.Group
}

// NewCoalescing wraps next.
func NewCoalescing(next Resolver) *Coalescing {
	return &Coalescing{next: next}
}

func (c *Coalescing) Resolve(ctx context.Context, inputURL string) (*link.Resolved, error) {
	v, err, _ := c.group.Do(inputURL, func() (any, error) {
		return c.next.Resolve(context.WithoutCancel(ctx), inputURL)
	})
	if err != nil {
		return nil, err
	}

	resolved := *v.(*link.Resolved)

	return &resolved, nil
}

var _ Resolver = (*Coalescing)(nil)
