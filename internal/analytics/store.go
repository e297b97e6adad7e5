package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveLinkResolved(ctx context.Context, event *LinkResolvedEvent) error
	SaveLinkFailed(ctx context.Context, event *LinkFailedEvent) error
}
