package store

import (
	"context"

	"github.com/serroba/linkclean/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	n.logger.Info("link resolved event received",
		zap.String("eventId", event.EventID),
		zap.String("canonicalUrl", event.CanonicalURL),
		zap.String("strategy", event.Strategy),
		zap.String("origin", string(event.Origin)),
		zap.Time("resolvedAt", event.ResolvedAt),
	)

	return nil
}

func (n *Noop) SaveLinkFailed(_ context.Context, event *analytics.LinkFailedEvent) error {
	n.logger.Info("link failed event received",
		zap.String("eventId", event.EventID),
		zap.String("inputUrl", event.InputURL),
		zap.String("outcome", event.Outcome),
		zap.Time("failedAt", event.FailedAt),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
