package analytics

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkclean/internal/messaging"
	"go.uber.org/zap"
)

// Consumer drains both link topics into the store.
type Consumer struct {
	resolved *messaging.Consumer[LinkResolvedEvent]
	failed   *messaging.Consumer[LinkFailedEvent]
}

// NewConsumer creates a consumer persisting events to store. opts apply to
// both topics.
func NewConsumer(
	subscriber message.Subscriber, store Store, logger *zap.Logger, opts ...messaging.ConsumerOption,
) *Consumer {
	return &Consumer{
		resolved: messaging.NewConsumer(subscriber, TopicLinkResolved, store.SaveLinkResolved, logger, opts...),
		failed:   messaging.NewConsumer(subscriber, TopicLinkFailed, store.SaveLinkFailed, logger, opts...),
	}
}

// Start subscribes to both topics.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.resolved.Start(ctx); err != nil {
		return err
	}

	if err := c.failed.Start(ctx); err != nil {
		_ = c.resolved.Shutdown()

		return err
	}

	return nil
}

// Shutdown stops both topic consumers.
func (c *Consumer) Shutdown() error {
	return errors.Join(c.resolved.Shutdown(), c.failed.Shutdown())
}

var _ messaging.Runnable = (*Consumer)(nil)
