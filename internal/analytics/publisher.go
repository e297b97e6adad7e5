package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/linkclean/internal/messaging"
)

// Publisher publishes analytics events.
type Publisher struct {
	resolved messaging.Publish[LinkResolvedEvent]
	failed   messaging.Publish[LinkFailedEvent]
}

// NewPublisher creates a publisher for both link topics.
func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{
		resolved: messaging.NewPublishFunc[LinkResolvedEvent](publisher, TopicLinkResolved),
		failed:   messaging.NewPublishFunc[LinkFailedEvent](publisher, TopicLinkFailed),
	}
}

// PublishLinkResolved publishes a resolved event, assigning an ID when missing.
func (p *Publisher) PublishLinkResolved(ctx context.Context, event *LinkResolvedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	return p.resolved(ctx, event)
}

// PublishLinkFailed publishes a failed event, assigning an ID when missing.
func (p *Publisher) PublishLinkFailed(ctx context.Context, event *LinkFailedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	return p.failed(ctx, event)
}
