package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys set on every published message.
const (
	MetadataEventType   = "event_type"
	MetadataPublishedAt = "published_at"
)

// Publish sends one typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc returns a Publish that JSON-encodes T events onto topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), body)
		msg.Metadata.Set(MetadataEventType, topic)
		msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))
		msg.SetContext(ctx)

		if err := publisher.Publish(topic, msg); err != nil {
			return fmt.Errorf("publish %s event: %w", topic, err)
		}

		return nil
	}
}

// PublisherGroup owns the publisher behind every Publish func and closes it
// once.
type PublisherGroup struct {
	publisher message.Publisher
	once      sync.Once
	closeErr  error
}

func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the publisher. Later calls return the first result.
func (g *PublisherGroup) Shutdown() error {
	g.once.Do(func() {
		g.closeErr = g.publisher.Close()
	})

	return g.closeErr
}
