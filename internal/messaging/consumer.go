// Package messaging carries link analytics events over Watermill, either on
// Redis Streams or on an in-process channel.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkclean/internal/metrics"
	"go.uber.org/zap"
)

// Consumer outcomes reported to metrics.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeMalformed = "malformed"
)

// DefaultHandleTimeout bounds a single handler call.
const DefaultHandleTimeout = 10 * time.Second

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer subscribes to one topic and feeds decoded events to a typed handler.
//
// Events the handler rejects are nacked for redelivery. Payloads that do not
// decode are acked and dropped, since redelivery cannot fix them.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerOptions)

type consumerOptions struct {
	metrics *metrics.Metrics
	timeout time.Duration
}

// WithMetrics counts consumed events by outcome.
func WithMetrics(m *metrics.Metrics) ConsumerOption {
	return func(o *consumerOptions) { o.metrics = m }
}

// WithHandleTimeout replaces DefaultHandleTimeout. Zero disables the bound.
func WithHandleTimeout(d time.Duration) ConsumerOption {
	return func(o *consumerOptions) { o.timeout = d }
}

// NewConsumer creates a consumer of T events published on topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	o := consumerOptions{timeout: DefaultHandleTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		metrics:    o.metrics,
		timeout:    o.timeout,
		done:       make(chan struct{}),
	}
}

// Topic returns the subscribed topic.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and consumes in the background until Shutdown.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			outcome := c.process(ctx, msg)
			c.metrics.ObserveEvent(c.topic, outcome)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) string {
	log := c.logger.With(zap.String("messageId", msg.UUID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Warn("dropping malformed event", zap.Error(err))
		msg.Ack()

		return OutcomeMalformed
	}

	if err := c.call(ctx, &event); err != nil {
		log.Error("failed to handle event", zap.Error(err))
		msg.Nack()

		return OutcomeFailed
	}

	msg.Ack()
	log.Debug("event handled")

	return OutcomeOK
}

func (c *Consumer[T]) call(ctx context.Context, event *T) (err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return c.handler(ctx, event)
}

// Shutdown stops consuming and waits for the event in flight.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
