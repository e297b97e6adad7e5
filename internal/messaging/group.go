package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runnable is anything the group starts and stops.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs the consumers that share one subscriber and closes the
// subscriber after them.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger
	members    []Runnable
	started    int
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers r. Call before Start.
func (g *ConsumerGroup) Add(r Runnable) {
	g.members = append(g.members, r)
}

func (g *ConsumerGroup) Len() int {
	return len(g.members)
}

// Start starts the members in order. When one fails, those already running
// are stopped again and the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, r := range g.members {
		if err := r.Start(ctx); err != nil {
			rollback := g.stop(g.members[:i])

			return errors.Join(fmt.Errorf("start consumer %d: %w", i, err), rollback)
		}
	}

	g.started = len(g.members)
	g.logger.Info("consumer group started", zap.Int("consumers", g.started))

	return nil
}

// Shutdown stops every started member concurrently, then closes the
// subscriber. All errors are returned joined.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("consumer group stopping", zap.Int("consumers", g.started))

	err := g.stop(g.members[:g.started])
	g.started = 0

	if cerr := g.subscriber.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close subscriber: %w", cerr))
	}

	return err
}

func (g *ConsumerGroup) stop(members []Runnable) error {
	errs := make([]error, len(members))

	var eg errgroup.Group
	for i, r := range members {
		eg.Go(func() error {
			errs[i] = r.Shutdown()

			return nil
		})
	}

	_ = eg.Wait()

	return errors.Join(errs...)
}
