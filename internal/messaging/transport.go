package messaging

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// NewRedisPublisher publishes to Redis Streams.
func NewRedisPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}

	return pub, nil
}

// NewRedisSubscriber reads Redis Streams as member of consumerGroup.
func NewRedisSubscriber(
	client redis.UniversalClient, consumerGroup string, logger watermill.LoggerAdapter,
) (message.Subscriber, error) {
	sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: consumerGroup,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create redis stream subscriber: %w", err)
	}

	return sub, nil
}

// NewInProcess returns an in-memory pub/sub used when Redis is not configured.
// The same value serves as publisher and subscriber.
func NewInProcess(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)
}
