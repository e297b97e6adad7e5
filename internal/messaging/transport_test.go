package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/linkclean/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestInProcessRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	pubsub := messaging.NewInProcess(messaging.NewZapLogger(zap.NewNop()))

	received := make(chan *resolvedLink, 1)

	group := messaging.NewConsumerGroup(pubsub, zap.NewNop())
	group.Add(messaging.NewConsumer(pubsub, topic,
		func(_ context.Context, e *resolvedLink) error {
			received <- e

			return nil
		},
		zap.NewNop(),
	))

	require.NoError(t, group.Start(context.Background()))
	assert.Equal(t, 1, group.Len())

	publish := messaging.NewPublishFunc[resolvedLink](pubsub, topic)
	require.NoError(t, publish(context.Background(), &resolvedLink{URL: "https://www.tiktok.com/@a/video/1", Strategy: "direct"}))

	select {
	case e := <-received:
		assert.Equal(t, "direct", e.Strategy)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	require.NoError(t, group.Shutdown())
}

func TestZapLogger(t *testing.T) {
	var logger watermill.LoggerAdapter = messaging.NewZapLogger(zap.NewNop())

	logger = logger.With(watermill.LogFields{"topic": "link.resolved"})

	assert.NotPanics(t, func() {
		logger.Info("info", watermill.LogFields{"n": 1})
		logger.Debug("debug", nil)
		logger.Trace("trace", nil)
		logger.Error("error", assert.AnError, watermill.LogFields{"k": "v"})
	})
}
