package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/linkclean/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	resolvedChan chan *message.Message
	failedChan   chan *message.Message
	subscribeErr map[string]error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		resolvedChan: make(chan *message.Message, 10),
		failedChan:   make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if err := m.subscribeErr[topic]; err != nil {
		return nil, err
	}

	switch topic {
	case analytics.TopicLinkResolved:
		return m.resolvedChan, nil
	case analytics.TopicLinkFailed:
		return m.failedChan, nil
	default:
		return nil, errors.New("unknown topic")
	}
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.resolvedChan)
		close(m.failedChan)
	}

	return nil
}

type mockStore struct {
	resolved    []*analytics.LinkResolvedEvent
	failed      []*analytics.LinkFailedEvent
	resolvedErr error
	failedErr   error
	mu          sync.Mutex
}

func (m *mockStore) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	if m.resolvedErr != nil {
		return m.resolvedErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.resolved = append(m.resolved, event)

	return nil
}

func (m *mockStore) SaveLinkFailed(_ context.Context, event *analytics.LinkFailedEvent) error {
	if m.failedErr != nil {
		return m.failedErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed = append(m.failed, event)

	return nil
}

func send(t *testing.T, ch chan *message.Message, payload []byte) *message.Message {
	t.Helper()

	msg := message.NewMessage(uuid.NewString(), payload)
	ch <- msg

	return msg
}

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message was nacked")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack")
	}
}

func waitNacked(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Nacked():
	case <-msg.Acked():
		t.Fatal("message should have been nacked")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for nack")
	}
}

func TestConsumer_Start(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("starts successfully", func(t *testing.T) {
		consumer := analytics.NewConsumer(newMockSubscriber(), &mockStore{}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, consumer.Shutdown())
	})

	t.Run("rolls back when the second subscription fails", func(t *testing.T) {
		sub := newMockSubscriber()
		sub.subscribeErr = map[string]error{analytics.TopicLinkFailed: errors.New("subscribe error")}

		consumer := analytics.NewConsumer(sub, &mockStore{}, zap.NewNop())

		require.Error(t, consumer.Start(context.Background()))
		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_LinkResolved(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("stores the event", func(t *testing.T) {
		sub := newMockSubscriber()
		store := &mockStore{}
		consumer := analytics.NewConsumer(sub, store, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(&analytics.LinkResolvedEvent{
			EventID:      uuid.NewString(),
			InputURL:     "https://vm.tiktok.com/ZMabcdXYZ",
			CanonicalURL: "https://www.tiktok.com/@user/video/12345",
			Strategy:     "backend",
			Origin:       analytics.OriginAPI,
			ResolvedAt:   time.Now(),
		})

		waitAcked(t, send(t, sub.resolvedChan, payload))

		store.mu.Lock()
		assert.Len(t, store.resolved, 1)
		assert.Equal(t, "https://www.tiktok.com/@user/video/12345", store.resolved[0].CanonicalURL)
		store.mu.Unlock()

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("drops events that do not decode", func(t *testing.T) {
		sub := newMockSubscriber()
		store := &mockStore{}
		consumer := analytics.NewConsumer(sub, store, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		waitAcked(t, send(t, sub.resolvedChan, []byte("invalid json")))

		store.mu.Lock()
		assert.Empty(t, store.resolved)
		store.mu.Unlock()

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks on store error", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := analytics.NewConsumer(sub, &mockStore{resolvedErr: errors.New("store error")}, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		waitNacked(t, send(t, sub.resolvedChan, []byte(`{"eventId":"x"}`)))

		require.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_LinkFailed(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("stores the event", func(t *testing.T) {
		sub := newMockSubscriber()
		store := &mockStore{}
		consumer := analytics.NewConsumer(sub, store, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(&analytics.LinkFailedEvent{
			EventID:  uuid.NewString(),
			InputURL: "https://example.com",
			Outcome:  "validation",
			Error:    "not a share link",
			FailedAt: time.Now(),
		})

		waitAcked(t, send(t, sub.failedChan, payload))

		store.mu.Lock()
		assert.Len(t, store.failed, 1)
		assert.Equal(t, "validation", store.failed[0].Outcome)
		store.mu.Unlock()

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("nacks on store error", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := analytics.NewConsumer(sub, &mockStore{failedErr: errors.New("store error")}, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		waitNacked(t, send(t, sub.failedChan, []byte(`{"eventId":"x"}`)))

		require.NoError(t, consumer.Shutdown())
	})
}
