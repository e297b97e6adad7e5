package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/linkclean/internal/analytics"
	"github.com/serroba/linkclean/internal/analytics/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoop(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	require.NoError(t, noop.SaveLinkResolved(context.Background(), &analytics.LinkResolvedEvent{
		EventID:      "1",
		CanonicalURL: "https://www.tiktok.com/@user/video/12345",
		ResolvedAt:   time.Now(),
	}))

	require.NoError(t, noop.SaveLinkFailed(context.Background(), &analytics.LinkFailedEvent{
		EventID:  "2",
		InputURL: "https://example.com",
		Outcome:  "validation",
		FailedAt: time.Now(),
	}))
}
