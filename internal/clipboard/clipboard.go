// Package clipboard places text on the system clipboard through an ordered chain
// of strategies, from the native clipboard down to asking the user.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/linkclean/internal/metrics"
	"go.uber.org/zap"
)

var errUnavailable = errors.New("strategy unavailable")

// Strategy is one way of writing to the clipboard.
type Strategy struct {
	Name      string
	Available func() bool
	Copy      func(ctx context.Context, text string) error
}

// Writer tries its strategies in order until one succeeds.
type Writer struct {
	strategies []Strategy
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewWriter creates a writer over strategies. The slice is copied.
func NewWriter(strategies []Strategy, logger *zap.Logger, m *metrics.Metrics) *Writer {
	return &Writer{
		strategies: append([]Strategy(nil), strategies...),
		logger:     logger,
		metrics:    m,
	}
}

// Write reports whether any strategy placed text on the clipboard. It never
// fails loudly: every failed strategy is logged and the next one is tried.
func (w *Writer) Write(ctx context.Context, text string) bool {
	for _, s := range w.strategies {
		err := w.try(ctx, s, text)
		if err == nil {
			w.metrics.ObserveClipboard(s.Name, "ok")
			w.logger.Debug("clipboard write succeeded", zap.String("strategy", s.Name))

			return true
		}

		if errors.Is(err, errUnavailable) {
			w.metrics.ObserveClipboard(s.Name, "unavailable")
		} else {
			w.metrics.ObserveClipboard(s.Name, "failed")
		}

		w.logger.Debug("clipboard strategy failed, trying next",
			zap.String("strategy", s.Name),
			zap.Error(err),
		)
	}

	w.logger.Warn("no clipboard strategy succeeded")

	return false
}

func (w *Writer) try(ctx context.Context, s Strategy, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard strategy panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.Copy == nil || (s.Available != nil && !s.Available()) {
		return errUnavailable
	}

	return s.Copy(ctx, text)
}
