// Package pipeline glues validation, resolution, the recent links cache, the
// clipboard and event publishing into one call.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/linkclean/internal/analytics"
	"github.com/serroba/linkclean/internal/clipboard"
	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/recent"
	"github.com/serroba/linkclean/internal/resolver"
	"go.uber.org/zap"
)

// EventPublisher receives the outcome of every processed link.
type EventPublisher interface {
	PublishLinkResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error
	PublishLinkFailed(ctx context.Context, event *analytics.LinkFailedEvent) error
}

// Request is one link to process.
type Request struct {
	Input     string
	Validate  bool
	Copy      bool
	ClientIP  string
	UserAgent string
}

// Result is the outcome of a successful Process call.
type Result struct {
	InputURL string
	Resolved link.Resolved
	Recent   []recent.Entry
	Copied   bool
}

// Service runs the link pipeline.
type Service struct {
	resolver  resolver.Resolver
	gated     resolver.Resolver
	validator *link.Validator
	cache     *recent.Cache
	clipboard *clipboard.Writer
	events    EventPublisher
	strategy  string
	origin    analytics.Origin
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClipboard enables copying results when a request asks for it.
func WithClipboard(w *clipboard.Writer) Option {
	return func(s *Service) { s.clipboard = w }
}

// WithEvents publishes resolved and failed events.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithStrategy labels events with the resolver strategy.
func WithStrategy(strategy string) Option {
	return func(s *Service) { s.strategy = strategy }
}

// WithOrigin labels events with the client running the pipeline.
func WithOrigin(o analytics.Origin) Option {
	return func(s *Service) { s.origin = o }
}

// NewService creates a pipeline over an ungated resolver. Validated requests
// go through a gate built from validator.
func NewService(res resolver.Resolver, validator *link.Validator, cache *recent.Cache, opts ...Option) *Service {
	s := &Service{
		resolver:  res,
		gated:     resolver.NewGated(res, validator),
		validator: validator,
		cache:     cache,
		logger:    zap.NewNop(),
		origin:    analytics.OriginAPI,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Process resolves req.Input, records it in the recent links and, when asked,
// copies the canonical URL. Failures are returned once and never retried.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	input := s.validator.ExtractURL(req.Input)
	if input == "" {
		input = strings.TrimSpace(req.Input)
	}

	if input == "" {
		err := fmt.Errorf("empty input: %w", link.ErrValidation)
		s.publishFailed(ctx, req, input, err)

		return nil, err
	}

	r := s.resolver
	if req.Validate {
		r = s.gated
	}

	resolved, err := r.Resolve(ctx, input)
	if err != nil {
		s.logger.Info("link processing failed",
			zap.String("input", input),
			zap.String("outcome", resolver.Outcome(err)),
			zap.Error(err),
		)
		s.publishFailed(ctx, req, input, err)

		return nil, err
	}

	result := &Result{
		InputURL: input,
		Resolved: *resolved,
		Recent: s.cache.Record(ctx, recent.Input{
			Link:         resolved.CanonicalURL,
			Creator:      resolved.Creator,
			PreviewImage: resolved.PreviewImageURL,
		}),
	}

	if req.Copy && s.clipboard != nil {
		result.Copied = s.clipboard.Write(ctx, resolved.CanonicalURL)
	}

	s.publishResolved(ctx, req, result)

	return result, nil
}

// Recent lists the remembered links.
func (s *Service) Recent(ctx context.Context) []recent.Entry {
	return s.cache.List(ctx)
}

// ClearRecent forgets the remembered links.
func (s *Service) ClearRecent(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *Service) publishResolved(ctx context.Context, req Request, result *Result) {
	if s.events == nil {
		return
	}

	err := s.events.PublishLinkResolved(ctx, &analytics.LinkResolvedEvent{
		InputURL:     result.InputURL,
		CanonicalURL: result.Resolved.CanonicalURL,
		Creator:      result.Resolved.Creator,
		Strategy:     s.strategy,
		Validated:    req.Validate,
		Origin:       s.origin,
		ResolvedAt:   s.now().UTC(),
		ClientIP:     req.ClientIP,
		UserAgent:    req.UserAgent,
	})
	if err != nil {
		s.logger.Error("failed to publish link resolved event", zap.Error(err))
	}
}

func (s *Service) publishFailed(ctx context.Context, req Request, input string, cause error) {
	if s.events == nil {
		return
	}

	err := s.events.PublishLinkFailed(ctx, &analytics.LinkFailedEvent{
		InputURL:  input,
		Strategy:  s.strategy,
		Outcome:   resolver.Outcome(cause),
		Error:     cause.Error(),
		Origin:    s.origin,
		FailedAt:  s.now().UTC(),
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		s.logger.Error("failed to publish link failed event", zap.Error(err))
	}
}
