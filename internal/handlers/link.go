package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/payload"
	"github.com/serroba/linkclean/internal/pipeline"
	"github.com/serroba/linkclean/internal/recent"
	"go.uber.org/zap"
)

// LinkService is the part of the pipeline the handlers use.
type LinkService interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Recent(ctx context.Context) []recent.Entry
	ClearRecent(ctx context.Context) error
}

// LinkHandler serves resolution, recent links and payload decoding.
type LinkHandler struct {
	service LinkService
	logger  *zap.Logger
}

// NewLinkHandler creates a link handler.
func NewLinkHandler(service LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{service: service, logger: logger}
}

// Resolve resolves a link, validating it first unless the body opts out.
func (h *LinkHandler) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	validate := req.Body.Validate == nil || *req.Body.Validate

	return h.process(ctx, req.Body.URL, validate)
}

// ResolveQuery resolves a link without validating it.
func (h *LinkHandler) ResolveQuery(ctx context.Context, req *ResolveQueryRequest) (*ResolveResponse, error) {
	return h.process(ctx, req.URL, false)
}

func (h *LinkHandler) process(ctx context.Context, input string, validate bool) (*ResolveResponse, error) {
	meta := RequestMetaFromContext(ctx)

	result, err := h.service.Process(ctx, pipeline.Request{
		Input:     input,
		Validate:  validate,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		return nil, linkError(err)
	}

	resp := &ResolveResponse{}
	resp.Body.CanonicalURL = result.Resolved.CanonicalURL
	resp.Body.Creator = result.Resolved.Creator
	resp.Body.PreviewImage = result.Resolved.PreviewImageURL

	return resp, nil
}

// ListRecent returns the remembered links.
func (h *LinkHandler) ListRecent(ctx context.Context, _ *struct{}) (*RecentResponse, error) {
	return &RecentResponse{Body: h.service.Recent(ctx)}, nil
}

// ClearRecent forgets the remembered links.
func (h *LinkHandler) ClearRecent(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := h.service.ClearRecent(ctx); err != nil {
		h.logger.Error("failed to clear recent links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to clear recent links")
	}

	return nil, nil
}

// Decode reverses the backend's payload obfuscation.
func (h *LinkHandler) Decode(_ context.Context, req *DecodeRequest) (*DecodeResponse, error) {
	v, err := payload.Decode(req.Body.Data)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("payload could not be decoded", err)
	}

	return &DecodeResponse{Body: v}, nil
}
