package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/language"
	"go.uber.org/zap"
)

// LanguageHandler serves the UI language choice.
type LanguageHandler struct {
	detector   *language.Detector
	preference *language.Preference
	logger     *zap.Logger
}

// NewLanguageHandler creates a language handler. preference may be nil, in
// which case nothing is remembered.
func NewLanguageHandler(detector *language.Detector, preference *language.Preference, logger *zap.Logger) *LanguageHandler {
	return &LanguageHandler{detector: detector, preference: preference, logger: logger}
}

// Get returns the stored language, or detects one from the caller's address
// and Accept-Language header.
func (h *LanguageHandler) Get(ctx context.Context, _ *struct{}) (*LanguageResponse, error) {
	meta := RequestMetaFromContext(ctx)

	r := language.Resolve(ctx, h.preference, h.detector, language.Hint{
		ClientIP: meta.ClientIP,
		Locale:   meta.AcceptLanguage,
	})

	resp := &LanguageResponse{}
	resp.Body.Language = string(r.Language)
	resp.Body.Source = string(r.Source)
	resp.Body.Provider = r.Provider

	return resp, nil
}

// Set stores an explicit language.
func (h *LanguageHandler) Set(ctx context.Context, req *SetLanguageRequest) (*LanguageResponse, error) {
	if h.preference == nil {
		return nil, huma.Error501NotImplemented("language preference storage is not configured")
	}

	c, err := h.preference.Save(ctx, language.Code(req.Body.Language))
	if err != nil {
		h.logger.Error("failed to save language preference", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save language preference")
	}

	resp := &LanguageResponse{}
	resp.Body.Language = string(c)
	resp.Body.Source = string(language.SourcePreference)

	return resp, nil
}
