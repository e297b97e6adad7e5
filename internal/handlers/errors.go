package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/link"
	"github.com/serroba/linkclean/internal/payload"
)

// linkError maps pipeline errors to HTTP problems.
func linkError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("request canceled", err)
	case errors.Is(err, link.ErrNetwork):
		return huma.Error502BadGateway("could not reach the resolution service", err)
	case errors.Is(err, payload.ErrDecode), errors.Is(err, link.ErrResolution):
		return huma.Error422UnprocessableEntity("could not resolve link", err)
	case errors.Is(err, link.ErrValidation):
		return huma.Error422UnprocessableEntity("not a supported share link", err)
	default:
		return huma.Error500InternalServerError("failed to resolve link")
	}
}
