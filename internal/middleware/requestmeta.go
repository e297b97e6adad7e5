package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/handlers"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

// RequestMeta stores the request ID, client IP, user agent and Accept-Language
// in the request context. An incoming X-Request-ID is kept; otherwise newID
// mints one. The ID is echoed in the response.
func RequestMeta(newID func() string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = newID()
		}

		meta := handlers.RequestMeta{
			RequestID:      id,
			ClientIP:       ClientIP(ctx),
			UserAgent:      ctx.Header("User-Agent"),
			AcceptLanguage: ctx.Header("Accept-Language"),
		}

		ctx.SetHeader(RequestIDHeader, id)

		next(huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta)))
	}
}

// ClientIP returns the originating client address, preferring proxy headers.
func ClientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
