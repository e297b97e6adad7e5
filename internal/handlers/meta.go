package handlers

import "context"

type requestMetaKey struct{}

// RequestMeta holds per-request client details set by the request-meta middleware.
type RequestMeta struct {
	RequestID      string
	ClientIP       string
	UserAgent      string
	AcceptLanguage string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
