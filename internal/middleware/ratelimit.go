package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkclean/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client (IP plus User-Agent). Operations can
// override their scope, supply their own limits or opt out through
// ratelimit.MetadataKey metadata.
func RateLimiter(api huma.API, limiter *ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		cfg := ratelimit.EndpointConfigFrom(op)

		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		key := clientKey(ctx)

		var (
			violation *ratelimit.Violation
			err       error
		)

		if cfg != nil && len(cfg.Limits) > 0 && op != nil {
			violation, err = limiter.AllowRoute(ctx.Context(), key, op.Path, cfg.Limits)
		} else {
			violation, err = limiter.Allow(ctx.Context(), key, ratelimit.Scopes(ctx.Method(), cfg))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", operationPath(op)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if violation != nil {
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(op)),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(violation.Scope)),
				zap.Int64("count", violation.Count),
				zap.Int64("max", violation.Limit.Max),
				zap.Duration("window", violation.Limit.Window),
				zap.String("client_ip", ClientIP(ctx)),
			)

			retryAfter := int(math.Ceil(violation.RetryAfter().Seconds()))
			ctx.SetHeader("Retry-After", strconv.Itoa(retryAfter))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, violation.Error())

			return
		}

		next(ctx)
	}
}

func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(ClientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

func operationPath(op *huma.Operation) string {
	if op == nil {
		return ""
	}

	return op.Path
}
