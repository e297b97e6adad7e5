package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkclean/internal/middleware"
	"github.com/serroba/linkclean/internal/ratelimit"
	"github.com/serroba/linkclean/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errStoreDown
}

func ok(_ context.Context, _ *struct{}) (*testOutput, error) {
	return &testOutput{Body: "ok"}, nil
}

func setupLimitedAPI(t *testing.T, rs ratelimit.Store) *chi.Mux {
	t.Helper()

	policy := &ratelimit.Policy{Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
		ratelimit.ScopeRead:    {{Window: time.Minute, Max: 3}},
		ratelimit.ScopeWrite:   {{Window: time.Minute, Max: 2}},
		ratelimit.ScopeNetwork: {{Window: time.Minute, Max: 1}},
	}}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RateLimiter(api, ratelimit.NewLimiter(rs, policy), zap.NewNop()))

	huma.Get(api, "/read", ok)
	huma.Post(api, "/write", ok)

	huma.Register(api, huma.Operation{
		Method: http.MethodGet,
		Path:   "/network",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeNetwork},
		},
	}, ok)

	huma.Register(api, huma.Operation{
		Method: http.MethodGet,
		Path:   "/free",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, ok)

	huma.Register(api, huma.Operation{
		Method: http.MethodGet,
		Path:   "/items/{id}",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 2}},
			},
		},
	}, func(_ context.Context, _ *struct {
		ID string `path:"id"`
	},
	) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	return router
}

func do(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows reads under the limit", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		for range 3 {
			assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/read", nil).Code)
		}
	})

	t.Run("returns 429 with Retry-After once the limit is hit", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		for range 2 {
			require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/write", nil).Code)
		}

		w := do(router, http.MethodPost, "/write", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "write scope, 3/2")
	})

	t.Run("network endpoints use the network scope", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/network", nil).Code)

		w := do(router, http.MethodGet, "/network", nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "network scope")
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/read", nil).Code, "reads keep their own budget")
	})

	t.Run("clients are keyed by IP and user agent", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())
		first := map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": "A"}

		require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/network", first).Code)
		require.Equal(t, http.StatusTooManyRequests, do(router, http.MethodGet, "/network", first).Code)

		otherAgent := map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": "B"}
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/network", otherAgent).Code)

		otherIP := map[string]string{"X-Forwarded-For": "203.0.113.2", "User-Agent": "A"}
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/network", otherIP).Code)
	})

	t.Run("disabled endpoints are never limited", func(t *testing.T) {
		router := setupLimitedAPI(t, failingStore{})

		for range 5 {
			assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/free", nil).Code)
		}
	})

	t.Run("custom limits are shared by every path of a route", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore())

		require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/items/1", nil).Code)
		require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/items/2", nil).Code)

		assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodGet, "/items/3", nil).Code)
	})

	t.Run("store errors return 500", func(t *testing.T) {
		router := setupLimitedAPI(t, failingStore{})

		assert.Equal(t, http.StatusInternalServerError, do(router, http.MethodGet, "/read", nil).Code)
		assert.Equal(t, http.StatusInternalServerError, do(router, http.MethodGet, "/items/1", nil).Code)
	})
}
