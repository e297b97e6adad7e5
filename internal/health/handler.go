// Package health reports whether the server's backing services respond.
package health

import (
	"context"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	Healthy   = "healthy"
	Unhealthy = "unhealthy"
)

// Checker pings one dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker pings a Redis client.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PostgresChecker pings a connection pool.
type PostgresChecker struct {
	pool *pgxpool.Pool
}

func NewPostgresChecker(pool *pgxpool.Pool) *PostgresChecker {
	return &PostgresChecker{pool: pool}
}

func (p *PostgresChecker) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Handler reports the state of every registered dependency.
type Handler struct {
	checkers map[string]Checker
}

// NewHandler creates a handler over the named checkers. With no checkers the
// server reports ok.
func NewHandler(checkers map[string]Checker) *Handler {
	return &Handler{checkers: checkers}
}

// Response is the health check body.
type Response struct {
	Body struct {
		Status       string            `enum:"ok,degraded" json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
}

// Check pings every dependency in name order. A failing dependency degrades the
// status without failing the request.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Dependencies = make(map[string]string, len(h.checkers))

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := h.checkers[name].Ping(ctx); err != nil {
			resp.Body.Dependencies[name] = Unhealthy
			resp.Body.Status = StatusDegraded

			continue
		}

		resp.Body.Dependencies[name] = Healthy
	}

	return resp, nil
}

// RegisterRoutes registers GET /health.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, h.Check)
}
