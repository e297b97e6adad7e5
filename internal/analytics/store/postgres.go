package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkclean/internal/analytics"
)

// Postgres persists analytics events in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the event tables when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS link_resolutions (
			event_id      UUID PRIMARY KEY,
			input_url     TEXT NOT NULL,
			canonical_url TEXT NOT NULL,
			creator       TEXT,
			strategy      TEXT NOT NULL,
			validated     BOOLEAN NOT NULL,
			origin        TEXT NOT NULL,
			client_ip     TEXT,
			user_agent    TEXT,
			resolved_at   TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS link_failures (
			event_id   UUID PRIMARY KEY,
			input_url  TEXT NOT NULL,
			strategy   TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			error      TEXT NOT NULL,
			origin     TEXT NOT NULL,
			client_ip  TEXT,
			user_agent TEXT,
			failed_at  TIMESTAMPTZ NOT NULL
		);
	`

	_, err := p.pool.Exec(ctx, query)

	return err
}

func (p *Postgres) SaveLinkResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error {
	query := `
		INSERT INTO link_resolutions
			(event_id, input_url, canonical_url, creator, strategy, validated, origin, client_ip, user_agent, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.InputURL,
		event.CanonicalURL,
		nullable(event.Creator),
		event.Strategy,
		event.Validated,
		string(event.Origin),
		nullable(event.ClientIP),
		nullable(event.UserAgent),
		event.ResolvedAt,
	)

	return err
}

func (p *Postgres) SaveLinkFailed(ctx context.Context, event *analytics.LinkFailedEvent) error {
	query := `
		INSERT INTO link_failures
			(event_id, input_url, strategy, outcome, error, origin, client_ip, user_agent, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.InputURL,
		event.Strategy,
		event.Outcome,
		event.Error,
		string(event.Origin),
		nullable(event.ClientIP),
		nullable(event.UserAgent),
		event.FailedAt,
	)

	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

var _ analytics.Store = (*Postgres)(nil)
