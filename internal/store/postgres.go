package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV is a PostgreSQL implementation of KV over the kv_entries table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV creates a PostgreSQL-backed store.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// Migrate creates the kv_entries table when missing.
func (p *PostgresKV) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	_, err := p.pool.Exec(ctx, query)

	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`

	var value string

	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}

		return "", err
	}

	return value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := p.pool.Exec(ctx, query, key, value)

	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)

	return err
}

var _ KV = (*PostgresKV)(nil)
