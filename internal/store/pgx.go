package store

import (
	"context"
	"errors"

	"billing-engine/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxBackend stores one row per collection in entity_collections.
type PgxBackend struct {
	pool *pgxpool.Pool
}

func NewPgxBackend(pool *pgxpool.Pool) *PgxBackend {
	return &PgxBackend{pool: pool}
}

func (b *PgxBackend) Load(ctx context.Context, name core.Collection) ([]byte, error) {
	var payload string
	err := b.pool.QueryRow(ctx,
		"SELECT payload FROM entity_collections WHERE name = $1", string(name),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (b *PgxBackend) Save(ctx context.Context, name core.Collection, payload []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO entity_collections (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		string(name), string(payload),
	)
	return err
}

func (b *PgxBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}
