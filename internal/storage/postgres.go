package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Storage = (*Postgres)(nil)

const (
	getEntrySQL    = `SELECT value FROM kv_entries WHERE key = $1`
	upsertEntrySQL = `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteEntrySQL = `DELETE FROM kv_entries WHERE key = $1`
)

// Postgres is a durable Storage over the kv_entries table (see migrations/).
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres tier using a PostgreSQL connection pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := p.db.QueryRow(ctx, getEntrySQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry %q: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.Exec(ctx, upsertEntrySQL, key, value); err != nil {
		return fmt.Errorf("failed to upsert entry %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	return nil
}
