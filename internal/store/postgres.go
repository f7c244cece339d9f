package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"FundDesk/internal/model"
)

// PostgresStore keeps the state blob as jsonb in a key/value table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	cfg.MaxConns = 4
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Println("[INFO] postgres state store connected")
	return &PostgresStore{db: pool}, nil
}

func (p *PostgresStore) Load(ctx context.Context) (*model.SystemState, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, StorageKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.SystemState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return decodeState(value)
}

func (p *PostgresStore) Save(ctx context.Context, state *model.SystemState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
        INSERT INTO kv_store (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()
    `, StorageKey, string(data))
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.db.Close()
	return nil
}
