package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresBackend keeps values in a key/value table
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend connects to Postgres and ensures the table exists
func NewPostgresBackend(databaseURL string) (*PostgresBackend, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(kvSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv_state table: %w", err)
	}

	return &PostgresBackend{db: db}, nil
}

// Close closes the database connection
func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

// GetDB returns the underlying database connection
func (p *PostgresBackend) GetDB() *sqlx.DB {
	return p.db
}

// Get retrieves a value by key
func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := p.db.GetContext(ctx, &value, "SELECT value FROM kv_state WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Put upserts a value
func (p *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO kv_state (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value))
	return err
}
