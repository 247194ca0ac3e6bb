// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		sentiment DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		emotion TEXT NOT NULL,
		themes TEXT[] NOT NULL DEFAULT '{}',
		summary TEXT NOT NULL,
		is_reflection BOOLEAN NOT NULL DEFAULT FALSE,
		original_entry_id TEXT NOT NULL DEFAULT ''
	);`,
	"CREATE INDEX IF NOT EXISTS idx_entries_user_created ON entries(user_id, created_at DESC);",
	"CREATE INDEX IF NOT EXISTS idx_entries_original ON entries(user_id, original_entry_id) WHERE is_reflection;",
	`CREATE TABLE IF NOT EXISTS weekly_summaries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_start TIMESTAMPTZ NOT NULL,
		week_end TIMESTAMPTZ NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		summary TEXT NOT NULL,
		entry_count INTEGER NOT NULL,
		avg_sentiment DOUBLE PRECISION NOT NULL,
		top_themes TEXT[] NOT NULL DEFAULT '{}'
	);`,
	"CREATE INDEX IF NOT EXISTS idx_weekly_summaries_user_generated ON weekly_summaries(user_id, generated_at DESC);",
	"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
