package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Postgres driver
	_ "github.com/lib/pq"
)

// DB wraps the sql connection pool
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies it is reachable
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the durable collections if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS login_logs (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			login_time TIMESTAMPTZ NOT NULL,
			logout_time TIMESTAMPTZ,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			session_key TEXT NOT NULL DEFAULT '',
			successful BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_login_logs_user_time ON login_logs (user_id, login_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_login_logs_time ON login_logs (login_time)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			session_key TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL,
			additional_data JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_user_time ON activity_logs (user_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_action_time ON activity_logs (action, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_session_time ON activity_logs (session_key, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS generated_texts (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			session_key TEXT NOT NULL DEFAULT '',
			input_text TEXT NOT NULL,
			generated_text TEXT NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_texts_session ON generated_texts (session_key, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_texts_user ON generated_texts (user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
