// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lesson-template-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schemaStatements create the tables the catalog, preference and tracking
// adapters read and write. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS lesson_templates (
		id                TEXT PRIMARY KEY,
		name              TEXT,
		subject           TEXT,
		grade_levels      INTEGER[],
		output_type       TEXT,
		difficulty        TEXT,
		tags              TEXT[],
		compliance_labels TEXT[],
		recommended_tools TEXT[],
		position          SERIAL,
		active            BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS template_usage_events (
		id          BIGSERIAL PRIMARY KEY,
		user_id     TEXT NOT NULL,
		template_id TEXT NOT NULL,
		subject     TEXT NOT NULL,
		output_type TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_template_usage_user_time ON template_usage_events (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id              TEXT PRIMARY KEY,
		preferred_difficulty TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS recommendation_events (
		id          UUID PRIMARY KEY,
		request_id  UUID NOT NULL,
		user_id     TEXT NOT NULL,
		template_id TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		rank        INTEGER,
		score       DOUBLE PRECISION,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema in a single transaction.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}
