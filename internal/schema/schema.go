package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Statements is the full DDL for the gateway, in dependency order. Every
// statement is idempotent so Apply can run on every boot.
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS coded_messages (
	code      TEXT PRIMARY KEY,
	use_text  BOOLEAN NOT NULL DEFAULT TRUE,
	text_     TEXT,
	audio     BYTEA,
	file_name TEXT,
	options   SMALLINT NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS open_hours (
	weekday SMALLINT PRIMARY KEY CHECK (weekday BETWEEN 0 AND 6),
	opening TEXT NOT NULL,
	closing TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS id_registry (
	id_number TEXT PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS ignored_numbers (
	number TEXT PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS calls (
	id        BIGSERIAL PRIMARY KEY,
	number    TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	call_sid  TEXT,
	code      TEXT,
	id_number TEXT
)`,
	`CREATE INDEX IF NOT EXISTS calls_call_sid_idx ON calls (call_sid)`,
	`CREATE INDEX IF NOT EXISTS calls_number_idx ON calls (number)`,
	`CREATE TABLE IF NOT EXISTS settings (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	type       TEXT NOT NULL,
	actor_role TEXT,
	ip_address TEXT,
	target     TEXT,
	message    TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`,
}

// Apply creates any missing tables and indexes.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
