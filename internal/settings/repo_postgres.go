package settings

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists settings in the settings table.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{DB: db} }

func (s *PostgresStore) Get(ctx context.Context, name string) (string, bool, error) {
	const q = `SELECT value FROM settings WHERE name = $1`
	var v string
	if err := s.DB.QueryRowContext(ctx, q, name).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, name, value string) error {
	const q = `
INSERT INTO settings (name, value) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
`
	_, err := s.DB.ExecContext(ctx, q, name, value)
	return err
}
