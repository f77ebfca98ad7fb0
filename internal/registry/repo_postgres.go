package registry

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists registered ids in the id_registry table.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) Contains(ctx context.Context, id string) (bool, error) {
	const q = `SELECT 1 FROM id_registry WHERE id_number = $1`
	var one int
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresRepo) Add(ctx context.Context, id string) error {
	const q = `INSERT INTO id_registry (id_number) VALUES ($1) ON CONFLICT (id_number) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, q, id)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM id_registry`
	var n int
	if err := r.DB.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
