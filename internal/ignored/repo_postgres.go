package ignored

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists the ignored set in the ignored_numbers table.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) Add(ctx context.Context, number string) error {
	const q = `INSERT INTO ignored_numbers (number) VALUES ($1) ON CONFLICT (number) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, q, number)
	return err
}

func (r *PostgresRepo) Remove(ctx context.Context, number string) error {
	const q = `DELETE FROM ignored_numbers WHERE number = $1`
	_, err := r.DB.ExecContext(ctx, q, number)
	return err
}

func (r *PostgresRepo) Contains(ctx context.Context, number string) (bool, error) {
	const q = `SELECT 1 FROM ignored_numbers WHERE number = $1`
	var one int
	if err := r.DB.QueryRowContext(ctx, q, number).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]string, error) {
	const q = `SELECT number FROM ignored_numbers ORDER BY number ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
