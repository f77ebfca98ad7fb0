package hours

import (
	"context"
	"database/sql"

	"ivr-gateway/pkg/utils"
)

// PostgresRepo persists the schedule in the open_hours table, one row per
// weekday that has a window. Absent row means always open that day.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) Load(ctx context.Context) (Schedule, error) {
	const q = `SELECT weekday, opening, closing FROM open_hours ORDER BY weekday ASC`
	var s Schedule

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var day int
		var w Window
		if err := rows.Scan(&day, &w.Open, &w.Close); err != nil {
			return s, err
		}
		if day < 0 || day > 6 {
			continue
		}
		s[day] = &w
	}
	return s, rows.Err()
}

// Replace rewrites the whole week atomically.
func (r *PostgresRepo) Replace(ctx context.Context, s Schedule) error {
	return utils.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM open_hours`); err != nil {
			return err
		}
		const ins = `INSERT INTO open_hours (weekday, opening, closing) VALUES ($1, $2, $3)`
		for day, w := range s {
			if w == nil {
				continue
			}
			if _, err := tx.ExecContext(ctx, ins, day, w.Open, w.Close); err != nil {
				return err
			}
		}
		return nil
	})
}
