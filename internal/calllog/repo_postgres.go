package calllog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists calls in the calls table. The ignored-number
// exclusion is a subquery against ignored_numbers, matching how the
// reporting view has always filtered.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) RecordStart(ctx context.Context, number string, ts time.Time, callSID string) error {
	const q = `INSERT INTO calls (number, timestamp, call_sid) VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, q, number, ts, callSID)
	return err
}

func (r *PostgresRepo) HasEverCalled(ctx context.Context, number string) (bool, error) {
	const q = `SELECT 1 FROM calls WHERE number = $1 LIMIT 1`
	var one int
	if err := r.DB.QueryRowContext(ctx, q, number).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresRepo) AttachCode(ctx context.Context, callSID, code string) error {
	// Zero rows affected (unknown call_sid) is not an error.
	const q = `UPDATE calls SET code = $1 WHERE call_sid = $2`
	_, err := r.DB.ExecContext(ctx, q, code, callSID)
	return err
}

func (r *PostgresRepo) AttachIDNumber(ctx context.Context, callSID, idNumber string) error {
	const q = `UPDATE calls SET id_number = $1 WHERE call_sid = $2`
	_, err := r.DB.ExecContext(ctx, q, idNumber, callSID)
	return err
}

func (r *PostgresRepo) ListExcludingIgnored(ctx context.Context) ([]AggregateRow, error) {
	const q = `
SELECT number, timestamp, code FROM calls
WHERE number NOT IN (SELECT number FROM ignored_numbers)
ORDER BY timestamp ASC
`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AggregateRow
	for rows.Next() {
		var row AggregateRow
		var code sql.NullString
		if err := rows.Scan(&row.Number, &row.Timestamp, &code); err != nil {
			return nil, err
		}
		if code.Valid {
			c := code.String
			row.Code = &c
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
