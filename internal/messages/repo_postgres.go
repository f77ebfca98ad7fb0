package messages

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists coded messages in the coded_messages table.
//
// Per-column lookups intentionally select only their own column; a NULL value
// in an existing row still counts as "row exists" and resolves to the zero
// value, not to the fallback.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) LookupText(ctx context.Context, code string) (string, bool, error) {
	const q = `SELECT text_ FROM coded_messages WHERE code = $1`
	var text sql.NullString
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return text.String, true, nil
}

func (r *PostgresRepo) LookupAudio(ctx context.Context, code string) ([]byte, bool, error) {
	const q = `SELECT audio FROM coded_messages WHERE code = $1`
	var audio []byte
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&audio); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return audio, true, nil
}

func (r *PostgresRepo) LookupFileName(ctx context.Context, code string) (string, bool, error) {
	const q = `SELECT file_name FROM coded_messages WHERE code = $1`
	var name sql.NullString
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return name.String, true, nil
}

func (r *PostgresRepo) LookupIsText(ctx context.Context, code string) (bool, bool, error) {
	const q = `SELECT use_text FROM coded_messages WHERE code = $1`
	var isText bool
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&isText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, nil
		}
		return false, false, err
	}
	return isText, true, nil
}

func (r *PostgresRepo) LookupOptions(ctx context.Context, code string) (Options, bool, error) {
	const q = `SELECT options FROM coded_messages WHERE code = $1`
	var bits int16
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&bits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Options{}, false, nil
		}
		return Options{}, false, err
	}
	return OptionsFromBits(uint8(bits)), true, nil
}

func (r *PostgresRepo) Contains(ctx context.Context, code string) (bool, error) {
	const q = `SELECT 1 FROM coded_messages WHERE code = $1`
	var one int
	if err := r.DB.QueryRowContext(ctx, q, code).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresRepo) Codes(ctx context.Context) ([]string, error) {
	const q = `SELECT code FROM coded_messages ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) List(ctx context.Context) ([]Entry, error) {
	const q = `SELECT code, use_text, COALESCE(text_, ''), COALESCE(file_name, ''), options
FROM coded_messages ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var bits int16
		if err := rows.Scan(&e.Code, &e.IsText, &e.Text, &e.FileName, &bits); err != nil {
			return nil, err
		}
		e.Options = OptionsFromBits(uint8(bits))
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) SetText(ctx context.Context, code, text string, opts Options) error {
	// Replace-or-insert: the whole row is rewritten, clearing any audio.
	const q = `
INSERT INTO coded_messages (code, use_text, text_, audio, file_name, options)
VALUES ($1, TRUE, $2, NULL, NULL, $3)
ON CONFLICT (code)
DO UPDATE SET use_text = TRUE, text_ = EXCLUDED.text_, audio = NULL, file_name = NULL,
              options = EXCLUDED.options
`
	_, err := r.DB.ExecContext(ctx, q, code, text, int16(opts.Bits()))
	return err
}

func (r *PostgresRepo) SetAudio(ctx context.Context, code string, audio []byte, fileName string, opts Options) error {
	const q = `
INSERT INTO coded_messages (code, use_text, text_, audio, file_name, options)
VALUES ($1, FALSE, NULL, $2, $3, $4)
ON CONFLICT (code)
DO UPDATE SET use_text = FALSE, text_ = NULL, audio = EXCLUDED.audio,
              file_name = EXCLUDED.file_name, options = EXCLUDED.options
`
	_, err := r.DB.ExecContext(ctx, q, code, audio, fileName, int16(opts.Bits()))
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, code string) error {
	const q = `DELETE FROM coded_messages WHERE code = $1`
	_, err := r.DB.ExecContext(ctx, q, code)
	return err
}
