package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the audit_events table. Insert-only; no
// update or delete statements exist on purpose.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{DB: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, type, actor_role, ip_address, target, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.DB.ExecContext(ctx, q, e.ID, string(e.Type), e.ActorRole, e.IPAddress, e.Target, e.Message, e.CreatedAt)
	return err
}
