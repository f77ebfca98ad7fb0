package calllog

import (
	"context"
	"time"
)

// Repository is the persistence contract for the call log. Rows are only
// appended and annotated, never deleted; retention is somebody else's job.
type Repository interface {
	// RecordStart appends a row for a newly answered call.
	RecordStart(ctx context.Context, number string, ts time.Time, callSID string) error

	// HasEverCalled reports whether any row exists for the number. The engine
	// evaluates this before RecordStart so the answer reflects "never called
	// until now".
	HasEverCalled(ctx context.Context, number string) (bool, error)

	// AttachCode sets the selected code on the row matching the correlation
	// id. Unknown correlation ids are a silent no-op.
	AttachCode(ctx context.Context, callSID, code string) error

	// AttachIDNumber sets the collected id number on the row matching the
	// correlation id. Unknown correlation ids are a silent no-op.
	AttachIDNumber(ctx context.Context, callSID, idNumber string) error

	// ListExcludingIgnored returns the aggregate rows for reporting, ignored
	// numbers filtered out, ordered by timestamp ascending.
	ListExcludingIgnored(ctx context.Context) ([]AggregateRow, error)
}
