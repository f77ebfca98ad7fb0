package audit

import "time"

// Event is an immutable, append-only audit log record of a console mutation.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block a mutation on audit
//   failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorRole is the authenticated role causing the event.
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target is the mutated object: a message code, a phone number, or a
	// settings key, depending on Type.
	Target string `json:"target,omitempty" db:"target"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeMessageSet    EventType = "message_set"
	EventTypeMessageDelete EventType = "message_delete"
	EventTypeHoursReplace  EventType = "hours_replace"
	EventTypeIgnoredAdd    EventType = "ignored_add"
	EventTypeIgnoredRemove EventType = "ignored_remove"
	EventTypeSettingsSet   EventType = "settings_set"
)
