// Package settings is the persisted key-value store for runtime-mutable
// configuration: values admins change while the service runs, as opposed to
// env config read once at startup. Consumers read fresh on every use so an
// admin edit takes effect on the next call.
package settings

import "context"

// Known setting names.
const (
	KeyIDPattern      = "id_pattern"
	KeyNotifyURL      = "notify_url"
	KeyNotifyExchange = "notify_exchange"
	KeyNotifyPassword = "notify_password"
)

type Store interface {
	// Get returns the value and whether the key is set.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set replaces the value (insert-or-replace).
	Set(ctx context.Context, name, value string) error
}
