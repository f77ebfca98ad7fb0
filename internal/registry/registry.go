// Package registry holds the set of registered caller-supplied ID numbers.
// Membership only: there is no metadata and no removal; registrations are
// permanent for the lifetime of the store.
package registry

import "context"

type Repository interface {
	Contains(ctx context.Context, id string) (bool, error)

	// Add is idempotent: adding an existing id is a no-op, not an error.
	Add(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}
