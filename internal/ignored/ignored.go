// Package ignored holds the numbers excluded from call-log aggregation.
// An ignored number still gets answered and still gets logged; only the
// reporting views skip it.
package ignored

import "context"

type Repository interface {
	Add(ctx context.Context, number string) error
	Remove(ctx context.Context, number string) error
	Contains(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]string, error)
}
