package hours

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory schedule store for tests.
type MemoryRepo struct {
	mu sync.Mutex
	s  Schedule
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Load(ctx context.Context) (Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out Schedule
	for i, w := range r.s {
		if w != nil {
			cp := *w
			out[i] = &cp
		}
	}
	return out, nil
}

func (r *MemoryRepo) Replace(ctx context.Context, s Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = s
	return nil
}
