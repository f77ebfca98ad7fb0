package registry

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory registry for tests.
type MemoryRepo struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{ids: make(map[string]struct{})}
}

func (r *MemoryRepo) Contains(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok, nil
}

func (r *MemoryRepo) Add(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = struct{}{}
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids), nil
}
