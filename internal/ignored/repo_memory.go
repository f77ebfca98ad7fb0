package ignored

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory ignored set for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	numbers map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{numbers: make(map[string]struct{})}
}

func (r *MemoryRepo) Add(ctx context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numbers[number] = struct{}{}
	return nil
}

func (r *MemoryRepo) Remove(ctx context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.numbers, number)
	return nil
}

func (r *MemoryRepo) Contains(ctx context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.numbers[number]
	return ok, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.numbers))
	for n := range r.numbers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
