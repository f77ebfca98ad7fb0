package calllog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory call log for tests. IgnoredContains, when set,
// supplies the ignored-number filter for ListExcludingIgnored.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64

	IgnoredContains func(number string) bool
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{nextID: 1} }

func (r *MemoryRepo) RecordStart(ctx context.Context, number string, ts time.Time, callSID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		ID:        r.nextID,
		Number:    number,
		Timestamp: ts,
		CallSID:   callSID,
	})
	r.nextID++
	return nil
}

func (r *MemoryRepo) HasEverCalled(ctx context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) AttachCode(ctx context.Context, callSID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].CallSID == callSID {
			c := code
			r.entries[i].Code = &c
		}
	}
	return nil
}

func (r *MemoryRepo) AttachIDNumber(ctx context.Context, callSID, idNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].CallSID == callSID {
			id := idNumber
			r.entries[i].IDNumber = &id
		}
	}
	return nil
}

func (r *MemoryRepo) ListExcludingIgnored(ctx context.Context) ([]AggregateRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AggregateRow
	for _, e := range r.entries {
		if r.IgnoredContains != nil && r.IgnoredContains(e.Number) {
			continue
		}
		out = append(out, AggregateRow{Number: e.Number, Timestamp: e.Timestamp, Code: e.Code})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Entries returns a copy of all rows, for test assertions.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
