package messages

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development. It is not intended for production use.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]memoryRow
}

type memoryRow struct {
	isText   bool
	text     string
	audio    []byte
	fileName string
	opts     Options
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[string]memoryRow)}
}

func (r *MemoryRepo) LookupText(ctx context.Context, code string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[code]
	return row.text, ok, nil
}

func (r *MemoryRepo) LookupAudio(ctx context.Context, code string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[code]
	return row.audio, ok, nil
}

func (r *MemoryRepo) LookupFileName(ctx context.Context, code string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[code]
	return row.fileName, ok, nil
}

func (r *MemoryRepo) LookupIsText(ctx context.Context, code string) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[code]
	return row.isText, ok, nil
}

func (r *MemoryRepo) LookupOptions(ctx context.Context, code string) (Options, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[code]
	return row.opts, ok, nil
}

func (r *MemoryRepo) Contains(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[code]
	return ok, nil
}

func (r *MemoryRepo) Codes(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for code := range r.rows {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Entry, error) {
	codes, _ := r.Codes(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(codes))
	for _, code := range codes {
		row := r.rows[code]
		out = append(out, Entry{
			Code:     code,
			IsText:   row.isText,
			Text:     row.text,
			FileName: row.fileName,
			Options:  row.opts,
		})
	}
	return out, nil
}

func (r *MemoryRepo) SetText(ctx context.Context, code, text string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[code] = memoryRow{isText: true, text: text, opts: opts}
	return nil
}

func (r *MemoryRepo) SetAudio(ctx context.Context, code string, audio []byte, fileName string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[code] = memoryRow{isText: false, audio: audio, fileName: fileName, opts: opts}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, code)
	return nil
}
