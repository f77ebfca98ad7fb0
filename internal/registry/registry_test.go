package registry

import (
	"context"
	"testing"
)

func TestAdd_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	if ok, _ := r.Contains(ctx, "12345"); ok {
		t.Fatalf("expected empty registry")
	}

	if err := r.Add(ctx, "12345"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := r.Add(ctx, "12345"); err != nil {
		t.Fatalf("expected repeated add to be a no-op, got %v", err)
	}

	ok, err := r.Contains(ctx, "12345")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected membership after add")
	}

	n, err := r.Count(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected count 1 after duplicate add, got %d", n)
	}
}
