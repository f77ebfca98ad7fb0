package ignored

import (
	"context"
	"testing"
)

func TestAddRemoveContains(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	ok, err := repo.Contains(ctx, "+15550001111")
	if err != nil || ok {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}

	if err := repo.Add(ctx, "+15550001111"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Adding twice is harmless.
	if err := repo.Add(ctx, "+15550001111"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if ok, _ := repo.Contains(ctx, "+15550001111"); !ok {
		t.Fatalf("expected present after add")
	}

	if err := repo.Remove(ctx, "+15550001111"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := repo.Contains(ctx, "+15550001111"); ok {
		t.Fatalf("expected absent after remove")
	}
	// Removing a missing number is a no-op.
	if err := repo.Remove(ctx, "+15550001111"); err != nil {
		t.Fatalf("re-remove: %v", err)
	}
}

func TestListIsSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	for _, n := range []string{"+3", "+1", "+2"} {
		if err := repo.Add(ctx, n); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	out, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0] != "+1" || out[1] != "+2" || out[2] != "+3" {
		t.Fatalf("expected sorted listing, got %v", out)
	}
}
