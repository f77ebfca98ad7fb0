package messages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *AudioCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAudioCache(rdb, time.Minute)
}

func TestAudioCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo, newTestCache(t))

	if err := repo.SetAudio(ctx, "42", []byte("mp3-bytes"), "a.mp3", Options{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i := 0; i < 2; i++ {
		audio, err := svc.ResponseAudio(ctx, "42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Equal(audio, []byte("mp3-bytes")) {
			t.Fatalf("expected audio bytes, got %q", audio)
		}
	}
}

func TestAudioCache_WriteInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo, newTestCache(t))

	if err := svc.SetAudio(ctx, "42", []byte("old"), "a.mp3", Options{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResponseAudio(ctx, "42"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Replacing the default changes what unresolved codes map to as well, so
	// the write must be visible to the very next lookup.
	if err := svc.SetAudio(ctx, "42", []byte("new"), "b.mp3", Options{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	audio, err := svc.ResponseAudio(ctx, "42")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(audio, []byte("new")) {
		t.Fatalf("expected fresh audio after write, got %q", audio)
	}
}

func TestAudioCache_DefaultFallbackStaysFresh(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo, newTestCache(t))

	if err := svc.SetAudio(ctx, CodeDefault, []byte("default"), "d.mp3", Options{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Unknown code resolves (and caches) through the default.
	if _, err := svc.ResponseAudio(ctx, "999"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.SetAudio(ctx, CodeDefault, []byte("replaced"), "d2.mp3", Options{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	audio, err := svc.ResponseAudio(ctx, "999")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(audio, []byte("replaced")) {
		t.Fatalf("expected unknown code to see replaced default, got %q", audio)
	}
}
