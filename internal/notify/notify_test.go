package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ivr-gateway/internal/settings"
)

func configuredStore(t *testing.T, endpoint string) *settings.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := settings.NewMemoryStore()
	if err := store.Set(ctx, settings.KeyNotifyURL, endpoint); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_ = store.Set(ctx, settings.KeyNotifyExchange, "exch-1")
	_ = store.Set(ctx, settings.KeyNotifyPassword, "s3cret")
	return store
}

func TestWelcomeCall_PostsConfiguredFields(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{
			"exchange": r.PostFormValue("exchange"),
			"password": r.PostFormValue("password"),
			"number":   r.PostFormValue("number"),
		}
	}))
	defer srv.Close()

	n := NewHTTPNotifier(configuredStore(t, srv.URL))
	if err := n.WelcomeCall(context.Background(), "+15551234567"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got["exchange"] != "exch-1" || got["password"] != "s3cret" || got["number"] != "+15551234567" {
		t.Fatalf("unexpected form fields: %+v", got)
	}
}

func TestWelcomeCall_IncompleteConfigIsDisabled(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	_ = store.Set(ctx, settings.KeyNotifyURL, "http://example.invalid/hook")
	// exchange and password missing

	n := NewHTTPNotifier(store)
	if err := n.WelcomeCall(ctx, "+15551234567"); err != nil {
		t.Fatalf("expected disabled feature to be silent, got %v", err)
	}
}

func TestWelcomeCall_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(configuredStore(t, srv.URL))
	if err := n.WelcomeCall(context.Background(), "+15551234567"); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}
