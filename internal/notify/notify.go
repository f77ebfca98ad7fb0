// Package notify delivers the best-effort welcome notification sent when a
// number calls for the first time ever. Delivery is one bounded attempt, no
// retry, and the outcome is never surfaced to the caller.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ivr-gateway/internal/settings"
)

// Notifier is the engine-facing contract. Implementations must treat an
// incomplete configuration as "feature disabled" and return nil.
type Notifier interface {
	WelcomeCall(ctx context.Context, number string) error
}

// HTTPNotifier posts a form to the configured endpoint. The endpoint, the
// shared exchange identifier and the shared password come from the settings
// store on every send, so admin edits apply to the next call.
type HTTPNotifier struct {
	Settings settings.Store
	Client   *http.Client
	Timeout  time.Duration
}

func NewHTTPNotifier(store settings.Store) *HTTPNotifier {
	return &HTTPNotifier{
		Settings: store,
		Client:   &http.Client{},
		Timeout:  5 * time.Second,
	}
}

func (n *HTTPNotifier) WelcomeCall(ctx context.Context, number string) error {
	endpoint, exchange, password, ok, err := n.params(ctx)
	if err != nil {
		return err
	}
	if !ok {
		// Not fully configured: feature disabled, silently skipped.
		return nil
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{
		"exchange": {exchange},
		"password": {password},
		"number":   {number},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: welcome endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func (n *HTTPNotifier) params(ctx context.Context) (endpoint, exchange, password string, ok bool, err error) {
	endpoint, okURL, err := n.Settings.Get(ctx, settings.KeyNotifyURL)
	if err != nil {
		return "", "", "", false, err
	}
	exchange, okExch, err := n.Settings.Get(ctx, settings.KeyNotifyExchange)
	if err != nil {
		return "", "", "", false, err
	}
	password, okPass, err := n.Settings.Get(ctx, settings.KeyNotifyPassword)
	if err != nil {
		return "", "", "", false, err
	}
	ok = okURL && okExch && okPass && endpoint != "" && exchange != "" && password != ""
	return endpoint, exchange, password, ok, nil
}
