// Package dispatch resolves endpoint mode, invokes the task runner, and
// governs response delivery (immediate reply vs. deferred callback).
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultCallbackTimeout bounds a callback POST so unresponsive receivers
// cannot hold connections open indefinitely.
const DefaultCallbackTimeout = 30 * time.Second

// CallbackPayload is the JSON body posted to a caller-supplied callback URL.
type CallbackPayload struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CallbackDeliverer performs best-effort, single-attempt delivery of a run's
// outcome. No retries, no backoff.
type CallbackDeliverer struct {
	httpClient *http.Client
}

// CallbackDelivererOption is a functional option for configuring CallbackDeliverer.
type CallbackDelivererOption func(*CallbackDeliverer)

// WithCallbackHTTPClient sets a custom HTTP client.
func WithCallbackHTTPClient(client *http.Client) CallbackDelivererOption {
	return func(d *CallbackDeliverer) {
		d.httpClient = client
	}
}

// WithCallbackTimeout sets the HTTP client timeout.
func WithCallbackTimeout(timeout time.Duration) CallbackDelivererOption {
	return func(d *CallbackDeliverer) {
		d.httpClient.Timeout = timeout
	}
}

// NewCallbackDeliverer creates a CallbackDeliverer.
func NewCallbackDeliverer(opts ...CallbackDelivererOption) *CallbackDeliverer {
	d := &CallbackDeliverer{
		httpClient: &http.Client{
			Timeout: DefaultCallbackTimeout,
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Deliver POSTs the payload to url in a single attempt. A network error or
// non-2xx status is returned to the caller; the gateway has no mechanism to
// notify the original requester either way.
func (d *CallbackDeliverer) Deliver(ctx context.Context, url string, payload CallbackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute callback request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback receiver returned status %d", resp.StatusCode)
	}

	return nil
}
