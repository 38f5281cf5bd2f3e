// Package runner provides the task-runner integration for executing agent turns.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout for runner calls.
	DefaultTimeout = 10 * time.Minute

	// turnsPath is the runner's turn-execution endpoint.
	turnsPath = "/v1/turns"
)

// HTTPRunner implements TurnRunner against an external agent-runner service
// speaking JSON over HTTP.
type HTTPRunner struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPRunnerOption is a functional option for configuring HTTPRunner.
type HTTPRunnerOption func(*HTTPRunner)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPRunnerOption {
	return func(r *HTTPRunner) {
		r.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) HTTPRunnerOption {
	return func(r *HTTPRunner) {
		r.httpClient.Timeout = timeout
	}
}

// NewHTTPRunner creates an HTTPRunner for the given runner base URL.
func NewHTTPRunner(baseURL string, opts ...HTTPRunnerOption) *HTTPRunner {
	r := &HTTPRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// turnResponse is the runner's wire reply.
type turnResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
}

// runnerErrorResponse is the runner's error body on non-2xx replies.
type runnerErrorResponse struct {
	Error string `json:"error"`
}

// RunTurn posts the work descriptor to the runner and decodes the outcome.
// A runner reply with status "error" is surfaced as an error so callers see
// a single tagged success-or-failure boundary.
func (r *HTTPRunner) RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to marshal turn request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+turnsPath, bytes.NewReader(body))
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to execute turn request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to read runner response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var runnerErr runnerErrorResponse
		if err := json.Unmarshal(respBody, &runnerErr); err == nil && runnerErr.Error != "" {
			return TurnResult{}, fmt.Errorf("runner error [%d]: %s", resp.StatusCode, runnerErr.Error)
		}
		return TurnResult{}, fmt.Errorf("runner error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var turn turnResponse
	if err := json.Unmarshal(respBody, &turn); err != nil {
		return TurnResult{}, fmt.Errorf("failed to unmarshal runner response: %w", err)
	}

	if turn.Status != "" && turn.Status != "ok" {
		msg := turn.Error
		if msg == "" {
			msg = fmt.Sprintf("runner reported status %q", turn.Status)
		}
		return TurnResult{}, fmt.Errorf("turn failed: %s", msg)
	}

	return TurnResult{
		RunID: turn.RunID,
		Reply: turn.Reply,
	}, nil
}
