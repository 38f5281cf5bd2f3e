// Package runner provides the task-runner integration for executing agent
// turns. The gateway treats the runner as an opaque external capability
// behind the TurnRunner interface.
package runner

import (
	"context"
)

// TurnRequest is the work descriptor for one agent turn.
type TurnRequest struct {
	// EndpointID identifies the endpoint the turn was dispatched from.
	EndpointID string `json:"endpointId"`

	// Message is the trimmed, non-empty caller message.
	Message string `json:"message"`

	// Instructions is optional endpoint text prepended to the message.
	Instructions string `json:"instructions,omitempty"`

	// Model optionally selects the backend model.
	Model string `json:"model,omitempty"`

	// Thinking optionally tunes the runner's reasoning behavior.
	Thinking string `json:"thinking,omitempty"`

	// TimeoutSeconds is enforced by the runner, not by the gateway.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`

	// CallbackURL is forwarded for the runner's bookkeeping in async mode.
	CallbackURL string `json:"callbackUrl,omitempty"`

	// TokenLabel identifies the credential the caller authenticated with.
	TokenLabel string `json:"tokenLabel,omitempty"`
}

// TurnResult is the successful outcome of one run.
type TurnResult struct {
	// RunID is the runner-assigned identifier for this turn.
	RunID string `json:"runId"`

	// Reply is the textual result of the turn.
	Reply string `json:"reply,omitempty"`
}

// TurnRunner executes one agent turn. Implementations return a TurnResult
// or an error; the dispatch engine treats any error as a generic failure
// with no classification and never retries.
type TurnRunner interface {
	// RunTurn executes the turn described by req.
	RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error)
}
