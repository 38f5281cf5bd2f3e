// Package dispatch resolves endpoint mode, invokes the task runner, and
// governs response delivery (immediate reply vs. deferred callback).
package dispatch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/turngate/turngate/internal/domain"
	"github.com/turngate/turngate/internal/runner"
	"github.com/turngate/turngate/internal/ui"
)

// Engine executes validated dispatch requests. In sync mode it holds the
// connection until the runner resolves; in async mode it acknowledges with
// 202 and runs the turn in a detached goroutine whose outcome triggers
// exactly one callback-delivery attempt.
type Engine struct {
	runner    runner.TurnRunner
	deliverer *CallbackDeliverer
	logger    *slog.Logger
	newRunID  func() string
}

// EngineOption is a functional option for configuring Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunIDFunc overrides run-id generation. Used by tests.
func WithRunIDFunc(fn func() string) EngineOption {
	return func(e *Engine) {
		e.newRunID = fn
	}
}

// NewEngine creates a dispatch engine backed by the given task runner and
// callback deliverer.
func NewEngine(tr runner.TurnRunner, deliverer *CallbackDeliverer, opts ...EngineOption) *Engine {
	e := &Engine{
		runner:    tr,
		deliverer: deliverer,
		logger:    slog.Default(),
		newRunID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Dispatch resolves the endpoint's mode and writes the HTTP response.
// Callers must have validated the mode/callback pairing already: async
// requires a callback URL, sync forbids one.
func (e *Engine) Dispatch(c *gin.Context, def *domain.EndpointDefinition, message, callbackURL, tokenLabel string) {
	req := runner.TurnRequest{
		EndpointID:     def.ID,
		Message:        message,
		Instructions:   def.Instructions,
		Model:          def.Model,
		Thinking:       def.Thinking,
		TimeoutSeconds: def.TimeoutSeconds,
		CallbackURL:    callbackURL,
		TokenLabel:     tokenLabel,
	}

	if def.Mode == domain.ModeAsync {
		e.dispatchAsync(c, req)
		return
	}
	e.dispatchSync(c, req)
}

// dispatchSync awaits the runner and writes 200 or 500. A runner failure is
// terminal for the request; nothing is retried.
func (e *Engine) dispatchSync(c *gin.Context, req runner.TurnRequest) {
	result, err := e.runner.RunTurn(c.Request.Context(), req)
	if err != nil {
		e.logger.Warn("turn runner failed",
			slog.String("endpoint", req.EndpointID),
			slog.String("mode", "sync"),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	e.logger.Info("turn completed",
		slog.String("endpoint", req.EndpointID),
		slog.String("mode", "sync"),
		slog.String("run_id", result.RunID),
	)
	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"reply": result.Reply,
	})
}

// dispatchAsync acknowledges immediately with a fresh run id, then runs the
// turn detached from the request lifecycle. The caller only ever observes
// the outcome through the callback.
func (e *Engine) dispatchAsync(c *gin.Context, req runner.TurnRequest) {
	runID := e.newRunID()

	c.JSON(http.StatusAccepted, gin.H{
		"ok":    true,
		"runId": runID,
	})
	ui.PrintRunAccepted(req.EndpointID, runID)

	go e.runDetached(runID, req)
}

// runDetached executes the turn and attempts callback delivery exactly once.
// The original connection has already completed, so every failure here is
// logged and otherwise swallowed. No cancellation reaches the runner; the
// background context is deliberate.
func (e *Engine) runDetached(runID string, req runner.TurnRequest) {
	ctx := context.Background()

	payload := CallbackPayload{RunID: runID, Status: "ok"}
	result, err := e.runner.RunTurn(ctx, req)
	if err != nil {
		e.logger.Warn("turn runner failed",
			slog.String("endpoint", req.EndpointID),
			slog.String("mode", "async"),
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		payload.Status = "error"
		payload.Error = err.Error()
	} else {
		payload.Reply = result.Reply
	}

	if req.CallbackURL == "" {
		return
	}

	if err := e.deliverer.Deliver(ctx, req.CallbackURL, payload); err != nil {
		e.logger.Warn("callback delivery failed",
			slog.String("endpoint", req.EndpointID),
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return
	}

	e.logger.Info("callback delivered",
		slog.String("endpoint", req.EndpointID),
		slog.String("run_id", runID),
		slog.String("status", payload.Status),
	)
}
