// Package handler provides HTTP handlers for the dispatch gateway.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turngate/turngate/internal/dispatch"
	"github.com/turngate/turngate/internal/domain"
	"github.com/turngate/turngate/internal/ui"
)

// MaxBodyBytes caps the request body at 1 MiB.
const MaxBodyBytes = 1 << 20

// EndpointHandler routes dispatch requests: path match, auth, rate limit,
// body validation, then hand-off to the dispatch engine. Each step
// short-circuits with an HTTP status on failure.
type EndpointHandler struct {
	snapshot *domain.EndpointsSnapshot
	limiter  *domain.RateLimiter
	engine   *dispatch.Engine
	logger   *slog.Logger
	now      func() time.Time
}

// EndpointHandlerOption is a functional option for configuring EndpointHandler.
type EndpointHandlerOption func(*EndpointHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EndpointHandlerOption {
	return func(h *EndpointHandler) {
		h.logger = logger
	}
}

// WithClock overrides the time source used for rate limiting. Used by tests.
func WithClock(now func() time.Time) EndpointHandlerOption {
	return func(h *EndpointHandler) {
		h.now = now
	}
}

// NewEndpointHandler creates an EndpointHandler. The snapshot may be nil
// when the dispatch feature is disabled; Register then registers nothing
// and all requests fall through to other routes.
func NewEndpointHandler(
	snapshot *domain.EndpointsSnapshot,
	limiter *domain.RateLimiter,
	engine *dispatch.Engine,
	opts ...EndpointHandlerOption,
) *EndpointHandler {
	h := &EndpointHandler{
		snapshot: snapshot,
		limiter:  limiter,
		engine:   engine,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register mounts the dispatch routes on the given engine. All methods are
// accepted at registration so the handler itself can answer non-POST
// requests with 405 and an Allow header.
func (h *EndpointHandler) Register(r *gin.Engine) {
	if h.snapshot == nil {
		return
	}

	base := h.snapshot.BasePath
	r.Any(base, h.HandleDispatch)
	r.Any(base+"/*endpointId", h.HandleDispatch)
}

// dispatchPayload is the request body for POST {basePath}/{endpointId}.
type dispatchPayload struct {
	Message     string `json:"message"`
	CallbackURL string `json:"callbackUrl"`
}

// HandleDispatch handles POST {basePath}/{endpointId}.
func (h *EndpointHandler) HandleDispatch(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		h.sendError(c, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// The wildcard param carries its leading slash; strip repeats too, so
	// "//support" still resolves to "support".
	id := strings.TrimLeft(c.Param("endpointId"), "/")
	if id == "" {
		h.sendError(c, http.StatusNotFound, "Endpoint id required in path")
		return
	}

	def, ok := h.snapshot.Lookup(id)
	if !ok {
		h.logger.Info("unknown endpoint requested",
			slog.String("endpoint", id),
			slog.String("client_ip", c.ClientIP()),
		)
		h.sendError(c, http.StatusNotFound, "Unknown endpoint: "+id)
		return
	}
	c.Set("endpoint_id", id)

	tokenLabel, ok := def.Authenticate(extractToken(c))
	if !ok {
		h.sendError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.Set("token_label", tokenLabel)

	if limit := h.snapshot.RateLimit; limit != nil {
		window := time.Duration(limit.WindowSeconds) * time.Second
		if !h.limiter.Admit(id, limit.MaxRequests, window, h.now()) {
			ui.PrintRateLimited(id)
			c.Header("Retry-After", strconv.Itoa(limit.WindowSeconds))
			h.sendError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
	}

	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		h.sendError(c, http.StatusBadRequest, "message is required")
		return
	}

	callbackURL := strings.TrimSpace(payload.CallbackURL)

	// Callback URL presence must match the endpoint's mode exactly.
	if def.Mode == domain.ModeAsync && callbackURL == "" {
		h.sendError(c, http.StatusBadRequest, "Endpoint mode is async — callbackUrl is required")
		return
	}
	if def.Mode == domain.ModeSync && callbackURL != "" {
		h.sendError(c, http.StatusBadRequest, "Endpoint mode is sync — callbackUrl is not supported")
		return
	}

	h.engine.Dispatch(c, def, message, callbackURL, tokenLabel)
}

// readPayload reads and decodes the JSON body, enforcing the 1 MiB cap.
// On failure it writes the error response and returns ok=false.
func (h *EndpointHandler) readPayload(c *gin.Context) (dispatchPayload, bool) {
	var payload dispatchPayload

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.sendError(c, http.StatusRequestEntityTooLarge, "payload too large")
			return payload, false
		}
		h.sendError(c, http.StatusBadRequest, "invalid JSON body")
		return payload, false
	}

	return payload, true
}

// extractToken pulls the presented token from the Authorization header
// (bearer-style) or the token query parameter.
func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(c.Query("token"))
}

// sendError writes the gateway's uniform JSON error shape.
func (h *EndpointHandler) sendError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"ok":    false,
		"error": message,
	})
}

// HandleHealth handles GET /health.
// It reports the dispatch feature state for monitoring.
func (h *EndpointHandler) HandleHealth(c *gin.Context) {
	status := "ok"
	if h.snapshot == nil {
		status = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"endpoints":          h.snapshot.EndpointCount(),
		"rate_limit_buckets": h.limiter.BucketCount(),
	})
}
