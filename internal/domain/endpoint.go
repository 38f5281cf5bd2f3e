// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the gateway.
package domain

// Mode represents the per-endpoint response discipline.
type Mode string

const (
	// ModeSync holds the connection until the turn completes.
	ModeSync Mode = "sync"

	// ModeAsync acknowledges immediately and reports via callback.
	ModeAsync Mode = "async"
)

// DefaultTokenLabel is assigned to tokens configured without a label.
const DefaultTokenLabel = "unnamed"

// EndpointDefinition represents a single named dispatch endpoint.
// Instances are built once per configuration resolve and never mutated.
type EndpointDefinition struct {
	// ID is the unique endpoint identifier used in the request path.
	ID string

	// Instructions is optional text prepended to every dispatched message.
	Instructions string

	// Mode selects sync or async response delivery.
	Mode Mode

	// Model optionally selects the backend model for this endpoint.
	Model string

	// Thinking optionally tunes the runner's reasoning behavior.
	Thinking string

	// TimeoutSeconds is passed through to the task runner unchanged.
	TimeoutSeconds int

	// Tokens maps accepted token values to their labels.
	// An empty map means the endpoint accepts unauthenticated requests.
	Tokens map[string]string
}

// Authenticate checks a presented token against the endpoint's token set.
// It returns the token's label and whether the request is authorized.
// Endpoints with no configured tokens accept every request with no label.
// Matching is exact byte equality via map lookup.
func (e *EndpointDefinition) Authenticate(token string) (string, bool) {
	if len(e.Tokens) == 0 {
		return "", true
	}
	if token == "" {
		return "", false
	}
	label, ok := e.Tokens[token]
	if !ok {
		return "", false
	}
	return label, true
}

// RateLimit holds resolved rate-limit parameters for a snapshot.
type RateLimit struct {
	// MaxRequests is the maximum number of admitted requests per window.
	MaxRequests int

	// WindowSeconds is the sliding-window length.
	WindowSeconds int
}

// EndpointsSnapshot is the immutable, routable form of the endpoints
// configuration. A nil snapshot means the feature is disabled; a non-nil
// snapshot always contains at least one endpoint.
type EndpointsSnapshot struct {
	// BasePath always starts with "/" and never ends with "/".
	BasePath string

	// RateLimit is nil when rate limiting is disabled.
	RateLimit *RateLimit

	// Endpoints maps endpoint id to its definition. Keys are case-sensitive.
	Endpoints map[string]*EndpointDefinition
}

// Lookup returns the endpoint definition for the given id.
func (s *EndpointsSnapshot) Lookup(id string) (*EndpointDefinition, bool) {
	def, ok := s.Endpoints[id]
	return def, ok
}

// EndpointCount returns the number of configured endpoints.
func (s *EndpointsSnapshot) EndpointCount() int {
	if s == nil {
		return 0
	}
	return len(s.Endpoints)
}
