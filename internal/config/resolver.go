// Package config provides configuration management using the Singleton pattern.
package config

import (
	"strings"

	"github.com/turngate/turngate/internal/domain"
)

// DefaultBasePath is used when no base path is configured.
const DefaultBasePath = "/endpoints"

// Rate-limit fields default independently when the other field is set.
const (
	defaultRateLimitMaxRequests   = 60
	defaultRateLimitWindowSeconds = 60
)

// Resolve turns the raw endpoints configuration into an immutable, routable
// snapshot. It returns nil when the feature is not explicitly enabled or
// when, after filtering, no entry has a non-empty trimmed id.
//
// Resolve is a pure function: no I/O, no shared state between snapshots.
// Call it again after a configuration reload to get a fresh snapshot; the
// previous one is discarded wholesale.
func Resolve(cfg *EndpointsConfig) *domain.EndpointsSnapshot {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	endpoints := make(map[string]*domain.EndpointDefinition)
	for _, entry := range cfg.Entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			// Entries without an id are skipped silently, not rejected.
			continue
		}

		tokens := make(map[string]string)
		for _, tok := range entry.Tokens {
			value := strings.TrimSpace(tok.Value)
			if value == "" {
				continue
			}
			label := tok.Label
			if label == "" {
				label = domain.DefaultTokenLabel
			}
			// Duplicate token values overwrite earlier labels.
			tokens[value] = label
		}

		endpoints[id] = &domain.EndpointDefinition{
			ID:             id,
			Instructions:   entry.Instructions,
			Mode:           resolveMode(entry.Mode),
			Model:          entry.Model,
			Thinking:       entry.Thinking,
			TimeoutSeconds: entry.TimeoutSeconds,
			Tokens:         tokens,
		}
	}

	if len(endpoints) == 0 {
		return nil
	}

	return &domain.EndpointsSnapshot{
		BasePath:  normalizeBasePath(cfg.BasePath),
		RateLimit: resolveRateLimit(cfg.RateLimit),
		Endpoints: endpoints,
	}
}

// resolveMode defaults to sync; only an explicit "async" selects async.
func resolveMode(mode string) domain.Mode {
	if strings.TrimSpace(mode) == string(domain.ModeAsync) {
		return domain.ModeAsync
	}
	return domain.ModeSync
}

// normalizeBasePath forces a leading "/" and strips trailing slashes. A path
// with nothing left after stripping (empty, "/", slashes only) falls back to
// the default, so the result never ends with "/".
func normalizeBasePath(raw string) string {
	path := strings.TrimSpace(raw)
	path = strings.TrimRight(path, "/")
	if path == "" {
		return DefaultBasePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// resolveRateLimit keeps the observed defaulting behavior: a rate-limit
// object with both fields unset (or zero) disables limiting entirely, while
// each field individually defaults to 60 when the other one is set.
func resolveRateLimit(raw *RateLimitConfig) *domain.RateLimit {
	if raw == nil {
		return nil
	}
	if raw.MaxRequests <= 0 && raw.WindowSeconds <= 0 {
		return nil
	}

	limit := &domain.RateLimit{
		MaxRequests:   raw.MaxRequests,
		WindowSeconds: raw.WindowSeconds,
	}
	if limit.MaxRequests <= 0 {
		limit.MaxRequests = defaultRateLimitMaxRequests
	}
	if limit.WindowSeconds <= 0 {
		limit.WindowSeconds = defaultRateLimitWindowSeconds
	}
	return limit
}
