// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"sync"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Endpoints dispatch configuration
	Endpoints EndpointsConfig `json:"endpoints" mapstructure:"endpoints"`

	// Task runner configuration
	Runner RunnerConfig `json:"runner" mapstructure:"runner"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// EndpointsConfig holds the raw endpoints dispatch configuration.
// It is turned into a domain.EndpointsSnapshot by Resolve before use.
type EndpointsConfig struct {
	// Enabled must be explicitly true for the dispatch feature to activate.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// BasePath is the path prefix for all dispatch routes.
	BasePath string `json:"base_path" mapstructure:"base_path"`

	// RateLimit is optional; absent disables rate limiting.
	RateLimit *RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`

	// Entries is the list of configured endpoints.
	Entries []EndpointEntry `json:"entries" mapstructure:"entries"`
}

// RateLimitConfig holds raw per-endpoint rate-limit settings.
type RateLimitConfig struct {
	// MaxRequests is the maximum number of requests per window.
	MaxRequests int `json:"max_requests" mapstructure:"max_requests"`

	// WindowSeconds is the sliding-window length in seconds.
	WindowSeconds int `json:"window_seconds" mapstructure:"window_seconds"`
}

// EndpointEntry is a single raw endpoint definition.
type EndpointEntry struct {
	// ID is the endpoint identifier used in the request path.
	ID string `json:"id" mapstructure:"id"`

	// Instructions is optional text prepended to every dispatched message.
	Instructions string `json:"instructions" mapstructure:"instructions"`

	// Mode is "sync" or "async" (default "sync").
	Mode string `json:"mode" mapstructure:"mode"`

	// Model optionally selects the backend model.
	Model string `json:"model" mapstructure:"model"`

	// Thinking optionally tunes the runner's reasoning behavior.
	Thinking string `json:"thinking" mapstructure:"thinking"`

	// TimeoutSeconds is passed through to the task runner.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`

	// Tokens is the list of accepted tokens for this endpoint.
	// An empty list means the endpoint accepts unauthenticated requests.
	Tokens []TokenEntry `json:"tokens" mapstructure:"tokens"`
}

// TokenEntry is a raw (value, label) token pair.
type TokenEntry struct {
	// Value is the token presented by callers.
	Value string `json:"value" mapstructure:"value"`

	// Label identifies the token in logs and dispatch descriptors.
	Label string `json:"label" mapstructure:"label"`
}

// RunnerConfig holds task-runner client configuration.
type RunnerConfig struct {
	// BaseURL is the base endpoint of the external task runner service.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// TimeoutSeconds bounds each runner HTTP call at the client. Zero keeps
	// the client default; turn-level timeouts are the runner's responsibility.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the singleton Configuration instance.
// It initializes the configuration on first call using the default config path.
// Returns an error if configuration loading fails.
func GetConfig() (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig("")
	})
	return configInstance, configErr
}

// GetConfigWithPath returns the singleton Configuration instance with a custom config path.
// This should be used when you need to specify a non-default configuration file path.
func GetConfigWithPath(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// MustGetConfig returns the singleton Configuration instance.
// It panics if the configuration cannot be loaded.
func MustGetConfig() *Configuration {
	cfg, err := GetConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
// Endpoint entries with empty ids are not errors; the resolver skips them silently.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Endpoints.Enabled && c.Runner.BaseURL == "" {
		validationErrors = append(validationErrors, "runner.base_url is required when endpoints are enabled")
	}

	for i, entry := range c.Endpoints.Entries {
		if entry.Mode != "" && entry.Mode != "sync" && entry.Mode != "async" {
			validationErrors = append(validationErrors, fmt.Sprintf(
				"endpoints.entries[%d].mode '%s' is invalid, must be sync or async", i, entry.Mode))
		}
		if entry.TimeoutSeconds < 0 {
			validationErrors = append(validationErrors, fmt.Sprintf(
				"endpoints.entries[%d].timeout_seconds must not be negative", i))
		}
	}

	if c.Endpoints.RateLimit != nil {
		if c.Endpoints.RateLimit.MaxRequests < 0 {
			validationErrors = append(validationErrors, "endpoints.rate_limit.max_requests must not be negative")
		}
		if c.Endpoints.RateLimit.WindowSeconds < 0 {
			validationErrors = append(validationErrors, "endpoints.rate_limit.window_seconds must not be negative")
		}
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
