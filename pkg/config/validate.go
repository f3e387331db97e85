package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "policy.internal_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateOverrides(&cfg.Overrides)...)
	errs = append(errs, validateEnforcement(&cfg.Enforcement)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	if cfg.InternalURL == "" && cfg.ExternalURL == "" {
		errs = append(errs, FieldError{
			Field:   "policy.internal_url",
			Message: "at least one of internal_url or external_url is required",
		})
	}
	if msg := checkSourceLocation(cfg.InternalURL); msg != "" {
		errs = append(errs, FieldError{Field: "policy.internal_url", Message: msg})
	}
	if msg := checkSourceLocation(cfg.ExternalURL); msg != "" {
		errs = append(errs, FieldError{Field: "policy.external_url", Message: msg})
	}

	if cfg.FetchInterval < time.Second {
		errs = append(errs, FieldError{
			Field:   "policy.fetch_interval",
			Message: "fetch interval must be at least 1s",
		})
	}
	if cfg.FetchTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "policy.fetch_timeout",
			Message: "fetch timeout must be positive",
		})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "policy.watch_debounce",
			Message: "watch debounce must be non-negative",
		})
	}

	return errs
}

// checkSourceLocation accepts http(s) and file URLs and bare paths.
func checkSourceLocation(loc string) string {
	if loc == "" {
		return ""
	}
	u, err := url.Parse(loc)
	if err != nil {
		return fmt.Sprintf("invalid location %q: %v", loc, err)
	}
	switch u.Scheme {
	case "", "file":
		return ""
	case "http", "https":
		if u.Host == "" {
			return fmt.Sprintf("invalid location %q: missing host", loc)
		}
		return ""
	default:
		return fmt.Sprintf("unsupported scheme %q: must be http, https or file", u.Scheme)
	}
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.path",
				Message: "path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.busy_timeout",
				Message: "busy timeout must be non-negative",
			})
		}
	case "redis":
		u, err := url.Parse(cfg.Redis.URL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, FieldError{
				Field:   "storage.redis.url",
				Message: fmt.Sprintf("invalid redis url %q: must use redis:// or rediss://", cfg.Redis.URL),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'sqlite', or 'redis'", cfg.Backend),
		})
	}

	return errs
}

func validateOverrides(cfg *OverridesConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxEntries < 0 {
		errs = append(errs, FieldError{
			Field:   "overrides.max_entries",
			Message: "max entries must be non-negative",
		})
	}
	if cfg.SweepInterval < time.Second {
		errs = append(errs, FieldError{
			Field:   "overrides.sweep_interval",
			Message: "sweep interval must be at least 1s",
		})
	}

	return errs
}

func validateEnforcement(cfg *EnforcementConfig) []FieldError {
	var errs []FieldError

	if cfg.BlockPageURL == "" {
		errs = append(errs, FieldError{
			Field:   "enforcement.block_page_url",
			Message: "block page url is required",
		})
	} else if _, err := url.Parse(cfg.BlockPageURL); err != nil {
		errs = append(errs, FieldError{
			Field:   "enforcement.block_page_url",
			Message: fmt.Sprintf("invalid url: %v", err),
		})
	}

	if cfg.FailMode != "open" && cfg.FailMode != "closed" {
		errs = append(errs, FieldError{
			Field:   "enforcement.fail_mode",
			Message: fmt.Sprintf("invalid fail mode %q: must be 'open' or 'closed'", cfg.FailMode),
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0 and 1",
			})
		}
	}

	return errs
}
