package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Policy.InternalURL = "https://policy.example.com/internal.json"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error = %T, want ValidationError", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("len(Errors) = %d, want several", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		errorField string
	}{
		{
			name:       "external only is accepted",
			mutate:     func(c *Config) { c.Policy.InternalURL = ""; c.Policy.ExternalURL = "https://x.example.com/p.json" },
			errorField: "",
		},
		{
			name:       "file path source",
			mutate:     func(c *Config) { c.Policy.InternalURL = "./policy.json" },
			errorField: "",
		},
		{
			name:       "no sources",
			mutate:     func(c *Config) { c.Policy.InternalURL = "" },
			errorField: "policy.internal_url",
		},
		{
			name:       "unsupported scheme",
			mutate:     func(c *Config) { c.Policy.ExternalURL = "ftp://x.example.com/p.json" },
			errorField: "policy.external_url",
		},
		{
			name:       "http without host",
			mutate:     func(c *Config) { c.Policy.InternalURL = "http:///p.json" },
			errorField: "policy.internal_url",
		},
		{
			name:       "fetch interval too short",
			mutate:     func(c *Config) { c.Policy.FetchInterval = 10 * time.Millisecond },
			errorField: "policy.fetch_interval",
		},
		{
			name:       "tracing sampler",
			mutate:     func(c *Config) { c.Telemetry.Tracing.Enabled = true; c.Telemetry.Tracing.Sampler = "sometimes" },
			errorField: "telemetry.tracing.sampler",
		},
		{
			name:       "tracing ratio",
			mutate:     func(c *Config) { c.Telemetry.Tracing.Enabled = true; c.Telemetry.Tracing.SampleRatio = 1.5 },
			errorField: "telemetry.tracing.sample_ratio",
		},
		{
			name:       "tracing disabled ignores sampler",
			mutate:     func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" },
			errorField: "",
		},
		{
			name:       "unknown backend",
			mutate:     func(c *Config) { c.Storage.Backend = "etcd" },
			errorField: "storage.backend",
		},
		{
			name:       "redis url scheme",
			mutate:     func(c *Config) { c.Storage.Backend = "redis"; c.Storage.Redis.URL = "http://cache" },
			errorField: "storage.redis.url",
		},
		{
			name:       "negative max entries",
			mutate:     func(c *Config) { c.Overrides.MaxEntries = -1 },
			errorField: "overrides.max_entries",
		},
		{
			name:       "bad fail mode",
			mutate:     func(c *Config) { c.Enforcement.FailMode = "maybe" },
			errorField: "enforcement.fail_mode",
		},
		{
			name:       "empty block page",
			mutate:     func(c *Config) { c.Enforcement.BlockPageURL = "" },
			errorField: "enforcement.block_page_url",
		},
		{
			name:       "zero body limit",
			mutate:     func(c *Config) { c.Server.MaxBodyBytes = 0 },
			errorField: "server.max_body_bytes",
		},
		{
			name:       "bad log level",
			mutate:     func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			errorField: "telemetry.logging.level",
		},
		{
			name:       "metrics path without slash",
			mutate:     func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			errorField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error on %s", tt.errorField)
			}
			if !strings.Contains(err.Error(), tt.errorField) {
				t.Errorf("error %q does not mention %s", err.Error(), tt.errorField)
			}
		})
	}
}
