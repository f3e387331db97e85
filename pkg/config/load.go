package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WARDEN_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention WARDEN_SECTION_FIELD (e.g., WARDEN_POLICY_INTERNAL_URL).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Unparseable numeric, boolean and duration values are ignored.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return getenv(EnvPrefix + name)
	}
	setString := func(name string, dst *string) {
		if val := env(name); val != "" {
			*dst = val
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if val := env(name); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(name string, dst *bool) {
		if val := env(name); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	// Policy overrides
	setString("POLICY_INTERNAL_URL", &cfg.Policy.InternalURL)
	setString("POLICY_EXTERNAL_URL", &cfg.Policy.ExternalURL)
	setDuration("POLICY_FETCH_INTERVAL", &cfg.Policy.FetchInterval)
	setDuration("POLICY_FETCH_TIMEOUT", &cfg.Policy.FetchTimeout)
	setBool("POLICY_WATCH", &cfg.Policy.Watch)

	// Storage overrides
	setString("STORAGE_BACKEND", &cfg.Storage.Backend)
	setString("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setString("STORAGE_REDIS_URL", &cfg.Storage.Redis.URL)
	setString("STORAGE_REDIS_KEY", &cfg.Storage.Redis.Key)

	// Override store overrides
	if val := env("OVERRIDES_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Overrides.MaxEntries = i
		}
	}
	setDuration("OVERRIDES_SWEEP_INTERVAL", &cfg.Overrides.SweepInterval)

	// Enforcement overrides
	setString("ENFORCEMENT_BLOCK_PAGE_URL", &cfg.Enforcement.BlockPageURL)
	if val := env("ENFORCEMENT_FAIL_MODE"); val != "" {
		cfg.Enforcement.FailMode = strings.ToLower(val)
	}

	// Server overrides
	setString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	if val := env("SERVER_ALLOWED_ORIGINS"); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	// Telemetry overrides
	setString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	setBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	setString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	setBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
}
