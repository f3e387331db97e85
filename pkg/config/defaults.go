package config

import "time"

// Default values for configuration fields.
const (
	// Policy defaults
	DefaultFetchInterval = 15 * time.Minute
	DefaultFetchTimeout  = 10 * time.Second
	DefaultWatchDebounce = 100 * time.Millisecond

	// Storage defaults
	DefaultStorageBackend    = "sqlite"
	DefaultSQLitePath        = "data/warden.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultSQLiteWALMode     = true
	DefaultRedisURL          = "redis://localhost:6379"
	DefaultRedisKey          = "warden:config"
	DefaultRedisDialTimeout  = 2 * time.Second

	// Override defaults
	DefaultOverrideMaxEntries    = 10000
	DefaultOverrideSweepInterval = 5 * time.Minute

	// Enforcement defaults
	DefaultBlockPageURL = "warden://blocked"
	DefaultFailMode     = "open"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8470"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = int64(64 * 1024)

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "warden"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
	DefaultServiceName      = "warden"
	DefaultTracingTimeout   = 10 * time.Second
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Policy defaults
	if cfg.Policy.FetchInterval == 0 {
		cfg.Policy.FetchInterval = DefaultFetchInterval
	}
	if cfg.Policy.FetchTimeout == 0 {
		cfg.Policy.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Policy.WatchDebounce == 0 {
		cfg.Policy.WatchDebounce = DefaultWatchDebounce
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
		// WALMode is a bool, so only default it together with the backend
		cfg.Storage.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Storage.Redis.URL == "" {
		cfg.Storage.Redis.URL = DefaultRedisURL
	}
	if cfg.Storage.Redis.Key == "" {
		cfg.Storage.Redis.Key = DefaultRedisKey
	}
	if cfg.Storage.Redis.DialTimeout == 0 {
		cfg.Storage.Redis.DialTimeout = DefaultRedisDialTimeout
	}

	// Override defaults
	if cfg.Overrides.MaxEntries == 0 {
		cfg.Overrides.MaxEntries = DefaultOverrideMaxEntries
	}
	if cfg.Overrides.SweepInterval == 0 {
		cfg.Overrides.SweepInterval = DefaultOverrideSweepInterval
	}

	// Enforcement defaults
	if cfg.Enforcement.BlockPageURL == "" {
		cfg.Enforcement.BlockPageURL = DefaultBlockPageURL
	}
	if cfg.Enforcement.FailMode == "" {
		cfg.Enforcement.FailMode = DefaultFailMode
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
		// Enabled is a bool, so only default it together with the path
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
		// SampleRatio may legitimately be 0, so only default it together with the sampler
		if cfg.Telemetry.Tracing.SampleRatio == 0 {
			cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
		}
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
