package config

import "time"

// Config is the root configuration structure for the Warden enforcer.
// It contains all configuration sections for the policy feed, snapshot
// storage, override bookkeeping, enforcement, the host bridge and telemetry.
type Config struct {
	// Policy contains the policy feed locations and refresh cadence.
	Policy PolicyConfig `yaml:"policy"`

	// Storage selects and configures the backend that persists the last
	// good policy snapshot.
	Storage StorageConfig `yaml:"storage"`

	// Overrides bounds the disclaimer and sticky-cancellation stores.
	Overrides OverridesConfig `yaml:"overrides"`

	// Enforcement controls what happens when a navigation is blocked or
	// evaluation cannot run.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// Server contains the host bridge HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains the locations of the two policy sources.
type PolicyConfig struct {
	// InternalURL is the location of the internal (organization) policy.
	// Accepts http(s):// URLs, file:// URLs and plain file paths.
	InternalURL string `yaml:"internal_url"`

	// ExternalURL is the location of the external policy. Its values win
	// over the internal policy on conflict. When equal to InternalURL the
	// external fetch is skipped.
	ExternalURL string `yaml:"external_url"`

	// FetchInterval is the period between scheduled refreshes.
	// Default: 15m
	FetchInterval time.Duration `yaml:"fetch_interval"`

	// FetchTimeout bounds a single source fetch.
	// Default: 10s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Watch triggers a refresh whenever a file source changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce coalesces bursts of file events.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", "redis".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis configures the Redis backend.
	Redis RedisConfig `yaml:"redis"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/warden.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// RedisConfig contains Redis-specific configuration.
type RedisConfig struct {
	// URL is the redis:// connection URL.
	// Default: "redis://localhost:6379"
	URL string `yaml:"url"`

	// Key is the key the snapshot is stored under.
	// Default: "warden:config"
	Key string `yaml:"key"`

	// DialTimeout bounds the initial connection check.
	// Default: 2s
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// OverridesConfig bounds the override stores.
type OverridesConfig struct {
	// MaxEntries caps each override store. When full, the entry closest to
	// expiry is evicted.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// SweepInterval is the period of the expired-entry sweep.
	// Default: 5m
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// EnforcementConfig controls blocking behavior.
type EnforcementConfig struct {
	// BlockPageURL is the redirect target for blocked navigations.
	// Default: "warden://blocked"
	BlockPageURL string `yaml:"block_page_url"`

	// FailMode is "open" (no actions when evaluation cannot run) or
	// "closed" (block).
	// Default: "open"
	FailMode string `yaml:"fail_mode"`
}

// ServerConfig contains configuration for the host bridge.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8470"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// AllowedOrigins lists the origins accepted on the WebSocket channel.
	// Empty accepts same-origin requests only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry trace export configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// FullURLs logs navigation URLs with their query and fragment. When
	// false those parts are replaced with a marker.
	// Default: false
	FullURLs bool `yaml:"full_urls"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes all metric names.
	// Default: "warden"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry trace export configuration.
type TracingConfig struct {
	// Enabled installs an SDK tracer provider. When false spans are no-ops.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler is one of "always", "never", "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept with the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "warden"
	ServiceName string `yaml:"service_name"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
