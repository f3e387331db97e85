package config

import "testing"

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Policy.FetchInterval != DefaultFetchInterval {
		t.Errorf("FetchInterval = %v, want %v", cfg.Policy.FetchInterval, DefaultFetchInterval)
	}
	if cfg.Storage.Backend != DefaultStorageBackend || !cfg.Storage.SQLite.WALMode {
		t.Errorf("Storage = %+v, want sqlite with WAL", cfg.Storage)
	}
	if cfg.Overrides.MaxEntries != DefaultOverrideMaxEntries {
		t.Errorf("MaxEntries = %d", cfg.Overrides.MaxEntries)
	}
	if cfg.Enforcement.FailMode != DefaultFailMode {
		t.Errorf("FailMode = %q", cfg.Enforcement.FailMode)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}
	tr := cfg.Telemetry.Tracing
	if tr.Enabled || tr.Sampler != DefaultTracingSampler || tr.SampleRatio != DefaultTracingRatio || tr.ServiceName != DefaultServiceName {
		t.Errorf("Tracing = %+v", tr)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Storage:   StorageConfig{Backend: "memory"},
		Telemetry: TelemetryConfig{Metrics: MetricsConfig{Path: "/m", Enabled: false}},
	}
	ApplyDefaults(cfg)

	if cfg.Storage.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLite.WALMode {
		t.Error("WALMode defaulted although a backend was chosen")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics re-enabled although a path was set")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	a := Default()
	b := Default()
	ApplyDefaults(b)
	if a.Server.ListenAddress != b.Server.ListenAddress || a.Policy.FetchTimeout != b.Policy.FetchTimeout {
		t.Error("ApplyDefaults is not idempotent")
	}
}
