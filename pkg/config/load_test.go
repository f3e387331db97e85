package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
policy:
  internal_url: "https://policy.example.com/internal.json"
  external_url: "https://policy.example.com/external.json"
  fetch_interval: "30m"

storage:
  backend: "redis"
  redis:
    url: "redis://cache:6379/2"

enforcement:
  fail_mode: "closed"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if cfg.Policy.FetchInterval != 30*time.Minute {
		t.Errorf("FetchInterval = %v, want 30m", cfg.Policy.FetchInterval)
	}
	if cfg.Policy.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want default %v", cfg.Policy.FetchTimeout, DefaultFetchTimeout)
	}
	if cfg.Storage.Backend != "redis" || cfg.Storage.Redis.URL != "redis://cache:6379/2" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Redis.Key != DefaultRedisKey {
		t.Errorf("Redis.Key = %q, want %q", cfg.Storage.Redis.Key, DefaultRedisKey)
	}
	if cfg.Enforcement.FailMode != "closed" {
		t.Errorf("FailMode = %q, want closed", cfg.Enforcement.FailMode)
	}
	if cfg.Enforcement.BlockPageURL != DefaultBlockPageURL {
		t.Errorf("BlockPageURL = %q, want %q", cfg.Enforcement.BlockPageURL, DefaultBlockPageURL)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "policy: [unterminated")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("LoadConfig() error = %v, want parse error", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
enforcement:
  fail_mode: "sideways"
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want ValidationError", err)
	}
	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"policy.internal_url", "enforcement.fail_mode"} {
		if !fields[want] {
			t.Errorf("missing field error %q in %v", want, verr.Errors)
		}
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
policy:
  internal_url: "https://policy.example.com/internal.json"
`)

	t.Setenv("WARDEN_POLICY_EXTERNAL_URL", "file:///etc/warden/external.json")
	t.Setenv("WARDEN_POLICY_FETCH_INTERVAL", "2m")
	t.Setenv("WARDEN_POLICY_WATCH", "true")
	t.Setenv("WARDEN_STORAGE_BACKEND", "memory")
	t.Setenv("WARDEN_OVERRIDES_MAX_ENTRIES", "50")
	t.Setenv("WARDEN_ENFORCEMENT_FAIL_MODE", "CLOSED")
	t.Setenv("WARDEN_SERVER_ALLOWED_ORIGINS", "chrome-extension://abc, https://ui.example.com")
	t.Setenv("WARDEN_TELEMETRY_METRICS_ENABLED", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v, want nil", err)
	}

	if cfg.Policy.ExternalURL != "file:///etc/warden/external.json" {
		t.Errorf("ExternalURL = %q", cfg.Policy.ExternalURL)
	}
	if cfg.Policy.FetchInterval != 2*time.Minute {
		t.Errorf("FetchInterval = %v, want 2m", cfg.Policy.FetchInterval)
	}
	if !cfg.Policy.Watch {
		t.Error("Watch = false, want true")
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Overrides.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50", cfg.Overrides.MaxEntries)
	}
	if cfg.Enforcement.FailMode != "closed" {
		t.Errorf("FailMode = %q, want closed", cfg.Enforcement.FailMode)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://ui.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("unparseable bool override should be ignored")
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("WARDEN_POLICY_INTERNAL_URL", "/var/lib/warden/policy.json")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") error = %v, want nil", err)
	}
	if cfg.Policy.InternalURL != "/var/lib/warden/policy.json" {
		t.Errorf("InternalURL = %q", cfg.Policy.InternalURL)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want default", cfg.Server.ListenAddress)
	}
}
