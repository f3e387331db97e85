// Package config provides configuration management for the Warden enforcer.
//
// Configuration is loaded from a YAML file, completed with defaults and
// optionally overridden from the environment:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("warden.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention WARDEN_SECTION_FIELD:
//
//   - WARDEN_POLICY_INTERNAL_URL overrides policy.internal_url
//   - WARDEN_STORAGE_BACKEND overrides storage.backend
//   - WARDEN_ENFORCEMENT_FAIL_MODE overrides enforcement.fail_mode
//
// # Example Configuration
//
//	policy:
//	  internal_url: "https://policy.corp.example/internal.json"
//	  external_url: "https://policy.vendor.example/external.json"
//	  fetch_interval: "15m"
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/warden.db"
//
//	enforcement:
//	  block_page_url: "warden://blocked"
//	  fail_mode: "open"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
