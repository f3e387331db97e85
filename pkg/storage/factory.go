package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"mercator-hq/warden/pkg/config"
)

// New opens the snapshot store selected by cfg.Backend.
func New(cfg config.StorageConfig) (SnapshotStore, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return NewSQLiteStore(SQLiteConfig{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
			WALMode:     cfg.SQLite.WALMode,
		})
	case "redis":
		return NewRedisStore(RedisConfig{
			URL:         cfg.Redis.URL,
			Key:         cfg.Redis.Key,
			DialTimeout: cfg.Redis.DialTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
