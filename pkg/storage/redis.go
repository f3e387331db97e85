package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"mercator-hq/warden/pkg/policy/model"
)

// DefaultRedisKey is the key the snapshot is stored under.
const DefaultRedisKey = "warden:" + ConfigKey

// RedisStore persists the snapshot in Redis, so several enforcer instances
// can share the last good policy.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	closed atomic.Bool
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Key overrides DefaultRedisKey.
	Key string

	// DialTimeout bounds the initial ping.
	// Default: 2 seconds
	DialTimeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		cfg.URL = "redis://localhost:6379"
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:     []string{opts.Addr},
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.Key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Save replaces the persisted snapshot.
func (r *RedisStore) Save(ctx context.Context, summary *model.PolicySummary) error {
	if r.closed.Load() {
		return ErrClosed
	}
	_, data, err := encodeSnapshot(summary, time.Now())
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot or nil when the key does not exist.
func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return r.client.Close()
}
