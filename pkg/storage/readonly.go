package storage

import (
	"context"

	"mercator-hq/warden/pkg/policy/model"
)

// ReadOnlyStore loads from the wrapped store and discards saves. One-shot
// commands use it to fall back to the persisted snapshot without replacing it.
type ReadOnlyStore struct {
	store SnapshotStore
}

// ReadOnly wraps store.
func ReadOnly(store SnapshotStore) *ReadOnlyStore {
	return &ReadOnlyStore{store: store}
}

// Save does nothing.
func (r *ReadOnlyStore) Save(ctx context.Context, summary *model.PolicySummary) error {
	return nil
}

// Load reads from the wrapped store.
func (r *ReadOnlyStore) Load(ctx context.Context) (*Snapshot, error) {
	return r.store.Load(ctx)
}

// Close closes the wrapped store.
func (r *ReadOnlyStore) Close() error {
	return r.store.Close()
}
