package storage

import (
	"context"
	"sync"
	"time"

	"mercator-hq/warden/pkg/policy/model"
)

// MemoryStore keeps the snapshot in process memory. It survives refreshes but
// not restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores an encoded copy of summary.
func (m *MemoryStore) Save(ctx context.Context, summary *model.PolicySummary) error {
	_, data, err := encodeSnapshot(summary, time.Now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data = data
	return nil
}

// Load decodes the stored snapshot. Every call returns a fresh copy.
func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.data == nil {
		return nil, nil
	}
	return decodeSnapshot(m.data)
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
