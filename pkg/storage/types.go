package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mercator-hq/warden/pkg/policy/model"
)

// ConfigKey is the name of the single logical record a store holds.
const ConfigKey = "config"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("snapshot store is closed")

// SnapshotStore persists the last good policy summary.
// Implementations must be safe for concurrent use.
type SnapshotStore interface {
	// Save replaces the persisted summary.
	Save(ctx context.Context, summary *model.PolicySummary) error

	// Load returns the persisted snapshot, or nil with no error when
	// nothing has been persisted yet.
	Load(ctx context.Context) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// Snapshot is a persisted summary with its metadata.
type Snapshot struct {
	Summary *model.PolicySummary `json:"summary"`
	Hash    string               `json:"hash"`
	SavedAt time.Time            `json:"saved_at"`
}

// HashSummary returns a content hash of summary. encoding/json writes map
// keys in sorted order, so equal summaries hash equally.
func HashSummary(summary *model.PolicySummary) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func encodeSnapshot(summary *model.PolicySummary, now time.Time) (*Snapshot, []byte, error) {
	if summary == nil {
		return nil, nil, fmt.Errorf("summary cannot be nil")
	}
	hash, err := HashSummary(summary)
	if err != nil {
		return nil, nil, err
	}
	snap := &Snapshot{Summary: summary, Hash: hash, SavedAt: now.UTC()}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return snap, data, nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Summary == nil {
		snap.Summary = model.NewPolicySummary(nil, nil)
	}
	return &snap, nil
}
