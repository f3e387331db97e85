package manager

import (
	"sync/atomic"
	"time"

	"mercator-hq/warden/pkg/policy/model"
)

// ConfigurationStore holds the active configuration. Readers always see a
// complete Active value; installs replace it wholesale.
type ConfigurationStore struct {
	current atomic.Pointer[Active]
	version atomic.Uint64
}

// NewConfigurationStore creates an empty store.
func NewConfigurationStore() *ConfigurationStore {
	return &ConfigurationStore{}
}

// Load returns the active configuration, or nil if none was installed.
func (s *ConfigurationStore) Load() *Active {
	return s.current.Load()
}

// Summary returns the active policy summary, or nil.
func (s *ConfigurationStore) Summary() *model.PolicySummary {
	if a := s.current.Load(); a != nil {
		return a.Summary
	}
	return nil
}

// Install makes summary the active configuration and returns it.
func (s *ConfigurationStore) Install(summary *model.PolicySummary, hash string, origin Origin, now time.Time) *Active {
	a := &Active{
		Summary:     summary,
		Hash:        hash,
		Version:     s.version.Add(1),
		Origin:      origin,
		ActivatedAt: now,
	}
	s.current.Store(a)
	return a
}
