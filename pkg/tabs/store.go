// Package tabs keeps the last evaluation result of every live tab so the
// in-page UI can ask for it after the page has loaded.
package tabs

import (
	"sync"

	"mercator-hq/warden/pkg/policy/model"
)

// Store maps a tab identifier to the actions of its most recent navigation.
// Presence of an entry means the tab was evaluated, even if nothing applied.
type Store struct {
	mu      sync.RWMutex
	entries map[int][]model.PolicyAction
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[int][]model.PolicyAction)}
}

// Set replaces the entry for tabID. A nil list is stored as empty.
func (s *Store) Set(tabID int, actions []model.PolicyAction) {
	stored := make([]model.PolicyAction, len(actions))
	copy(stored, actions)

	s.mu.Lock()
	s.entries[tabID] = stored
	s.mu.Unlock()
}

// Get returns a copy of the entry for tabID.
func (s *Store) Get(tabID int) ([]model.PolicyAction, bool) {
	s.mu.RLock()
	actions, ok := s.entries[tabID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	out := make([]model.PolicyAction, len(actions))
	copy(out, actions)
	return out, true
}

// Delete removes the entry for tabID.
func (s *Store) Delete(tabID int) {
	s.mu.Lock()
	delete(s.entries, tabID)
	s.mu.Unlock()
}

// Len returns the number of tracked tabs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
