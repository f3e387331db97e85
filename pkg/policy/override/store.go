package override

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds a store when no explicit limit is configured.
const DefaultMaxEntries = 10000

// Kind names one of the two override stores.
type Kind string

const (
	// KindDisclaimer records disclaimer acceptances.
	KindDisclaimer Kind = "disclaimer"

	// KindSticky records sticky cancellations.
	KindSticky Kind = "sticky"
)

// Reader is the read side of a store used during evaluation.
type Reader interface {
	// Active reports whether host has a grant that has not expired at now.
	Active(host string, now time.Time) bool
}

// Store maps hostnames to grant expiry times.
//
// Expiry is lazy: an entry whose expiry is not after the evaluation time is
// treated as absent. Sweep removes such entries; the store also evicts when
// it reaches its size bound.
type Store struct {
	kind       Kind
	maxEntries int

	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewStore creates a store. maxEntries <= 0 selects DefaultMaxEntries.
func NewStore(kind Kind, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		kind:       kind,
		maxEntries: maxEntries,
		entries:    make(map[string]time.Time),
	}
}

// Kind returns which store this is.
func (s *Store) Kind() Kind {
	return s.kind
}

// Grant records host as granted until now+d, replacing any previous grant,
// and returns the expiry.
func (s *Store) Grant(host string, now time.Time, d time.Duration) time.Time {
	expiry := now.Add(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[host]; !exists && len(s.entries) >= s.maxEntries {
		s.sweepLocked(now)
		if len(s.entries) >= s.maxEntries {
			s.evictSoonestLocked()
		}
	}
	s.entries[host] = expiry
	return expiry
}

// Active reports whether host has a grant with now < expiry.
func (s *Store) Active(host string, now time.Time) bool {
	s.mu.RLock()
	expiry, ok := s.entries[host]
	s.mu.RUnlock()
	return ok && now.Before(expiry)
}

// Expiry returns the stored expiry for host, expired or not.
func (s *Store) Expiry(host string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.entries[host]
	return expiry, ok
}

// Revoke removes host's grant.
func (s *Store) Revoke(host string) {
	s.mu.Lock()
	delete(s.entries, host)
	s.mu.Unlock()
}

// Sweep removes entries that are expired at now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for host, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, host)
			removed++
		}
	}
	return removed
}

func (s *Store) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for host, expiry := range s.entries {
		if !found || expiry.Before(soonest) {
			victim, soonest, found = host, expiry, true
		}
	}
	if found {
		delete(s.entries, victim)
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
