package manager

import (
	"time"

	"mercator-hq/warden/pkg/policy/model"
	"mercator-hq/warden/pkg/policy/parser"
)

// State is the lifecycle state of the manager.
type State string

const (
	// StateUninitialized means no configuration has ever been active.
	StateUninitialized State = "uninitialized"

	// StateLoading is the first refresh, with nothing active yet.
	StateLoading State = "loading"

	// StateActive means a configuration is active and no refresh is running.
	StateActive State = "active"

	// StateRefreshing is a refresh running while a configuration is active.
	StateRefreshing State = "refreshing"
)

// Origin tells where the active configuration came from.
type Origin string

const (
	// OriginRemote is a configuration built from freshly fetched documents.
	OriginRemote Origin = "remote"

	// OriginSnapshot is a configuration restored from the snapshot store.
	OriginSnapshot Origin = "snapshot"
)

// Outcome is the result of one refresh.
type Outcome string

const (
	// OutcomeActivated means a freshly parsed configuration was installed.
	OutcomeActivated Outcome = "activated"

	// OutcomeFallback means nothing usable was fetched and the persisted
	// snapshot was installed.
	OutcomeFallback Outcome = "fallback"

	// OutcomeUnchanged means nothing usable was fetched and no snapshot
	// existed, so the previous configuration (if any) stays active.
	OutcomeUnchanged Outcome = "unchanged"
)

// Active is an installed configuration. It is never mutated after install.
type Active struct {
	Summary     *model.PolicySummary
	Hash        string
	Version     uint64
	Origin      Origin
	ActivatedAt time.Time
}

// RefreshResult describes one completed refresh.
type RefreshResult struct {
	// ID correlates log lines of the refresh.
	ID string

	Outcome   Outcome
	StartedAt time.Time
	Duration  time.Duration

	// Active is the configuration active after the refresh; nil if none.
	Active *Active

	// Issues are the parser diagnostics of the merged document.
	Issues []parser.Issue

	// SourceErrors lists the sources that degraded to an empty document.
	SourceErrors []*SourceError

	// SkippedExternal is set when the external location equals the internal one.
	SkippedExternal bool

	// PersistError is set when a new configuration was activated but could
	// not be saved.
	PersistError error
}

// SourceErr combines SourceErrors into one error, or returns nil.
func (r *RefreshResult) SourceErr() error {
	if r == nil {
		return nil
	}
	list := &ErrorList{}
	for _, err := range r.SourceErrors {
		list.Add(err)
	}
	return list.ToError()
}
