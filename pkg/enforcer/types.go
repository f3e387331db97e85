package enforcer

import (
	"context"

	"mercator-hq/warden/pkg/policy/model"
)

// NavigationEvent is a top-level or sub-frame navigation about to start.
type NavigationEvent struct {
	TabID     int     `json:"tabId"`
	URL       string  `json:"url"`
	TimeStamp float64 `json:"timeStamp,omitempty"`
	FrameID   int     `json:"frameId"`
}

// Decision is the outcome of one navigation.
type Decision struct {
	TabID   int                  `json:"tabId"`
	URL     string               `json:"url"`
	Actions []model.PolicyAction `json:"actions"`

	// Skipped is set for navigations that are never evaluated (about:blank).
	Skipped bool `json:"skipped,omitempty"`

	// RedirectURL is the block page the tab was sent to, if any.
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Redirected reports whether the tab was sent to the block page.
func (d Decision) Redirected() bool {
	return d.RedirectURL != ""
}

// Redirector moves a tab to another URL. The host bridge implements it.
type Redirector interface {
	Redirect(ctx context.Context, tabID int, target string) error
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context, tabID int, target string) error

// Redirect calls f.
func (f RedirectFunc) Redirect(ctx context.Context, tabID int, target string) error {
	return f(ctx, tabID, target)
}

// SummaryProvider returns the active policy summary, or nil when none is
// active. manager.ConfigurationStore implements it.
type SummaryProvider interface {
	Summary() *model.PolicySummary
}

// Sender identifies where a UI message came from.
type Sender struct {
	TabID  int    `json:"tabId"`
	Origin string `json:"origin"`
}
