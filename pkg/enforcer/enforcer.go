package enforcer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/warden/pkg/policy/model"
	"mercator-hq/warden/pkg/policy/override"
	"mercator-hq/warden/pkg/policy/validator"
	"mercator-hq/warden/pkg/scheduler"
	"mercator-hq/warden/pkg/tabs"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
)

// DefaultBlockPageURL is the redirect target for blocked navigations.
const DefaultBlockPageURL = "warden://blocked"

// SweepJob is the scheduler job name of the override sweep.
const SweepJob = "override-sweep"

// Options configures an Enforcer.
type Options struct {
	// Summaries yields the active configuration. Required.
	Summaries SummaryProvider

	// Redirector sends blocked tabs to the block page. Without one, blocks
	// are recorded but no redirect happens.
	Redirector Redirector

	// BlockPageURL defaults to DefaultBlockPageURL.
	BlockPageURL string

	// FailMode defaults to validator.FailOpen.
	FailMode validator.FailMode

	// MaxOverrideEntries bounds each override store.
	MaxOverrideEntries int

	Logger  *slog.Logger
	Metrics *metrics.Collector

	// Now defaults to time.Now.
	Now func() time.Time
}

// Enforcer applies the active policy to navigations and handles the UI
// message channel. It owns the tab action store and the write side of both
// override stores.
type Enforcer struct {
	summaries   SummaryProvider
	blockPage   string
	failMode    validator.FailMode
	disclaimers *override.Store
	sticky      *override.Store
	tabs        *tabs.Store
	logger      *slog.Logger
	metrics     *metrics.Collector
	tracer      trace.Tracer
	now         func() time.Time

	mu         sync.RWMutex
	redirector Redirector
}

// New creates an enforcer.
func New(opts Options) (*Enforcer, error) {
	if opts.Summaries == nil {
		return nil, fmt.Errorf("enforcer: summary provider is required")
	}
	if opts.BlockPageURL == "" {
		opts.BlockPageURL = DefaultBlockPageURL
	}
	if opts.FailMode == "" {
		opts.FailMode = validator.FailOpen
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Enforcer{
		summaries:   opts.Summaries,
		redirector:  opts.Redirector,
		blockPage:   opts.BlockPageURL,
		failMode:    opts.FailMode,
		disclaimers: override.NewStore(override.KindDisclaimer, opts.MaxOverrideEntries),
		sticky:      override.NewStore(override.KindSticky, opts.MaxOverrideEntries),
		tabs:        tabs.NewStore(),
		logger:      opts.Logger.With("component", "enforcer"),
		metrics:     opts.Metrics,
		tracer:      otel.Tracer("mercator-hq/warden/pkg/enforcer"),
		now:         opts.Now,
	}, nil
}

// SetRedirector replaces the redirector. The host bridge calls it once its
// transport is up.
func (e *Enforcer) SetRedirector(r Redirector) {
	e.mu.Lock()
	e.redirector = r
	e.mu.Unlock()
}

// BlockPageURL returns the redirect target.
func (e *Enforcer) BlockPageURL() string {
	return e.blockPage
}

// Tabs returns the tab action store.
func (e *Enforcer) Tabs() *tabs.Store {
	return e.tabs
}

// Disclaimers returns the disclaimer acceptance store.
func (e *Enforcer) Disclaimers() *override.Store {
	return e.disclaimers
}

// Sticky returns the sticky cancellation store.
func (e *Enforcer) Sticky() *override.Store {
	return e.sticky
}

// Evaluate resolves the actions for rawURL against the active configuration
// without touching the tab store.
func (e *Enforcer) Evaluate(rawURL string) []model.PolicyAction {
	return validator.Evaluate(rawURL, e.summaries.Summary(), e.disclaimers, e.sticky, validator.Options{
		Now:      e.now(),
		FailMode: e.failMode,
	})
}

// BeforeNavigate evaluates a navigation, records the result for the tab and
// redirects the tab once if any action blocks the page.
//
// about:blank is ignored entirely and leaves the tab store untouched. A
// failed redirect is returned as a *RedirectError; the actions are stored
// regardless.
func (e *Enforcer) BeforeNavigate(ctx context.Context, ev NavigationEvent) (Decision, error) {
	decision := Decision{TabID: ev.TabID, URL: ev.URL, Actions: []model.PolicyAction{}}

	if strings.TrimSpace(ev.URL) == validator.BlankURL {
		decision.Skipped = true
		return decision, nil
	}

	ctx = logging.WithTabID(ctx, ev.TabID)
	ctx, span := e.tracer.Start(ctx, "enforcer.before_navigate", trace.WithAttributes(
		attribute.Int("tab.id", ev.TabID),
		attribute.Int("frame.id", ev.FrameID),
	))
	defer span.End()

	start := time.Now()
	actions := e.Evaluate(ev.URL)
	elapsed := time.Since(start)

	e.tabs.Set(ev.TabID, actions)
	decision.Actions = actions

	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a.Action)
	}
	e.metrics.RecordEvaluation(names, elapsed)
	e.metrics.SetTrackedTabs(e.tabs.Len())
	span.SetAttributes(attribute.Int("policy.actions", len(actions)))

	if len(actions) > 0 {
		e.logger.DebugContext(ctx, "navigation matched policy",
			"url", ev.URL,
			"frame_id", ev.FrameID,
			"actions", names,
		)
	}

	if !model.HasBlock(actions) {
		return decision, nil
	}

	decision.RedirectURL = e.blockPage
	e.metrics.RecordRedirect()
	span.SetAttributes(attribute.Bool("policy.blocked", true))
	e.logger.InfoContext(ctx, "navigation blocked", "url", ev.URL, "target", e.blockPage)

	e.mu.RLock()
	redirector := e.redirector
	e.mu.RUnlock()
	if redirector == nil {
		return decision, nil
	}
	if err := redirector.Redirect(ctx, ev.TabID, e.blockPage); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "redirect failed")
		e.logger.ErrorContext(ctx, "failed to redirect blocked tab", "error", err)
		return decision, &RedirectError{TabID: ev.TabID, Target: e.blockPage, Cause: err}
	}
	return decision, nil
}

// TabClosed forgets the tab's stored actions.
func (e *Enforcer) TabClosed(ctx context.Context, tabID int) {
	e.tabs.Delete(tabID)
	e.metrics.SetTrackedTabs(e.tabs.Len())
	e.logger.DebugContext(logging.WithTabID(ctx, tabID), "tab closed")
}

// Sweep drops expired override grants and returns how many were removed.
func (e *Enforcer) Sweep(ctx context.Context) int {
	now := e.now()
	removed := e.disclaimers.Sweep(now) + e.sticky.Sweep(now)

	e.metrics.SetOverrideEntries(string(override.KindDisclaimer), e.disclaimers.Len())
	e.metrics.SetOverrideEntries(string(override.KindSticky), e.sticky.Len())

	if removed > 0 {
		e.logger.DebugContext(ctx, "expired override grants removed", "count", removed)
	}
	return removed
}

// RegisterSweep schedules Sweep on s every interval.
func (e *Enforcer) RegisterSweep(s *scheduler.Scheduler, interval time.Duration) error {
	return s.Add(SweepJob, scheduler.Every(interval), func(ctx context.Context) {
		e.Sweep(ctx)
	})
}
