package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"mercator-hq/warden/pkg/policy/document"
	"mercator-hq/warden/pkg/policy/parser"
	"mercator-hq/warden/pkg/policy/source"
	"mercator-hq/warden/pkg/scheduler"
	"mercator-hq/warden/pkg/storage"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
)

// RefreshJob is the scheduler job name of the periodic refresh.
const RefreshJob = "policy-refresh"

// DefaultFetchInterval is used when Options.FetchInterval is zero.
const DefaultFetchInterval = 15 * time.Minute

// Options configures a Manager.
type Options struct {
	// Internal and External are the two policy sources. Either may be nil,
	// but not both. External values win on merge conflicts.
	Internal source.Source
	External source.Source

	// Snapshots persists the last good configuration. Defaults to an
	// in-memory store.
	Snapshots storage.SnapshotStore

	// Parser defaults to parser.New().
	Parser *parser.Parser

	// Scheduler runs the periodic refresh. When nil, Start creates and
	// owns one.
	Scheduler *scheduler.Scheduler

	// FetchInterval is the period between scheduled refreshes.
	FetchInterval time.Duration

	// Watch refreshes when a file source changes on disk.
	Watch bool

	// WatchDebounce is the quiet period for file events.
	WatchDebounce time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Collector

	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager owns the configuration lifecycle: fetch both sources, merge,
// parse, then persist and activate, or fall back to the last snapshot.
type Manager struct {
	internal  source.Source
	external  source.Source
	snapshots storage.SnapshotStore
	parser    *parser.Parser
	store     *ConfigurationStore
	logger    *slog.Logger
	metrics   *metrics.Collector
	tracer    trace.Tracer
	now       func() time.Time

	interval      time.Duration
	watch         bool
	watchDebounce time.Duration

	refreshes singleflight.Group

	mu         sync.RWMutex
	state      State
	lastResult *RefreshResult

	// Lifecycle
	runMu         sync.Mutex
	started       bool
	sched         *scheduler.Scheduler
	ownsScheduler bool
	watcher       *FileWatcher
	watchCancel   context.CancelFunc
	watchDone     chan struct{}
}

// New creates a manager. Nothing is fetched until Refresh or Start.
func New(opts Options) (*Manager, error) {
	if opts.Internal == nil && opts.External == nil {
		return nil, ErrNoSources
	}
	if opts.Snapshots == nil {
		opts.Snapshots = storage.NewMemoryStore()
	}
	if opts.Parser == nil {
		opts.Parser = parser.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchInterval <= 0 {
		opts.FetchInterval = DefaultFetchInterval
	}

	return &Manager{
		internal:      opts.Internal,
		external:      opts.External,
		snapshots:     opts.Snapshots,
		parser:        opts.Parser,
		store:         NewConfigurationStore(),
		logger:        opts.Logger.With("component", "policy.manager"),
		metrics:       opts.Metrics,
		tracer:        otel.Tracer("mercator-hq/warden/pkg/policy/manager"),
		now:           opts.Now,
		interval:      opts.FetchInterval,
		watch:         opts.Watch,
		watchDebounce: opts.WatchDebounce,
		sched:         opts.Scheduler,
		state:         StateUninitialized,
	}, nil
}

// Store returns the configuration store read by evaluation.
func (m *Manager) Store() *ConfigurationStore {
	return m.store
}

// Active returns the active configuration, or nil.
func (m *Manager) Active() *Active {
	return m.store.Load()
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastResult returns the result of the most recent completed refresh.
func (m *Manager) LastResult() *RefreshResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastResult
}

// Refresh runs one refresh cycle. Concurrent calls share the refresh that
// is already in flight. The refresh itself never fails: unreachable sources
// and storage errors are recorded in the result. The returned error is
// only ever the caller's context error.
func (m *Manager) Refresh(ctx context.Context) (*RefreshResult, error) {
	ch := m.refreshes.DoChan("refresh", func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx)), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val.(*RefreshResult), nil
	}
}

func (m *Manager) refresh(ctx context.Context) *RefreshResult {
	res := &RefreshResult{
		ID:        uuid.NewString(),
		StartedAt: m.now(),
	}
	start := time.Now()

	ctx = logging.WithRefreshID(ctx, res.ID)
	ctx, span := m.tracer.Start(ctx, "policy.refresh", trace.WithAttributes(
		attribute.String("refresh.id", res.ID),
	))
	defer span.End()

	m.beginRefresh()
	m.logger.InfoContext(ctx, "configuration refresh started")

	internalDoc := m.fetch(ctx, m.internal, res)

	var externalDoc *document.Object
	if m.internal != nil && m.external != nil && source.SameLocation(m.internal.Location(), m.external.Location()) {
		res.SkippedExternal = true
		externalDoc = document.New()
		m.logger.DebugContext(ctx, "external source equals internal source, skipping fetch")
	} else {
		externalDoc = m.fetch(ctx, m.external, res)
	}

	merged := document.Merge(internalDoc, externalDoc)
	parsed := m.parser.Parse(merged)
	res.Issues = parsed.Issues
	for _, issue := range parsed.Issues {
		m.metrics.RecordParseIssue(string(issue.Kind))
		m.logger.WarnContext(ctx, "policy entry ignored", "issue", issue.String())
	}

	if !parsed.Summary.IsEmpty() {
		m.activate(ctx, parsed, res)
	} else {
		m.fallback(ctx, res)
	}

	res.Active = m.store.Load()
	res.Duration = time.Since(start)
	m.endRefresh(res)

	span.SetAttributes(
		attribute.String("refresh.outcome", string(res.Outcome)),
		attribute.Int("refresh.issues", len(res.Issues)),
		attribute.Int("refresh.source_errors", len(res.SourceErrors)),
	)
	if len(res.SourceErrors) > 0 {
		span.SetStatus(codes.Error, "policy source unavailable")
	}

	m.metrics.RecordRefresh(string(res.Outcome), res.Duration)
	if res.Active != nil {
		m.metrics.SetActiveConfiguration(len(res.Active.Summary.Policy), len(res.Active.Summary.ResourceGroups), res.Active.ActivatedAt)
	}

	attrs := []any{
		"outcome", res.Outcome,
		"issues", len(res.Issues),
		"source_errors", len(res.SourceErrors),
		"duration_ms", res.Duration.Milliseconds(),
	}
	if res.Active != nil {
		attrs = append(attrs, "version", res.Active.Version, "hash", res.Active.Hash, "domains", len(res.Active.Summary.Policy))
	}
	m.logger.InfoContext(ctx, "configuration refresh completed", attrs...)

	return res
}

// fetch degrades any failure to an empty document.
func (m *Manager) fetch(ctx context.Context, src source.Source, res *RefreshResult) *document.Object {
	if src == nil {
		return document.New()
	}

	ctx, span := m.tracer.Start(ctx, "policy.fetch", trace.WithAttributes(
		attribute.String("source.name", src.Name()),
	))
	defer span.End()

	doc, err := src.Fetch(ctx)
	m.metrics.RecordFetch(src.Name(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		res.SourceErrors = append(res.SourceErrors, &SourceError{
			Source:   src.Name(),
			Location: src.Location(),
			Cause:    err,
		})
		m.logger.WarnContext(ctx, "policy source unavailable, using empty document",
			"source", src.Name(),
			"error", err,
		)
		return document.New()
	}
	return doc
}

// activate persists then installs a freshly parsed configuration. A failed
// save is logged and the configuration is installed anyway.
func (m *Manager) activate(ctx context.Context, parsed parser.Result, res *RefreshResult) {
	res.Outcome = OutcomeActivated

	hash, err := storage.HashSummary(parsed.Summary)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to hash configuration", "error", err)
	}

	if err := m.snapshots.Save(ctx, parsed.Summary); err != nil {
		res.PersistError = err
		m.metrics.RecordPersistFailure()
		m.logger.ErrorContext(ctx, "failed to persist configuration, activating in memory only", "error", err)
	}

	m.store.Install(parsed.Summary, hash, OriginRemote, m.now())
}

// fallback installs the persisted snapshot, if there is one.
func (m *Manager) fallback(ctx context.Context, res *RefreshResult) {
	snap, err := m.snapshots.Load(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to load persisted configuration", "error", err)
	}
	if err != nil || snap == nil || snap.Summary.IsEmpty() {
		res.Outcome = OutcomeUnchanged
		m.logger.WarnContext(ctx, "no usable configuration fetched and no snapshot available, keeping current configuration")
		return
	}

	res.Outcome = OutcomeFallback
	m.store.Install(snap.Summary, snap.Hash, OriginSnapshot, m.now())
	m.logger.WarnContext(ctx, "no usable configuration fetched, restored persisted snapshot",
		"saved_at", snap.SavedAt,
	)
}

func (m *Manager) beginRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store.Load() == nil {
		m.state = StateLoading
	} else {
		m.state = StateRefreshing
	}
}

func (m *Manager) endRefresh(res *RefreshResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res.Active == nil {
		m.state = StateUninitialized
	} else {
		m.state = StateActive
	}
	m.lastResult = res
}

// Start performs the install refresh, schedules the periodic refresh and,
// when enabled, watches file sources. It returns after the install refresh.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	if _, err := m.Refresh(ctx); err != nil {
		return fmt.Errorf("install refresh: %w", err)
	}

	if m.sched == nil {
		m.sched = scheduler.New(m.logger)
		m.ownsScheduler = true
	}
	if err := m.sched.Add(RefreshJob, scheduler.Every(m.interval), func(ctx context.Context) {
		m.Refresh(ctx)
	}); err != nil {
		return err
	}
	if m.ownsScheduler {
		if err := m.sched.Start(ctx); err != nil {
			return err
		}
	}

	if m.watch {
		if err := m.startWatcher(ctx); err != nil {
			m.sched.Remove(RefreshJob)
			if m.ownsScheduler {
				m.sched.Stop()
			}
			return err
		}
	}

	m.started = true
	m.logger.Info("policy manager started", "fetch_interval", m.interval.String(), "watch", m.watcher != nil)
	return nil
}

func (m *Manager) startWatcher(ctx context.Context) error {
	var paths []string
	for _, src := range []source.Source{m.internal, m.external} {
		if fs, ok := src.(*source.FileSource); ok {
			paths = append(paths, fs.Path())
		}
	}
	if len(paths) == 0 {
		m.logger.Info("watch enabled but no file sources configured")
		return nil
	}

	w, err := NewFileWatcher(paths, m.watchDebounce, m.logger)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Watch(watchCtx, func() error {
			_, err := m.Refresh(watchCtx)
			return err
		}); err != nil {
			m.logger.Error("file watcher error", "error", err)
		}
	}()

	m.watcher = w
	m.watchCancel = cancel
	m.watchDone = done
	return nil
}

// Stop releases the scheduler job and the file watcher. The active
// configuration stays installed.
func (m *Manager) Stop() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false

	var err error
	if m.watcher != nil {
		m.watchCancel()
		<-m.watchDone
		err = m.watcher.Stop()
		m.watcher = nil
	}

	m.sched.Remove(RefreshJob)
	if m.ownsScheduler {
		m.sched.Stop()
		m.sched = nil
		m.ownsScheduler = false
	}

	m.logger.Info("policy manager stopped")
	return err
}

// Close stops the manager and closes the snapshot store.
func (m *Manager) Close() error {
	stopErr := m.Stop()
	if err := m.snapshots.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot store: %w", err)
	}
	return stopErr
}
