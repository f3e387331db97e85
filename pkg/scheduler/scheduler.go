// Package scheduler runs the enforcer's periodic jobs (policy refresh and
// override sweeps) on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. The context is canceled when the
// scheduler's start context is.
type Job func(ctx context.Context)

// Every returns the cron descriptor for a fixed interval.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

// Scheduler runs named jobs. A job that is still running when its next
// tick arrives is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
	jobs    map[string]cron.EntryID

	ctxMu sync.RWMutex
	ctx   context.Context
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "scheduler"),
		jobs:   make(map[string]cron.EntryID),
		ctx:    context.Background(),
	}
}

// Add registers job under name. spec is a standard cron expression or a
// descriptor such as "@every 15m". Adding an existing name replaces it.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = id

	s.logger.Debug("job scheduled", "job", name, "schedule", spec)
	return nil
}

// Remove unregisters a job. Unknown names are ignored.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}
}

func (s *Scheduler) run(name string, job Job) {
	s.ctxMu.RLock()
	ctx := s.ctx
	s.ctxMu.RUnlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	job(ctx)
	s.logger.Debug("job completed", "job", name, "duration", time.Since(start))
}

// Start begins running jobs. The scheduler stops when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "jobs", len(s.jobs))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	done := s.cron.Stop()
	<-done.Done()
	s.running = false
	s.logger.Info("scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next activation of the named job. The time is only
// known once the scheduler is running.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	entry := s.cron.Entry(id)
	if !entry.Valid() || entry.Next.IsZero() {
		return time.Time{}, false
	}
	return entry.Next, true
}

// Jobs returns the registered job names in sorted order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
