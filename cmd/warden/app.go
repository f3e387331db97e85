package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/enforcer"
	"mercator-hq/warden/pkg/policy/manager"
	"mercator-hq/warden/pkg/policy/source"
	"mercator-hq/warden/pkg/policy/validator"
	"mercator-hq/warden/pkg/scheduler"
	"mercator-hq/warden/pkg/storage"
	"mercator-hq/warden/pkg/telemetry/health"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
)

// app is the wiring shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Collector
	snapshots storage.SnapshotStore
	manager   *manager.Manager
	enforcer  *enforcer.Enforcer
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(opts.cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(opts.cfgFile, err)
	}
	if opts.verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logCfg := logging.FromConfig(cfg.Telemetry.Logging)
	logCfg.Writer = w
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("", err)
	}
	return logger, nil
}

// appOptions tunes newApp for the command being run.
type appOptions struct {
	// scheduler drives periodic refreshes; nil for one-shot commands.
	scheduler *scheduler.Scheduler

	// readOnlySnapshots loads the persisted snapshot but never replaces it.
	readOnlySnapshots bool
}

// newApp builds the snapshot store, sources, manager and enforcer.
func newApp(cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, registry)
	}

	client := source.NewHTTPClient(cfg.Policy.FetchTimeout)
	var internal, external source.Source
	var err error
	if cfg.Policy.InternalURL != "" {
		if internal, err = source.New("internal", cfg.Policy.InternalURL, client); err != nil {
			return nil, cli.NewConfigError("", err)
		}
	}
	if cfg.Policy.ExternalURL != "" {
		if external, err = source.New("external", cfg.Policy.ExternalURL, client); err != nil {
			return nil, cli.NewConfigError("", err)
		}
	}

	snapshots, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	if opts.readOnlySnapshots {
		snapshots = storage.ReadOnly(snapshots)
	}

	mgr, err := manager.New(manager.Options{
		Internal:      internal,
		External:      external,
		Snapshots:     snapshots,
		Scheduler:     opts.scheduler,
		FetchInterval: cfg.Policy.FetchInterval,
		Watch:         cfg.Policy.Watch,
		WatchDebounce: cfg.Policy.WatchDebounce,
		Logger:        logger,
		Metrics:       collector,
	})
	if err != nil {
		snapshots.Close()
		return nil, err
	}

	enf, err := enforcer.New(enforcer.Options{
		Summaries:          mgr.Store(),
		BlockPageURL:       cfg.Enforcement.BlockPageURL,
		FailMode:           validator.FailMode(cfg.Enforcement.FailMode),
		MaxOverrideEntries: cfg.Overrides.MaxEntries,
		Logger:             logger,
		Metrics:            collector,
	})
	if err != nil {
		mgr.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   collector,
		snapshots: snapshots,
		manager:   mgr,
		enforcer:  enf,
	}, nil
}

// healthChecks reports the snapshot store and the sources of the last
// refresh on /readyz.
func (a *app) healthChecks() *health.Checker {
	checker := health.New(health.DefaultCheckTimeout)
	checker.Register("snapshot_store", func(ctx context.Context) error {
		_, err := a.snapshots.Load(ctx)
		return err
	})
	checker.Register("policy_sources", func(context.Context) error {
		return a.manager.LastResult().SourceErr()
	})
	return checker
}

func (a *app) Close() error {
	return a.manager.Close()
}
