package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/scheduler"
	"mercator-hq/warden/pkg/server"
	"mercator-hq/warden/pkg/telemetry/tracing"
)

type runOptions struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the enforcer and the host bridge",
		Long: `Start the enforcer with the specified configuration.

The install refresh runs before the bridge starts listening. After that the
policy is refreshed every policy.fetch_interval, and on file changes when
policy.watch is set. Expired overrides are swept every
overrides.sweep_interval.

Examples:
  # Start with a config file
  warden run --config /etc/warden/warden.yaml

  # Override the listen address
  warden run --config warden.yaml --listen 127.0.0.1:9000

  # Validate config without starting
  warden run --config warden.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnforcer(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting")
	return cmd
}

func runEnforcer(cmd *cobra.Command, root *rootOptions, opts *runOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if opts.listenAddress != "" {
		cfg.Server.ListenAddress = opts.listenAddress
	}
	if opts.logLevel != "" {
		cfg.Telemetry.Logging.Level = opts.logLevel
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tp, err := tracing.New(ctx, cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError(root.cfgFile, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	sched := scheduler.New(logger)
	a, err := newApp(cfg, logger, appOptions{scheduler: sched})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.enforcer.RegisterSweep(sched, cfg.Overrides.SweepInterval); err != nil {
		return cli.NewCommandError("run", err)
	}

	srv, err := server.New(cfg.Server, cfg.Telemetry.Metrics, server.Deps{
		Enforcer:  a.enforcer,
		Lifecycle: a.manager,
		Metrics:   a.metrics,
		Logger:    logger,
		Health:    a.healthChecks(),
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	a.enforcer.SetRedirector(srv.Hub())

	fmt.Fprintf(out, "Warden %s\n", Version)
	if err := a.manager.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	if active := a.manager.Active(); active != nil {
		fmt.Fprintf(out, "✓ Policy active (version %d, %s)\n", active.Version, active.Origin)
	} else {
		fmt.Fprintln(out, "! No policy active yet; navigations are evaluated in", cfg.Enforcement.FailMode, "mode")
	}

	if err := sched.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sched.Stop()

	fmt.Fprintf(out, "✓ Host bridge listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Warden stopped")
	return nil
}
