package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "warden",
		Short: "Warden - browser content-policy enforcer",
		Long: `Warden fetches a remote content policy, merges it with a secondary source,
and evaluates it against every navigated URL.

Each navigation yields a list of actions (allow, warn, block_page,
disclaimer). Blocking actions redirect the tab to a local block page. Users
can accept disclaimers and cancel warnings for a limited time; those choices
are honored until they expire.

Configuration is read from a YAML file and WARDEN_* environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (defaults and WARDEN_* variables when empty)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newRunCmd(opts),
		newFetchCmd(opts),
		newEvaluateCmd(opts),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}
