package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/policy/manager"
	"mercator-hq/warden/pkg/server/handlers"
)

type fetchOptions struct {
	format string
}

// fetchResult is the output of warden fetch.
type fetchResult struct {
	handlers.RefreshResponse
	Origin  string `json:"origin,omitempty"`
	Domains int    `json:"domains"`
	Groups  int    `json:"groups"`
}

func (r fetchResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Refresh %s: %s (%dms)\n", r.ID, r.Outcome, r.DurationMS)
	if r.Version > 0 {
		fmt.Fprintf(w, "  version: %d (%s)\n", r.Version, r.Origin)
		fmt.Fprintf(w, "  hash:    %s\n", r.Hash)
		fmt.Fprintf(w, "  domains: %d, resource groups: %d\n", r.Domains, r.Groups)
	}
	if r.SkippedExternal {
		fmt.Fprintln(w, "  external source skipped (same location as internal)")
	}
	for _, e := range r.SourceErrors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  ! %s\n", issue)
	}
	if r.PersistError != "" {
		fmt.Fprintf(w, "  ✗ snapshot not saved: %s\n", r.PersistError)
	}
	return nil
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch, merge and parse the policy once",
		Long: `Run a single refresh: fetch both sources, merge them, parse the result and
persist it to the snapshot store. Parse issues and source failures are
reported. The command fails when no configuration could be activated.

Examples:
  warden fetch --config warden.yaml
  warden fetch --config warden.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchPolicy(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json")
	return cmd
}

func fetchPolicy(cmd *cobra.Command, root *rootOptions, opts *fetchOptions) error {
	format, err := cli.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.manager.Refresh(cmd.Context())
	if err != nil {
		return cli.NewCommandError("fetch", err)
	}

	out := fetchResult{RefreshResponse: handlers.NewRefreshResponse(res)}
	if res.Active != nil {
		out.Origin = string(res.Active.Origin)
		out.Domains = len(res.Active.Summary.Policy)
		out.Groups = len(res.Active.Summary.ResourceGroups)
	}
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out); err != nil {
		return err
	}

	if res.Outcome == manager.OutcomeUnchanged && res.Active == nil {
		if srcErr := res.SourceErr(); srcErr != nil {
			return cli.NewCommandError("fetch", srcErr)
		}
		return cli.NewCommandError("fetch", fmt.Errorf("no usable policy was fetched"))
	}
	return nil
}
