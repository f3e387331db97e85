package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/policy/model"
)

type evaluateOptions struct {
	format string
}

// evaluation is the result for one URL.
type evaluation struct {
	URL      string               `json:"url"`
	Actions  []model.PolicyAction `json:"actions"`
	Redirect string               `json:"redirect,omitempty"`
}

type evaluateResult struct {
	Version     uint64       `json:"version"`
	Evaluations []evaluation `json:"evaluations"`
}

func (r evaluateResult) WriteText(w io.Writer) error {
	for _, ev := range r.Evaluations {
		if len(ev.Actions) == 0 {
			fmt.Fprintf(w, "%s: no actions\n", ev.URL)
			continue
		}
		fmt.Fprintf(w, "%s:\n", ev.URL)
		for _, a := range ev.Actions {
			line := fmt.Sprintf("  %-10s %s", a.Action, a.Category)
			if a.SourceResourceGroup != "" {
				line += " [" + a.SourceResourceGroup + "]"
			}
			if a.Message != "" {
				line += ": " + a.Message
			}
			fmt.Fprintln(w, line)
		}
		if ev.Redirect != "" {
			fmt.Fprintf(w, "  -> redirect to %s\n", ev.Redirect)
		}
	}
	return nil
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <url>...",
		Short: "Show the actions the policy produces for URLs",
		Long: `Refresh the policy once and evaluate each URL against it, without any
disclaimer acceptances or sticky cancellations in effect. When no usable policy
is fetched the persisted snapshot is used. The snapshot is never written.

Examples:
  warden evaluate --config warden.yaml https://example.com/ads
  warden evaluate --config warden.yaml --format json https://a.com https://b.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluateURLs(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json")
	return cmd
}

func evaluateURLs(cmd *cobra.Command, root *rootOptions, opts *evaluateOptions, urls []string) error {
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

	a, err := newApp(cfg, logger, appOptions{readOnlySnapshots: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.manager.Refresh(cmd.Context()); err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	active := a.manager.Active()
	if active == nil {
		logger.Warn("no policy could be activated; results reflect the fail mode", "fail_mode", cfg.Enforcement.FailMode)
	}

	result := evaluateResult{}
	if active != nil {
		result.Version = active.Version
	}
	for _, u := range urls {
		actions := a.enforcer.Evaluate(u)
		if actions == nil {
			actions = []model.PolicyAction{}
		}
		ev := evaluation{URL: u, Actions: actions}
		if model.HasBlock(actions) {
			ev.Redirect = a.enforcer.BlockPageURL()
		}
		result.Evaluations = append(result.Evaluations, ev)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}
