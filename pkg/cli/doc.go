/*
Package cli holds the helpers shared by the warden commands: output
formatting, error types with exit codes, and signal handling.

Output Formatting:

Commands take a --format flag (text or json):

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Results that implement TextWriter control their own text rendering.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	// ctx is canceled on SIGINT or SIGTERM

Exit Codes:

ExitCode returns 2 for a *ConfigError anywhere in the chain and 1 for any
other error.
*/
package cli
