// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the global flags.
type rootOptions struct {
	configPath  string
	logLevel    string
	metricsAddr string
	version     string
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "ircdesk",
		Short: "A terminal IRC client",
		Long: "ircdesk connects to IRC networks and shows every channel and private chat\n" +
			"in one window. Without a terminal on stdout it runs in line mode.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !canRunTUI() {
				return runLine(cmd.Context(), opts)
			}
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.ircdesk/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /health and /metrics on this address, e.g. :9090")

	root.AddCommand(
		newLineCommand(opts),
		newServersCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

func newLineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "line",
		Short: "Run the plain prompt instead of the full-screen window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLine(cmd.Context(), opts)
		},
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, version string) int {
	root := NewRootCommand(version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}
