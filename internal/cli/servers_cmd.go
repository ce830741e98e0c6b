// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ircdesk/internal/storage"
)

// =============================================================================
// SERVERS COMMAND
// =============================================================================

func newServersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "List saved servers and their channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			return listServers(cmd.OutOrStdout(), store)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "forget <server>",
		Short: "Delete a saved server and its channels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.DeleteServer(args[0]); err != nil {
				return &CommandError{Command: "servers", Action: "forget", Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("Forgot"), args[0])
			return nil
		},
	})
	return cmd
}

func openStore(opts *rootOptions) (*storage.Store, error) {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, &CommandError{Command: "servers", Action: "open database", Err: err}
	}
	return store, nil
}

func listServers(w io.Writer, store *storage.Store) error {
	servers, err := store.Servers()
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No saved servers. Use /connect inside ircdesk."))
		return nil
	}

	fmt.Fprintln(w, TitleStyle.Render("Saved servers"))
	fmt.Fprintln(w, RenderSeparator(40))
	for _, srv := range servers {
		tls := ""
		if srv.UseTLS {
			tls = " (tls)"
		}
		fmt.Fprintf(w, "%s%s as %s\n",
			ValueStyle.Render(fmt.Sprintf("%s:%d", srv.Name, srv.Port)), tls, srv.Nickname)
		if !srv.LastConnected.IsZero() {
			fmt.Fprintf(w, "  %s %s\n", RenderLabel("last connected"), srv.LastConnected.Local().Format("2006-01-02 15:04"))
		}

		channels, err := store.Channels(srv.Name)
		if err != nil {
			return err
		}
		for _, ch := range channels {
			var flags []string
			if ch.AutoJoin {
				flags = append(flags, "auto-join")
			}
			if ch.IsPrivate {
				flags = append(flags, "private")
			}
			line := "  " + ch.Name
			if len(flags) > 0 {
				line += " " + DimStyle.Render("("+strings.Join(flags, ", ")+")")
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}
