// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ircdesk command line.
//
// Commands:
//
//	ircdesk                      full-screen chat (line mode without a terminal)
//	ircdesk line                 line mode
//	ircdesk servers              saved servers and channels
//	ircdesk servers forget <s>   delete a saved server
//	ircdesk config show          effective configuration
//	ircdesk config path          config file location
//	ircdesk config init          write a default config file
//	ircdesk config get <key>     one setting
//	ircdesk config set <key> <v> change one setting
//	ircdesk config keys          every setting name
//
// Global flags: --config <path>, --log-level <level>, --metrics-addr <addr>.
package cli
