// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the chat
// window and line mode.
//
// # Key Types
//
//   - Registry: every built-in command with its handler
//   - Context: the controller plus the conversation the user is looking at
//   - Result: what the UI should do after a command (switch, help, quit)
//   - Completer: tab completion for command names and arguments
//
// # Built-in Commands
//
//   - /connect, /disconnect: open and close server connections
//   - /join, /part, /msg: manage conversations
//   - /nick, /autojoin: identity and per-channel settings
//   - /help, /quit
//
// # Usage
//
// Submit handles both commands and plain text, which is sent to the active
// conversation:
//
//	res, err := commands.Submit(registry, &commands.Context{Ctrl: ctrl, Server: s, Channel: c}, input)
//
// Handlers call the app.Controller directly, so Submit must run on the
// goroutine that owns the controller.
package commands
