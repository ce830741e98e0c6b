// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"
)

// =============================================================================
// HELP TEXT GENERATION
// =============================================================================

// keyHelp lists the chat window shortcuts.
var keyHelp = [][2]string{
	{"Enter", "Send message or run command"},
	{"Ctrl+N / Ctrl+P", "Next / previous conversation"},
	{"PgUp / PgDn", "Scroll messages"},
	{"Tab", "Complete command or channel"},
	{"Esc", "Close help"},
	{"Ctrl+C", "Quit"},
}

// HelpMarkdown renders the command reference as Markdown for the chat window.
func HelpMarkdown(r *Registry) string {
	var sb strings.Builder
	sb.WriteString("# ircdesk\n\n")
	sb.WriteString("Type text to send it to the active conversation. ")
	sb.WriteString("Start a line with `//` to send text beginning with a slash.\n\n")

	categories := r.ByCategory()
	for _, category := range categoryOrder {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n| Command | Description |\n|---|---|\n", category)
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			desc := cmd.Description
			if len(cmd.Aliases) > 0 {
				desc += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&sb, "| `%s` | %s |\n", usage, desc)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, k := range keyHelp {
		fmt.Fprintf(&sb, "| %s | %s |\n", k[0], k[1])
	}
	return sb.String()
}

// HelpText renders the command reference as plain aligned text for line mode.
func HelpText(r *Registry) string {
	var sb strings.Builder
	categories := r.ByCategory()
	for _, category := range categoryOrder {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString(category + "\n")
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&sb, "  %-40s %s\n", usage, cmd.Description)
		}
	}
	return sb.String()
}
