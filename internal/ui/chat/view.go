// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"
)

const welcomeText = "Welcome to ircdesk.\n\n" +
	"  /connect irc.libera.chat   connect to a network\n" +
	"  /join #go-nuts             join a channel\n" +
	"  /help                      all commands and keys"

// =============================================================================
// VIEW
// =============================================================================

// View renders the header, the sidebar next to the messages (or the help
// overlay), the input line and the status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting ircdesk..."
	}

	header := m.theme.Header.Width(m.width).Render(m.title())

	bodyHeight := m.viewport.Height
	sidebar := m.theme.Sidebar.
		Width(m.sidebar.Width + 1).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(m.sidebar.View())

	main := m.viewport.View()
	if m.showHelp {
		main = m.help.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)

	input := m.theme.InputContainer.Width(m.width).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		input,
		m.status.View(m.now()),
	)
}

func (m Model) title() string {
	server, channel, ok := m.ctrl.Chats().Active()
	switch {
	case !ok:
		return "ircdesk"
	case channel == server:
		return "ircdesk · " + server
	default:
		return "ircdesk · " + channel + " @ " + server
	}
}
