// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/config"
)

// =============================================================================
// MESSAGES
// =============================================================================

// EventMsg carries one session event into Update.
type EventMsg app.Event

// eventsClosedMsg reports that the session's event channel closed.
type eventsClosedMsg struct{}

// TickMsg drives the refresh coordinator's periodic pass.
type TickMsg time.Time

// ConfigChangedMsg delivers a reloaded configuration.
type ConfigChangedMsg struct {
	Config *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForEvent reads the next session event.
func waitForEvent(events <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg(ev)
	}
}

// tickCmd schedules the next refresh tick.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
