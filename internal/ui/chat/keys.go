// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat window.
type KeyMap struct {
	Submit    key.Binding
	NextChat  key.Binding
	PrevChat  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Complete  key.Binding
	CloseHelp key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "next conversation"),
		),
		PrevChat: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "previous conversation"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("Esc", "close help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextChat, k.Complete, k.Quit}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextChat, k.PrevChat, k.PageUp, k.PageDown},
		{k.Submit, k.Complete, k.CloseHelp, k.Quit},
	}
}
