// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat window.

# Layout

	┌ header ───────────────────────────────────────┐
	│ sidebar (chat list) │ message viewport        │
	│                     │                         │
	├ input line ───────────────────────────────────┤
	└ status bar ───────────────────────────────────┘

# Rendering

Conversation content is produced by a Renderer, which is the render
callback handed to the refresh coordinator. Each render rebuilds and caches
the content of one conversation; the Model copies the active conversation's
cached content into its viewport whenever the renderer's generation moves.
Switching conversations renders the newly active one directly so the user
never sees stale content.

Session events, refresh ticks, and key presses are all handled inside
Update, so the controller and the coordinator only ever run on the Bubble
Tea goroutine.

# Usage

	renderer := chat.NewRenderer(chats, theme, opts)
	coord, _ := refresh.New(cfg.RefreshCoordinatorConfig(), renderer.Render)
	ctrl, _ := app.NewController(app.Deps{...})
	p := tea.NewProgram(chat.New(chat.Options{Controller: ctrl, Renderer: renderer}), tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
