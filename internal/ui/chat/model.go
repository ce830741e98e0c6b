// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/commands"
	"github.com/jeranaias/ircdesk/internal/config"
	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/ui/components"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

const (
	// chromeHeight is the header, the bordered input line and the status bar.
	chromeHeight = 4
	// sidebarChrome is the sidebar's padding, border and gutter.
	sidebarChrome = 3
	// maxInputLength keeps a PRIVMSG inside the 512 byte line limit.
	maxInputLength = 400
	defaultTick    = 250 * time.Millisecond
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configure a Model. Controller and Renderer are required; Renderer
// must be the render callback of the controller's coordinator.
type Options struct {
	Controller *app.Controller
	Renderer   *Renderer
	// Registry defaults to commands.NewRegistry().
	Registry     *commands.Registry
	UI           config.UIConfig
	TickInterval time.Duration
	// Now is the clock used for notices; defaults to time.Now.
	Now func() time.Time
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat window.
type Model struct {
	ctrl       *app.Controller
	registry   *commands.Registry
	completer  *commands.Completer
	completion *commands.CompletionState
	renderer   *Renderer
	theme      *styles.Theme
	ui         config.UIConfig
	keys       KeyMap

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	sidebar  *components.ChatList
	status   *components.StatusBar

	// Help overlay
	showHelp bool
	help     viewport.Model

	width  int
	height int
	ready  bool

	// what the viewport currently shows
	synced   bool
	shownKey refresh.Key
	shownGen uint64

	tick     time.Duration
	now      func() time.Time
	quitting bool
	logger   zerolog.Logger
}

// New creates the chat window.
func New(o Options) Model {
	registry := o.Registry
	if registry == nil {
		registry = commands.NewRegistry()
	}
	tick := o.TickInterval
	if tick <= 0 {
		tick = defaultTick
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	theme := o.Renderer.Theme()

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.CharLimit = maxInputLength
	input.Focus()

	sidebar := components.NewChatList(theme)
	if o.UI.SidebarWidth > 0 {
		sidebar.Width = o.UI.SidebarWidth
	}

	ctrl := o.Controller
	completer := commands.NewCompleter(registry)
	completer.ServersFn = ctrl.Chats().Servers
	completer.ChannelsFn = func() []string {
		server, _, ok := ctrl.Chats().Active()
		if !ok {
			return nil
		}
		var names []string
		for _, conv := range ctrl.Chats().Conversations(server) {
			if conv.Name != server {
				names = append(names, conv.Name)
			}
		}
		return names
	}

	m := Model{
		ctrl:       ctrl,
		registry:   registry,
		completer:  completer,
		completion: &commands.CompletionState{},
		renderer:   o.Renderer,
		theme:      theme,
		ui:         o.UI,
		keys:       DefaultKeyMap(),
		viewport:   viewport.New(0, 0),
		input:      input,
		sidebar:    sidebar,
		status:     components.NewStatusBar(theme),
		help:       viewport.New(0, 0),
		tick:       tick,
		now:        now,
		logger:     logging.Component("chat"),
	}
	m.syncChrome()
	return m
}

// Init starts the event reader and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForEvent(m.ctrl.Events()),
		tickCmd(m.tick),
	)
}

// activeKey is the refresh key of the active conversation, or the zero key.
func (m *Model) activeKey() refresh.Key {
	server, channel, ok := m.ctrl.Chats().Active()
	if !ok {
		return refresh.Key{}
	}
	return app.KeyFor(server, channel)
}
