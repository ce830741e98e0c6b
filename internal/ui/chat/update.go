// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/commands"
	"github.com/jeranaias/ircdesk/internal/config"
	"github.com/jeranaias/ircdesk/internal/ui/components"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles key presses, session events, refresh ticks and config
// reloads, then brings the viewport and the chrome up to date.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case EventMsg:
		m.reportErr(m.ctrl.HandleEvent(app.Event(msg)))
		cmds = append(cmds, waitForEvent(m.ctrl.Events()))

	case eventsClosedMsg:
		m.logger.Warn().Msg("session event channel closed")
		m.status.SetNotice("Connection layer stopped", components.NoticeError, m.now())

	case TickMsg:
		m.reportErr(m.ctrl.Tick(time.Time(msg)))
		cmds = append(cmds, tickCmd(m.tick))

	case ConfigChangedMsg:
		m.applyConfig(msg.Config)
	}

	if m.quitting {
		return m, tea.Quit
	}
	m.syncViewport()
	m.syncChrome()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.CloseHelp) {
			m.showHelp = false
			return nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		m.completion.Clear()
		m.submit()
		return nil
	case key.Matches(msg, m.keys.NextChat):
		m.cycle(1)
		return nil
	case key.Matches(msg, m.keys.PrevChat):
		m.cycle(-1)
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return nil
	case key.Matches(msg, m.keys.Complete):
		m.complete()
		return nil
	}

	m.completion.Clear()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// submit runs the input line. The line is kept when it fails so it can be
// corrected.
func (m *Model) submit() {
	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		return
	}

	server, channel, _ := m.ctrl.Chats().Active()
	ctx := &commands.Context{Ctrl: m.ctrl, Server: server, Channel: channel}
	res, err := commands.Submit(m.registry, ctx, input)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.input.Reset()

	if res.Notice != "" {
		m.status.SetNotice(res.Notice, components.NoticeInfo, m.now())
	}
	if res.Activate != nil {
		m.activate(res.Activate.Server, res.Activate.Channel)
	}
	if res.Help {
		m.openHelp()
	}
	if res.Quit {
		m.quitting = true
	}
}

// cycle activates the conversation step rows away from the active one.
func (m *Model) cycle(step int) {
	item, ok := m.ctrl.Chats().Cycle(step)
	if !ok {
		return
	}
	m.activate(item.Server, item.Channel)
}

// activate switches conversations and renders the new one at once, outside
// the coordinator's spacing, so the switch never shows stale content.
func (m *Model) activate(server, channel string) {
	if err := m.ctrl.Activate(server, channel); err != nil {
		m.reportErr(err)
		return
	}
	if key := m.activeKey(); !key.IsZero() {
		m.reportErr(m.renderer.Render(key))
	}
}

func (m *Model) complete() {
	if !m.completion.Active() {
		candidates := m.completer.Line(m.input.Value())
		if len(candidates) == 0 {
			return
		}
		m.completion.Start(m.input.Value(), candidates)
	}
	m.input.SetValue(m.completion.Next())
	m.input.CursorEnd()
}

// =============================================================================
// LAYOUT AND SETTINGS
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	bodyHeight := max(height-chromeHeight, 1)
	mainWidth := max(width-m.sidebar.Width-sidebarChrome, 10)

	m.viewport.Width, m.viewport.Height = mainWidth, bodyHeight
	m.help.Width, m.help.Height = mainWidth, bodyHeight
	m.input.Width = max(width-len(m.input.Prompt)-3, 1)
	m.status.Width = width

	opts := m.renderer.Options()
	opts.Width = mainWidth
	m.renderer.SetOptions(opts)

	if m.showHelp {
		m.openHelp()
	}
	m.ready = true
}

// applyConfig re-applies the UI section of a reloaded config.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	ui := cfg.UI

	if ui.Theme != m.ui.Theme {
		theme := styles.NewTheme(ui.Theme)
		m.theme = theme
		m.renderer.SetTheme(theme)
		m.sidebar = components.NewChatList(theme)
		width := m.status.Width
		m.status = components.NewStatusBar(theme)
		m.status.Width = width
		m.input.PromptStyle = theme.InputPrompt
	}
	if ui.SidebarWidth > 0 {
		m.sidebar.Width = ui.SidebarWidth
	}

	opts := m.renderer.Options()
	opts.ShowTimestamps = ui.ShowTimestamps
	opts.Compact = ui.CompactMode
	m.renderer.SetOptions(opts)

	m.ui = ui
	if m.ready {
		m.resize(m.width, m.height)
	}
	m.logger.Info().Str("theme", ui.Theme).Bool("compact", ui.CompactMode).Msg("settings reloaded")
	m.status.SetNotice("Settings reloaded", components.NoticeInfo, m.now())
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m *Model) openHelp() {
	content, err := renderHelp(commands.HelpMarkdown(m.registry), m.theme.IsDark, m.help.Width)
	if err != nil {
		m.logger.Debug().Err(err).Msg("markdown help failed, using plain text")
		content = commands.HelpText(m.registry)
	}
	m.help.SetContent(content)
	m.help.GotoTop()
	m.showHelp = true
}

// renderHelp renders the Markdown help page for the terminal background.
func renderHelp(markdown string, dark bool, width int) (string, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// =============================================================================
// SYNC
// =============================================================================

// syncViewport copies the active conversation's content into the viewport
// when the renderer produced something new or the active key changed. It
// stays at the bottom unless the user scrolled up.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	key := m.activeKey()
	if m.synced && key == m.shownKey && m.renderer.Generation() == m.shownGen {
		return
	}

	content := welcomeText
	if !key.IsZero() {
		var ok bool
		if content, ok = m.renderer.View(key); !ok {
			// Never rendered at this width
			m.reportErr(m.renderer.Render(key))
			content, _ = m.renderer.View(key)
		}
	}

	follow := key != m.shownKey || m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if follow {
		m.viewport.GotoBottom()
	}
	m.synced = true
	m.shownKey, m.shownGen = key, m.renderer.Generation()
}

// syncChrome refreshes the sidebar rows, the status bar and the placeholder.
func (m *Model) syncChrome() {
	chats := m.ctrl.Chats()
	m.sidebar.Items = chats.Items()

	server, channel, _ := chats.Active()
	m.status.Server, m.status.Channel = server, channel
	m.status.Nick = chats.OwnNickname(server)

	connected := 0
	for _, s := range chats.Servers() {
		if m.ctrl.Connected(s) {
			connected++
		}
	}
	m.status.Connected = connected
	m.input.Placeholder = placeholder(server, channel)
}

func placeholder(server, channel string) string {
	switch {
	case server == "":
		return "/connect irc.libera.chat to start"
	case channel == server:
		return "/join #channel"
	default:
		return "Message " + channel
	}
}

// reportErr shows err in the status bar. Rate limiting is a warning.
func (m *Model) reportErr(err error) {
	if err == nil {
		return
	}
	level := components.NoticeError
	if errors.Is(err, app.ErrRateLimited) {
		level = components.NoticeWarning
	}
	m.logger.Debug().Err(err).Msg("reported to user")
	m.status.SetNotice(err.Error(), level, m.now())
}
