// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by ParseMode.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styled components of the chat window.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App     lipgloss.Style
	Header  lipgloss.Style
	Sidebar lipgloss.Style
	Divider lipgloss.Style

	// ==========================================================================
	// SIDEBAR ROWS
	// ==========================================================================

	ServerItem  lipgloss.Style
	ChannelItem lipgloss.Style
	ActiveItem  lipgloss.Style
	Preview     lipgloss.Style
	UnreadBadge lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	OwnBubble  lipgloss.Style
	ChatBubble lipgloss.Style
	SystemLine lipgloss.Style
	Timestamp  lipgloss.Style
	Sender     lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	StatusOK       lipgloss.Style
	StatusError    lipgloss.Style
	StatusWarning  lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	// Sidebar rows
	t.ServerItem = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ChannelItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.ActiveItem = lipgloss.NewStyle().
		Foreground(Purple).
		Background(SelectionBg).
		Bold(true)

	t.Preview = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	t.UnreadBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	// Messages
	t.OwnBubble = lipgloss.NewStyle().
		Foreground(OwnBubbleFg).
		Background(OwnBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OwnBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.ChatBubble = lipgloss.NewStyle().
		Foreground(ChatBubbleFg).
		Background(ChatBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ChatBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.SystemLine = lipgloss.NewStyle().
		Foreground(SystemFg).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Sender = lipgloss.NewStyle().
		Bold(true)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusWarning = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SenderStyle returns the sender style colored for nick.
func (t *Theme) SenderStyle(nick string) lipgloss.Style {
	return t.Sender.Foreground(NickColor(nick))
}

// ValidMode reports whether mode is a known theme name.
func ValidMode(mode string) bool {
	switch mode {
	case ModeAuto, ModeDark, ModeLight:
		return true
	}
	return false
}
