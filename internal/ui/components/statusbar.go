// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ircdesk/internal/ui/styles"
	"github.com/jeranaias/ircdesk/internal/util"
)

// NoticeLevel is the severity of a status bar notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// noticeTTL is how long a notice stays visible.
const noticeTTL = 5 * time.Second

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar shows the active conversation, our nick, the number of live
// connections, and the latest notice.
type StatusBar struct {
	Width     int
	Nick      string
	Server    string
	Channel   string
	Connected int
	notice    string
	level     NoticeLevel
	noticeAt  time.Time
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetNotice shows msg until it expires at now plus noticeTTL.
func (s *StatusBar) SetNotice(msg string, level NoticeLevel, now time.Time) {
	s.notice = util.SingleLine(msg)
	s.level = level
	s.noticeAt = now
}

// Notice returns the current notice text, or "" once it has expired.
func (s *StatusBar) Notice(now time.Time) string {
	if s.notice == "" || now.Sub(s.noticeAt) > noticeTTL {
		return ""
	}
	return s.notice
}

// View renders the bar at now.
func (s *StatusBar) View(now time.Time) string {
	var left []string
	if s.Connected > 0 {
		left = append(left, s.theme.StatusOK.Render("●"))
	} else {
		left = append(left, s.theme.StatusError.Render("○"))
	}
	if s.Nick != "" {
		left = append(left, s.Nick)
	}
	if s.Server != "" {
		where := s.Server
		if s.Channel != "" && s.Channel != s.Server {
			where = s.Channel + " @ " + s.Server
		}
		left = append(left, where)
	}
	if notice := s.Notice(now); notice != "" {
		left = append(left, s.noticeStyle().Render(notice))
	}

	right := s.theme.ShortcutKey.Render("^N/^P") + " " + s.theme.ShortcutDesc.Render("switch") + "  " +
		s.theme.ShortcutKey.Render("/help")

	leftText := strings.Join(left, "  ")
	gap := s.Width - lipgloss.Width(leftText) - lipgloss.Width(right) - 2
	if gap < 1 {
		return s.theme.StatusBar.Width(s.Width).Render(leftText)
	}
	return s.theme.StatusBar.Width(s.Width).Render(leftText + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) noticeStyle() lipgloss.Style {
	switch s.level {
	case NoticeError:
		return s.theme.StatusError
	case NoticeWarning:
		return s.theme.StatusWarning
	default:
		return s.theme.ShortcutDesc
	}
}
