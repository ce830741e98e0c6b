// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one message.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
}

// NewMessageBubble creates a bubble 80 columns wide with timestamps.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}
	switch b.Message.Kind {
	case model.KindSystem:
		return b.renderSystem()
	case model.KindOwn:
		return b.renderOwn()
	default:
		return b.renderChat()
	}
}

func (b *MessageBubble) renderOwn() string {
	content := wordWrap(b.Message.Content, b.contentWidth())
	bubble := b.theme.OwnBubble.Render(content)

	header := b.theme.SenderStyle(b.Message.Sender).Render(b.Message.Sender)
	if ts := b.timestamp(); ts != "" {
		header += " " + ts
	}

	block := lipgloss.JoinVertical(lipgloss.Right, header, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

func (b *MessageBubble) renderChat() string {
	content := wordWrap(b.Message.Content, b.contentWidth())
	bubble := b.theme.ChatBubble.Render(content)

	header := b.theme.SenderStyle(b.Message.Sender).Render(b.Message.Sender)
	if ts := b.timestamp(); ts != "" {
		header += " " + ts
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
}

func (b *MessageBubble) renderSystem() string {
	line := "-- " + b.Message.Content
	if ts := b.timestamp(); ts != "" {
		line = ts + " " + line
	}
	return b.theme.SystemLine.Render(wordWrap(line, b.Width))
}

func (b *MessageBubble) timestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	return b.theme.Timestamp.Render(b.Message.FormattedTime())
}

// contentWidth leaves room for the border, padding and margin of a bubble.
func (b *MessageBubble) contentWidth() int {
	w := b.Width - 8
	if w < 10 {
		w = 10
	}
	return w
}

// =============================================================================
// CONVERSATION
// =============================================================================

// RenderOptions control how a conversation is laid out.
type RenderOptions struct {
	Width          int
	ShowTimestamps bool
	// Compact renders one "<nick> text" line per message instead of bubbles.
	Compact bool
}

// RenderMessages renders a conversation's messages top to bottom.
func RenderMessages(messages []*model.Message, opts RenderOptions, theme *styles.Theme) string {
	if len(messages) == 0 {
		return theme.SystemLine.Render("No messages yet.")
	}
	sep := "\n"
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if opts.Compact {
			parts = append(parts, CompactLine(msg, opts, theme))
			continue
		}
		bubble := NewMessageBubble(msg, theme)
		bubble.Width = opts.Width
		bubble.ShowTimestamp = opts.ShowTimestamps
		parts = append(parts, bubble.View())
	}
	return strings.Join(parts, sep)
}

// CompactLine renders msg as a single wrapped IRC-style line.
func CompactLine(msg *model.Message, opts RenderOptions, theme *styles.Theme) string {
	var b strings.Builder
	if opts.ShowTimestamps {
		b.WriteString(theme.Timestamp.Render(msg.FormattedTime()))
		b.WriteString(" ")
	}
	if msg.IsSystem() {
		b.WriteString(theme.SystemLine.Render("-- " + msg.Content))
	} else {
		b.WriteString(theme.SenderStyle(msg.Sender).Render("<" + msg.Sender + ">"))
		b.WriteString(" ")
		b.WriteString(msg.Content)
	}
	return wordWrap(b.String(), opts.Width)
}

// wordWrap wraps at word boundaries and hard-breaks words longer than width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}
