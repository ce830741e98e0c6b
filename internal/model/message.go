// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/ircdesk/internal/util"
)

// SystemSender is the sender shown on system messages.
const SystemSender = "System"

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind classifies a message for display.
type Kind int

const (
	// KindChat is a message from another user.
	KindChat Kind = iota
	// KindSystem is a client or server notice.
	KindSystem
	// KindOwn is a message sent under our own nickname.
	KindOwn
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindSystem:
		return "system"
	case KindOwn:
		return "own"
	default:
		return "unknown"
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single line in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(sender, content string, kind Kind) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
		Kind:      kind,
	}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(SystemSender, content, KindSystem)
}

// FormattedTime returns the time of day as HH:MM.
func (m *Message) FormattedTime() string {
	return m.Timestamp.Format("15:04")
}

// IsSystem reports whether the message is a notice rather than chat.
func (m *Message) IsSystem() bool {
	return m.Kind == KindSystem
}

// IsOwn reports whether we sent the message.
func (m *Message) IsOwn() bool {
	return m.Kind == KindOwn
}

// Preview returns the message on a single line, cut to maxWidth columns.
func (m *Message) Preview(maxWidth int) string {
	return util.TruncateWidth(util.SingleLine(m.Content), maxWidth)
}

// Summary is the "sender: content" form used in the chat list.
func (m *Message) Summary() string {
	if m.Kind == KindSystem {
		return util.SingleLine(m.Content)
	}
	return m.Sender + ": " + util.SingleLine(m.Content)
}

// nickEqual compares nicknames the way servers do for ASCII names.
func nickEqual(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
