// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MaxMessages is the maximum number of messages kept per conversation.
// When exceeded, the oldest messages are dropped.
const MaxMessages = 1000

// FoldName returns the case-folded form of a channel or nick name, used to
// look conversations up regardless of how the server capitalised them.
func FoldName(name string) string {
	return cases.Fold().String(name)
}

// IsPrivateName reports whether name is a nick rather than a channel.
func IsPrivateName(name string) bool {
	return name != "" && !strings.HasPrefix(name, "#") && !strings.HasPrefix(name, "&")
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the messages of one channel, private chat, or server
// status view. It is not safe for concurrent use.
type Conversation struct {
	Server    string `json:"server"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`

	Messages    []*Message `json:"messages"`
	OwnNickname string     `json:"own_nickname"`

	// Sidebar state
	Unread        int       `json:"unread"`
	LastMessage   string    `json:"last_message"`
	LastSender    string    `json:"last_sender"`
	LastMessageAt time.Time `json:"last_message_at"`

	version         uint64
	renderedVersion uint64
}

// NewConversation creates an empty conversation.
func NewConversation(server, name string) *Conversation {
	return &Conversation{
		Server:    server,
		Name:      name,
		IsPrivate: IsPrivateName(name) && name != server,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a chat message. Messages from OwnNickname are marked own.
func (c *Conversation) AddMessage(sender, content string) *Message {
	kind := KindChat
	if nickEqual(sender, c.OwnNickname) {
		kind = KindOwn
	}
	msg := NewMessage(sender, content, kind)
	c.append(msg)
	return msg
}

// AddSystemMessage appends a system message.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.append(msg)
	return msg
}

func (c *Conversation) append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.pruneOldMessages()
	c.touch()
}

// pruneOldMessages drops the oldest messages beyond MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if excess := len(c.Messages) - MaxMessages; excess > 0 {
		// Copy so the dropped prefix can be collected
		kept := make([]*Message, MaxMessages)
		copy(kept, c.Messages[excess:])
		c.Messages = kept
	}
}

// SetOwnNickname changes our nickname and re-flags existing chat messages.
func (c *Conversation) SetOwnNickname(nick string) {
	if c.OwnNickname == nick {
		return
	}
	c.OwnNickname = nick
	for _, msg := range c.Messages {
		switch msg.Kind {
		case KindChat, KindOwn:
			if nickEqual(msg.Sender, nick) {
				msg.Kind = KindOwn
			} else {
				msg.Kind = KindChat
			}
		}
	}
	c.touch()
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessagesAfter returns the messages following the one with id. When id is
// empty or no longer held, every message is returned.
func (c *Conversation) MessagesAfter(id string) []*Message {
	if id != "" {
		for i := len(c.Messages) - 1; i >= 0; i-- {
			if c.Messages[i].ID == id {
				return c.Messages[i+1:]
			}
		}
	}
	return c.Messages
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// =============================================================================
// CHANGE TRACKING
// =============================================================================

// Changed reports whether the conversation changed since MarkRendered.
func (c *Conversation) Changed() bool {
	return c.version != c.renderedVersion
}

// MarkRendered records that the current state has been drawn.
func (c *Conversation) MarkRendered() {
	c.renderedVersion = c.version
}

// Version increases on every change.
func (c *Conversation) Version() uint64 {
	return c.version
}

func (c *Conversation) touch() {
	c.version++
}
