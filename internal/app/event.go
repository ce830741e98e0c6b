// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what happened on a connection.
type EventKind int

const (
	// EventMessage is a channel or private message.
	EventMessage EventKind = iota
	// EventNotice is server or user text shown as a system line.
	EventNotice
	// EventJoin is someone (possibly us) joining a channel.
	EventJoin
	// EventPart is someone (possibly us) leaving a channel.
	EventPart
	// EventNick is a nickname change. Sender is the old nick, Text the new one.
	EventNick
	// EventConnected is the server accepting our registration.
	EventConnected
	// EventDisconnected is the connection closing. Text holds the reason.
	EventDisconnected
)

// String returns the label used in logs and metrics.
func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventNotice:
		return "notice"
	case EventJoin:
		return "join"
	case EventPart:
		return "part"
	case EventNick:
		return "nick"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is one inbound occurrence from a Session. Channel is the
// conversation it belongs to: a channel name, the peer's nick for private
// messages, or empty for server-wide events.
type Event struct {
	Kind    EventKind
	Server  string
	Channel string
	Sender  string
	Text    string
	// Self is set when Sender is our own nick.
	Self bool
	Time time.Time
}

// ServerParams describes a connection request.
type ServerParams struct {
	Server   string
	Port     int
	UseTLS   bool
	Password string
	Nickname string
	Username string
	Realname string
}

// Session is the connection layer. Implementations own the network and
// deliver Events on a channel; their methods must not block on the network.
type Session interface {
	Connect(p ServerParams) error
	Disconnect(server string) error
	Join(server, channel string) error
	Part(server, channel string) error
	Privmsg(server, target, text string) error
	Nick(server, nick string) error
	// Servers returns the servers with a live connection.
	Servers() []string
	Events() <-chan Event
}
