// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package irc

import (
	"testing"
	"time"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ircdesk/internal/app"
)

const server = "irc.libera.chat"

func parse(t *testing.T, line string) ircmsg.Message {
	t.Helper()
	msg, err := ircmsg.ParseLine(line)
	require.NoError(t, err)
	return msg
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want app.Event
	}{
		{
			name: "welcome",
			line: ":irc.libera.chat 001 me :Welcome to Libera.Chat",
			want: app.Event{Kind: app.EventConnected, Sender: "me", Self: true, Text: "Welcome to Libera.Chat"},
		},
		{
			name: "channel message",
			line: ":alice!a@host PRIVMSG #go :hello there",
			want: app.Event{Kind: app.EventMessage, Channel: "#go", Sender: "alice", Text: "hello there"},
		},
		{
			name: "private message lands on sender",
			line: ":alice!a@host PRIVMSG Me :psst",
			want: app.Event{Kind: app.EventMessage, Channel: "alice", Sender: "alice", Text: "psst"},
		},
		{
			name: "action",
			line: ":alice!a@host PRIVMSG #go :\x01ACTION waves\x01",
			want: app.Event{Kind: app.EventMessage, Channel: "#go", Sender: "alice", Text: "* alice waves"},
		},
		{
			name: "channel notice",
			line: ":ChanServ!s@services NOTICE #go :topic locked",
			want: app.Event{Kind: app.EventNotice, Channel: "#go", Sender: "ChanServ", Text: "topic locked"},
		},
		{
			name: "private notice goes to status",
			line: ":NickServ!s@services NOTICE me :identify please",
			want: app.Event{Kind: app.EventNotice, Sender: "NickServ", Text: "identify please"},
		},
		{
			name: "own join",
			line: ":me!m@host JOIN #go",
			want: app.Event{Kind: app.EventJoin, Channel: "#go", Sender: "me", Self: true},
		},
		{
			name: "part with reason",
			line: ":bob!b@host PART #go :gone fishing",
			want: app.Event{Kind: app.EventPart, Channel: "#go", Sender: "bob", Text: "gone fishing"},
		},
		{
			name: "kicked",
			line: ":op!o@host KICK #go me :spam",
			want: app.Event{Kind: app.EventPart, Channel: "#go", Sender: "me", Self: true, Text: "kicked by op: spam"},
		},
		{
			name: "own nick change",
			line: ":me!m@host NICK me_",
			want: app.Event{Kind: app.EventNick, Sender: "me", Self: true, Text: "me_"},
		},
		{
			name: "other nick change",
			line: ":bob!b@host NICK robert",
			want: app.Event{Kind: app.EventNick, Sender: "bob", Text: "robert"},
		},
		{
			name: "nick in use",
			line: ":irc.libera.chat 433 * me :Nickname is already in use",
			want: app.Event{Kind: app.EventNotice, Text: "me Nickname is already in use"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(server, "me", parse(t, tt.line))
			require.True(t, ok)
			tt.want.Server = server
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_Ignored(t *testing.T) {
	lines := []string{
		":irc.libera.chat PING :token",
		":alice!a@host PRIVMSG #go :\x01VERSION\x01",
		":alice!a@host NOTICE me :\x01VERSION ircdesk\x01",
		":alice!a@host JOIN",
		":irc.libera.chat 353 me = #go :alice bob",
	}
	for _, line := range lines {
		_, ok := Translate(server, "me", parse(t, line))
		assert.False(t, ok, line)
	}
}

func TestTranslate_NickAlreadyUpdated(t *testing.T) {
	// The library may have switched its nick before our callback runs
	ev, ok := Translate(server, "me_", parse(t, ":me!m@host NICK me_"))
	require.True(t, ok)
	assert.True(t, ev.Self)
}

func TestTranslate_ServerTime(t *testing.T) {
	ev, ok := Translate(server, "me", parse(t, "@time=2025-03-01T12:30:00.000Z :alice!a@host PRIVMSG #go :hi"))
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC), ev.Time.UTC())
}
