// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package irc

import (
	"errors"
	"testing"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/metrics"
)

func TestSession_EmitDropsWhenFull(t *testing.T) {
	s := NewSession(1)
	before := testutil.ToFloat64(metrics.GetMetrics().EventsDropped)

	s.emit(app.Event{Kind: app.EventMessage, Server: server})
	s.emit(app.Event{Kind: app.EventMessage, Server: server})

	assert.Len(t, s.events, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.GetMetrics().EventsDropped))
}

func TestSession_ConnectRegistersConnection(t *testing.T) {
	s := NewSession(4)
	block := make(chan struct{})
	s.run = func(*ircevent.Connection) error {
		<-block
		return nil
	}
	defer close(block)

	require.NoError(t, s.Connect(app.ServerParams{Server: server, Port: 6697, UseTLS: true, Nickname: "me"}))
	assert.Equal(t, []string{server}, s.Servers())

	err := s.Connect(app.ServerParams{Server: server, Nickname: "me"})
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	conn, err := s.conn(server)
	require.NoError(t, err)
	assert.Equal(t, "irc.libera.chat:6697", conn.Server)
	assert.True(t, conn.UseTLS)
	assert.Equal(t, "me", conn.User)
	assert.Equal(t, "me", conn.RealName)
}

func TestSession_ConnectFailureEmitsDisconnected(t *testing.T) {
	s := NewSession(4)
	s.run = func(*ircevent.Connection) error {
		return errors.New("dial tcp: connection refused")
	}

	require.NoError(t, s.Connect(app.ServerParams{Server: server, Port: 6667, Nickname: "me"}))

	select {
	case ev := <-s.Events():
		assert.Equal(t, app.EventDisconnected, ev.Kind)
		assert.Equal(t, server, ev.Server)
		assert.Contains(t, ev.Text, "connection refused")
	case <-time.After(time.Second):
		t.Fatal("no disconnect event")
	}
	assert.Eventually(t, func() bool { return len(s.Servers()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestSession_UnknownServer(t *testing.T) {
	s := NewSession(0)

	assert.ErrorIs(t, s.Join("nowhere", "#go"), ErrUnknownServer)
	assert.ErrorIs(t, s.Part("nowhere", "#go"), ErrUnknownServer)
	assert.ErrorIs(t, s.Privmsg("nowhere", "#go", "hi"), ErrUnknownServer)
	assert.ErrorIs(t, s.Nick("nowhere", "me"), ErrUnknownServer)
	assert.ErrorIs(t, s.Disconnect("nowhere"), ErrUnknownServer)
	assert.Error(t, s.Connect(app.ServerParams{Server: server}))
	assert.Equal(t, DefaultEventBuffer, cap(s.events))
}

func TestSession_MessageHandlerEmitsEvents(t *testing.T) {
	s := NewSession(4)
	nick := "me"
	onMessage := s.messageHandler(server, func() string { return nick })

	onMessage(parse(t, ":alice!a@example.org PRIVMSG #go :hello gophers"))
	select {
	case ev := <-s.Events():
		assert.Equal(t, app.EventMessage, ev.Kind)
		assert.Equal(t, server, ev.Server)
		assert.Equal(t, "#go", ev.Channel)
		assert.Equal(t, "alice", ev.Sender)
		assert.Equal(t, "hello gophers", ev.Text)
		assert.False(t, ev.Self)
	default:
		t.Fatal("no event for PRIVMSG")
	}

	// The nick is read per message
	nick = "me2"
	onMessage(parse(t, ":alice!a@example.org PRIVMSG me2 :psst"))
	ev := <-s.Events()
	assert.Equal(t, "alice", ev.Channel, "private message lands in the sender's conversation")

	onMessage(parse(t, ":alice!a@example.org PRIVMSG me2 :\x01VERSION\x01"))
	assert.Empty(t, s.events, "CTCP queries have no visible effect")
}

func TestSession_DisconnectHandlerEmitsEvent(t *testing.T) {
	s := NewSession(4)

	s.disconnectHandler(server)(ircmsg.Message{})

	ev := <-s.Events()
	assert.Equal(t, app.EventDisconnected, ev.Kind)
	assert.Equal(t, server, ev.Server)
	assert.Equal(t, "connection closed", ev.Text)
}

func TestSession_NewConnectionRegistersCallbacks(t *testing.T) {
	s := NewSession(4)

	conn := s.newConnection(app.ServerParams{Server: server, Port: 6667, Nickname: "me"})

	assert.Equal(t, "irc.libera.chat:6667", conn.Server)
	assert.Equal(t, "me", conn.Nick)
	assert.NotNil(t, conn.Log)
}
