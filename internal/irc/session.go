// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package irc

import (
	"errors"
	"fmt"
	"log"
	"net"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/metrics"
)

// ErrUnknownServer is returned for commands on a server with no connection.
var ErrUnknownServer = errors.New("no connection to server")

// ErrAlreadyConnected is returned by Connect for a server that already has one.
var ErrAlreadyConnected = errors.New("already connected")

// DefaultEventBuffer is used when NewSession gets a non-positive size.
const DefaultEventBuffer = 256

// =============================================================================
// SESSION
// =============================================================================

// Session implements app.Session on top of ircevent, one Connection per
// server. Library callbacks never block: when the event buffer is full the
// event is dropped and counted.
type Session struct {
	mu     sync.Mutex
	conns  map[string]*ircevent.Connection
	events chan app.Event
	logger zerolog.Logger

	// run dials and serves a connection until it quits
	run func(*ircevent.Connection) error
}

// NewSession creates a Session whose event channel holds buffer events.
func NewSession(buffer int) *Session {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Session{
		conns:  make(map[string]*ircevent.Connection),
		events: make(chan app.Event, buffer),
		logger: logging.Component("irc"),
		run:    serve,
	}
}

func serve(conn *ircevent.Connection) error {
	if err := conn.Connect(); err != nil {
		return err
	}
	conn.Loop()
	return nil
}

// Events returns the inbound event channel. It is never closed.
func (s *Session) Events() <-chan app.Event {
	return s.events
}

// Connect starts connecting to p.Server in the background. Registration
// success arrives as an EventConnected, failure as an EventDisconnected.
func (s *Session) Connect(p app.ServerParams) error {
	if p.Server == "" || p.Nickname == "" {
		return errors.New("irc: server and nickname are required")
	}

	s.mu.Lock()
	if _, ok := s.conns[p.Server]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", p.Server, ErrAlreadyConnected)
	}
	conn := s.newConnection(p)
	s.conns[p.Server] = conn
	s.mu.Unlock()

	go func() {
		err := s.run(conn)
		if err != nil {
			s.logger.Warn().Err(err).Str("server", p.Server).Msg("connection failed")
			s.forget(p.Server, conn)
			s.emit(app.Event{Kind: app.EventDisconnected, Server: p.Server, Text: err.Error(), Time: time.Now()})
		}
	}()
	return nil
}

func (s *Session) newConnection(p app.ServerParams) *ircevent.Connection {
	user := p.Username
	if user == "" {
		user = p.Nickname
	}
	realname := p.Realname
	if realname == "" {
		realname = p.Nickname
	}

	conn := &ircevent.Connection{
		Server:      net.JoinHostPort(p.Server, strconv.Itoa(p.Port)),
		UseTLS:      p.UseTLS,
		Password:    p.Password,
		Nick:        p.Nickname,
		User:        user,
		RealName:    realname,
		RequestCaps: []string{"server-time", "message-tags"},
		Log:         log.New(s.logger.With().Str("server", p.Server).Logger(), "", 0),
	}

	onMessage := s.messageHandler(p.Server, conn.CurrentNick)
	for _, command := range handledCommands {
		conn.AddCallback(command, onMessage)
	}
	conn.AddDisconnectCallback(s.disconnectHandler(p.Server))
	return conn
}

// messageHandler translates library callbacks for server into events.
// ownNick is read per message so nick changes are seen.
func (s *Session) messageHandler(server string, ownNick func() string) func(ircmsg.Message) {
	return func(msg ircmsg.Message) {
		if ev, ok := Translate(server, ownNick(), msg); ok {
			s.emit(ev)
		}
	}
}

func (s *Session) disconnectHandler(server string) func(ircmsg.Message) {
	return func(ircmsg.Message) {
		s.emit(app.Event{Kind: app.EventDisconnected, Server: server, Text: "connection closed", Time: time.Now()})
	}
}

// Disconnect sends QUIT and forgets the connection.
func (s *Session) Disconnect(server string) error {
	s.mu.Lock()
	conn, ok := s.conns[server]
	delete(s.conns, server)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", server, ErrUnknownServer)
	}
	conn.Quit()
	return nil
}

// Close quits every connection.
func (s *Session) Close() error {
	for _, server := range s.Servers() {
		_ = s.Disconnect(server)
	}
	return nil
}

// Servers returns the servers with a connection, connecting or registered,
// in sorted order.
func (s *Session) Servers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	servers := make([]string, 0, len(s.conns))
	for name := range s.conns {
		servers = append(servers, name)
	}
	slices.Sort(servers)
	return servers
}

// Join sends JOIN.
func (s *Session) Join(server, channel string) error {
	conn, err := s.conn(server)
	if err != nil {
		return err
	}
	return conn.Join(channel)
}

// Part sends PART.
func (s *Session) Part(server, channel string) error {
	conn, err := s.conn(server)
	if err != nil {
		return err
	}
	return conn.Part(channel)
}

// Privmsg sends PRIVMSG.
func (s *Session) Privmsg(server, target, text string) error {
	conn, err := s.conn(server)
	if err != nil {
		return err
	}
	return conn.Privmsg(target, text)
}

// Nick asks the server for a new nickname.
func (s *Session) Nick(server, nick string) error {
	conn, err := s.conn(server)
	if err != nil {
		return err
	}
	conn.SetNick(nick)
	return nil
}

func (s *Session) conn(server string) (*ircevent.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[server]
	if !ok {
		return nil, fmt.Errorf("%s: %w", server, ErrUnknownServer)
	}
	return conn, nil
}

// forget drops conn if it is still the registered connection for server.
func (s *Session) forget(server string, conn *ircevent.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns[server] == conn {
		delete(s.conns, server)
	}
}

func (s *Session) emit(ev app.Event) {
	select {
	case s.events <- ev:
	default:
		metrics.GetMetrics().EventsDropped.Inc()
		s.logger.Warn().
			Str("server", ev.Server).
			Str("kind", ev.Kind.String()).
			Msg("event buffer full, dropping event")
	}
}

var _ app.Session = (*Session)(nil)
