// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ircdesk/internal/config"
	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/metrics"
	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/storage"
)

// Sentinel errors returned by Controller operations.
var (
	ErrEmptyTarget         = errors.New("empty server or target")
	ErrEmptyMessage        = errors.New("empty message")
	ErrUnknownConversation = errors.New("unknown conversation")
	ErrNotConnected        = errors.New("not connected")
	ErrRateLimited         = errors.New("sending too fast")
	ErrInvalidNickname     = errors.New("invalid nickname")
)

// KeyFor returns the refresh key of a conversation. Channel names are folded
// so differently capitalised announcements land on one key; the server
// status view keeps the server name as its channel.
func KeyFor(server, channel string) refresh.Key {
	if channel == server {
		return refresh.NewKey(server, channel)
	}
	return refresh.NewKey(server, model.FoldName(channel))
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Deps are the collaborators of a Controller.
type Deps struct {
	Session Session
	Store   *storage.Store
	Chats   *model.ChatList
	Refresh *refresh.Coordinator
	Config  *config.Config
}

// Controller applies user actions and session events to the chat list,
// persists settings, and announces every change to the refresh coordinator.
// It is not safe for concurrent use; drive it from one goroutine (see Loop).
type Controller struct {
	session Session
	store   *storage.Store
	chats   *model.ChatList
	coord   *refresh.Coordinator
	cfg     *config.Config
	limiter *rate.Limiter
	logger  zerolog.Logger

	// channels to join once a server finishes registration
	autoJoin map[string][]string
}

// NewController wires a Controller. Session, Store, Chats and Refresh are required.
func NewController(d Deps) (*Controller, error) {
	if d.Session == nil || d.Store == nil || d.Chats == nil || d.Refresh == nil {
		return nil, errors.New("controller: session, store, chats and refresh are required")
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Controller{
		session:  d.Session,
		store:    d.Store,
		chats:    d.Chats,
		coord:    d.Refresh,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Network.SendRatePerSec), cfg.Network.SendBurst),
		logger:   logging.Component("app"),
		autoJoin: make(map[string][]string),
	}, nil
}

// Chats returns the chat list.
func (c *Controller) Chats() *model.ChatList { return c.chats }

// Store returns the settings store.
func (c *Controller) Store() *storage.Store { return c.store }

// Events returns the session's event channel.
func (c *Controller) Events() <-chan Event { return c.session.Events() }

// Connected reports whether server has a live connection.
func (c *Controller) Connected(server string) bool {
	return slices.Contains(c.session.Servers(), server)
}

// =============================================================================
// CONNECTIONS
// =============================================================================

// ConnectServer opens a connection. Missing identity fields come from the
// config and then the stored profile. An explicit nickname is saved as the
// new profile.
func (c *Controller) ConnectServer(p ServerParams) error {
	return c.connect(p, p.Nickname != "")
}

func (c *Controller) connect(p ServerParams, saveProfile bool) error {
	if p.Server == "" {
		return ErrEmptyTarget
	}
	if p.Port == 0 {
		p.Port = c.cfg.Network.DefaultPort
	}
	if p.Password == "" {
		p.Password = c.cfg.Network.Password
	}

	profile, err := c.store.Profile()
	if err != nil {
		return fmt.Errorf("connect %s: %w", p.Server, err)
	}
	if p.Nickname == "" {
		p.Nickname = c.cfg.Identity.Nickname
	}
	if p.Nickname == "" {
		p.Nickname = profile.Nickname
	}
	if p.Username == "" {
		p.Username = firstNonEmpty(c.cfg.Identity.Username, sameNick(p.Nickname, profile.Nickname, profile.Username))
	}
	if p.Realname == "" {
		p.Realname = firstNonEmpty(c.cfg.Identity.Realname, sameNick(p.Nickname, profile.Nickname, profile.Realname))
	}
	if saveProfile && p.Nickname != profile.Nickname {
		if err := c.store.SaveProfile(p.Nickname, p.Username, p.Realname); err != nil {
			c.logger.Warn().Err(err).Msg("saving profile failed")
		}
	}

	if err := c.session.Connect(p); err != nil {
		c.logger.Error().Err(err).Str("server", p.Server).Int("port", p.Port).Msg("connect failed")
		return fmt.Errorf("connect %s: %w", p.Server, err)
	}
	c.logger.Info().Str("server", p.Server).Int("port", p.Port).Bool("tls", p.UseTLS).Msg("connecting")

	c.chats.AddServer(p.Server)
	c.chats.SetOwnNickname(p.Server, p.Nickname)
	c.chats.AddSystemMessage(p.Server, p.Server, fmt.Sprintf("Connecting to %s:%d as %s...", p.Server, p.Port, p.Nickname))

	if err := c.store.SaveServer(storage.Server{
		Name:     p.Server,
		Port:     p.Port,
		UseTLS:   p.UseTLS,
		Nickname: p.Nickname,
		Username: p.Username,
		Realname: p.Realname,
	}); err != nil {
		c.logger.Warn().Err(err).Str("server", p.Server).Msg("saving server failed")
	}
	return c.notify(p.Server, p.Server)
}

// DisconnectServer closes a connection, forgets the server and its saved
// channels, and drops every conversation of it.
func (c *Controller) DisconnectServer(server string) error {
	if server == "" {
		return ErrEmptyTarget
	}
	var errs []error
	if c.Connected(server) {
		if err := c.session.Disconnect(server); err != nil {
			errs = append(errs, fmt.Errorf("disconnect %s: %w", server, err))
		}
	}
	for _, conv := range c.chats.Conversations(server) {
		c.coord.RemoveKey(KeyFor(server, conv.Name))
	}
	c.chats.RemoveServer(server)
	delete(c.autoJoin, server)

	if err := c.store.DeleteServer(server); err != nil && !errors.Is(err, storage.ErrNotFound) {
		errs = append(errs, err)
	}
	c.logger.Info().Str("server", server).Msg("disconnected")
	return errors.Join(errs...)
}

// JoinChannel joins a channel, or opens a private conversation when channel
// is a nick, and remembers it for auto-join.
func (c *Controller) JoinChannel(server, channel string) error {
	if server == "" || channel == "" || channel == server {
		return ErrEmptyTarget
	}
	if !c.Connected(server) {
		return fmt.Errorf("join %s: %w to %s", channel, ErrNotConnected, server)
	}

	private := model.IsPrivateName(channel)
	if private {
		c.chats.AddChannel(server, channel)
	} else if err := c.session.Join(server, channel); err != nil {
		return fmt.Errorf("join %s on %s: %w", channel, server, err)
	}

	if err := c.store.SaveChannel(storage.Channel{
		Server:    server,
		Name:      channel,
		IsPrivate: private,
		AutoJoin:  true,
	}); err != nil {
		c.logger.Warn().Err(err).Str("server", server).Str("channel", channel).Msg("saving channel failed")
	}

	if private {
		return c.notify(server, channel)
	}
	return nil
}

// LeaveChannel parts a channel or closes a private conversation and forgets it.
func (c *Controller) LeaveChannel(server, channel string) error {
	if server == "" || channel == "" || channel == server {
		return ErrEmptyTarget
	}
	conv, ok := c.chats.Get(server, channel)
	if ok {
		channel = conv.Name
	}

	var errs []error
	if !model.IsPrivateName(channel) && c.Connected(server) {
		if err := c.session.Part(server, channel); err != nil {
			errs = append(errs, fmt.Errorf("part %s on %s: %w", channel, server, err))
		}
	}
	c.chats.RemoveChannel(server, channel)
	c.coord.RemoveKey(KeyFor(server, channel))

	if err := c.store.DeleteChannel(server, channel); err != nil && !errors.Is(err, storage.ErrNotFound) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// =============================================================================
// MESSAGES
// =============================================================================

// SendMessage sends text to a channel or nick and echoes it locally.
func (c *Controller) SendMessage(server, target, text string) error {
	if server == "" || target == "" {
		return ErrEmptyTarget
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	conv, ok := c.chats.Get(server, target)
	if !ok || target == server {
		return fmt.Errorf("send to %s on %s: %w", target, server, ErrUnknownConversation)
	}
	if !c.Connected(server) {
		return fmt.Errorf("send to %s: %w to %s", target, ErrNotConnected, server)
	}
	if !c.limiter.Allow() {
		metrics.GetMetrics().SendsLimited.Inc()
		return ErrRateLimited
	}
	if err := c.session.Privmsg(server, conv.Name, text); err != nil {
		return fmt.Errorf("send to %s on %s: %w", conv.Name, server, err)
	}

	c.chats.AddMessage(server, conv.Name, c.chats.OwnNickname(server), text)
	return c.notify(server, conv.Name)
}

// Activate makes a conversation the visible one. An empty server clears the
// selection.
func (c *Controller) Activate(server, channel string) error {
	if server == "" {
		c.chats.SetActive("", "")
		c.coord.SetActiveKey(refresh.Key{})
		return nil
	}
	if !c.chats.SetActive(server, channel) {
		return fmt.Errorf("activate %s on %s: %w", channel, server, ErrUnknownConversation)
	}
	_, name, _ := c.chats.Active()
	c.coord.SetActiveKey(KeyFor(server, name))
	return nil
}

// Tick runs the periodic refresh pass.
func (c *Controller) Tick(now time.Time) error {
	return c.coord.Tick(now)
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

// HandleEvent applies a session event and announces the touched
// conversations. The returned error is from renderers that ran.
func (c *Controller) HandleEvent(ev Event) error {
	metrics.GetMetrics().EventsReceived.WithLabelValues(ev.Kind.String()).Inc()
	c.logger.Debug().
		Str("kind", ev.Kind.String()).
		Str("server", ev.Server).
		Str("channel", ev.Channel).
		Str("sender", ev.Sender).
		Msg("event")

	switch ev.Kind {
	case EventConnected:
		return c.onConnected(ev)
	case EventDisconnected:
		return c.onDisconnected(ev)
	case EventMessage:
		if ev.Channel == "" {
			return nil
		}
		c.chats.AddMessage(ev.Server, ev.Channel, ev.Sender, ev.Text)
		return c.notify(ev.Server, ev.Channel)
	case EventNotice:
		target := ev.Channel
		if _, ok := c.chats.Get(ev.Server, target); !ok {
			target = ev.Server
		}
		text := ev.Text
		if ev.Sender != "" {
			text = "-" + ev.Sender + "- " + text
		}
		if c.chats.AddSystemMessage(ev.Server, target, text) == nil {
			return nil
		}
		return c.notify(ev.Server, target)
	case EventJoin:
		if ev.Self {
			c.chats.AddChannel(ev.Server, ev.Channel)
			c.chats.AddSystemMessage(ev.Server, ev.Channel, "You joined channel "+ev.Channel)
			return c.notify(ev.Server, ev.Channel)
		}
		return c.systemLine(ev.Server, ev.Channel, ev.Sender+" joined "+ev.Channel)
	case EventPart:
		if ev.Self {
			c.chats.RemoveChannel(ev.Server, ev.Channel)
			c.coord.RemoveKey(KeyFor(ev.Server, ev.Channel))
			return c.systemLine(ev.Server, ev.Server, "You left channel "+ev.Channel)
		}
		line := ev.Sender + " left " + ev.Channel
		if ev.Text != "" {
			line += " (" + ev.Text + ")"
		}
		return c.systemLine(ev.Server, ev.Channel, line)
	case EventNick:
		if !ev.Self {
			return nil
		}
		c.chats.SetOwnNickname(ev.Server, ev.Text)
		c.chats.AddSystemMessage(ev.Server, ev.Server, "You are now known as "+ev.Text)
		var errs []error
		for _, conv := range c.chats.Conversations(ev.Server) {
			errs = append(errs, c.notify(ev.Server, conv.Name))
		}
		return errors.Join(errs...)
	}
	return nil
}

func (c *Controller) onConnected(ev Event) error {
	c.chats.AddServer(ev.Server)
	if ev.Sender != "" {
		c.chats.SetOwnNickname(ev.Server, ev.Sender)
	}
	c.chats.AddSystemMessage(ev.Server, ev.Server, "Connected to server "+ev.Server)
	c.logger.Info().Str("server", ev.Server).Msg("registered")

	var errs []error
	joined := make(map[string]bool)
	for _, channel := range c.autoJoin[ev.Server] {
		joined[model.FoldName(channel)] = true
		if err := c.JoinChannel(ev.Server, channel); err != nil {
			errs = append(errs, err)
		}
	}
	delete(c.autoJoin, ev.Server)

	// The library re-registers on its own after a drop; channels still in
	// the sidebar are rejoined without touching their saved settings.
	for _, conv := range c.chats.Conversations(ev.Server) {
		if conv.Name == ev.Server || conv.IsPrivate || joined[model.FoldName(conv.Name)] {
			continue
		}
		joined[model.FoldName(conv.Name)] = true
		if err := c.session.Join(ev.Server, conv.Name); err != nil {
			errs = append(errs, fmt.Errorf("rejoin %s on %s: %w", conv.Name, ev.Server, err))
		}
	}

	errs = append(errs, c.notify(ev.Server, ev.Server))
	return errors.Join(errs...)
}

func (c *Controller) onDisconnected(ev Event) error {
	line := "Disconnected from server " + ev.Server
	if ev.Text != "" {
		line += ": " + ev.Text
	}
	// Channel state is stale until the next join; the status view keeps its key.
	for _, conv := range c.chats.Conversations(ev.Server) {
		if conv.Name != ev.Server {
			c.coord.RemoveKey(KeyFor(ev.Server, conv.Name))
		}
	}
	// RemoveKey drops the active key too; the view still shows it.
	if server, channel, ok := c.chats.Active(); ok && server == ev.Server {
		c.coord.SetActiveKey(KeyFor(server, channel))
	}
	c.logger.Warn().Str("server", ev.Server).Str("reason", ev.Text).Msg("connection closed")
	return c.systemLine(ev.Server, ev.Server, line)
}

// systemLine appends a system message to an existing conversation and notifies it.
func (c *Controller) systemLine(server, channel, text string) error {
	if c.chats.AddSystemMessage(server, channel, text) == nil {
		return nil
	}
	return c.notify(server, channel)
}

func (c *Controller) notify(server, channel string) error {
	return c.coord.Notify(KeyFor(server, channel))
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetNickname changes the profile nickname and asks every live connection
// to switch to it. The view model follows when the server confirms.
func (c *Controller) SetNickname(nick string) error {
	if nick == "" || strings.ContainsAny(nick, " \t,:") {
		return fmt.Errorf("%w: %q", ErrInvalidNickname, nick)
	}
	profile, err := c.store.Profile()
	if err != nil {
		return err
	}
	if err := c.store.SaveProfile(nick, profile.Username, profile.Realname); err != nil {
		return err
	}
	var errs []error
	for _, server := range c.session.Servers() {
		if err := c.session.Nick(server, nick); err != nil {
			errs = append(errs, fmt.Errorf("nick on %s: %w", server, err))
		}
	}
	return errors.Join(errs...)
}

// SaveChannelSettings stores the auto-join flag of a channel.
func (c *Controller) SaveChannelSettings(server, channel string, autoJoin bool) error {
	if server == "" || channel == "" {
		return ErrEmptyTarget
	}
	if conv, ok := c.chats.Get(server, channel); ok {
		channel = conv.Name
	}
	return c.store.SaveChannel(storage.Channel{
		Server:    server,
		Name:      channel,
		IsPrivate: model.IsPrivateName(channel),
		AutoJoin:  autoJoin,
	})
}

// ChannelAutoJoin reports whether a saved channel is joined on connect.
// Unsaved channels report false.
func (c *Controller) ChannelAutoJoin(server, channel string) (bool, error) {
	if conv, ok := c.chats.Get(server, channel); ok {
		channel = conv.Name
	}
	ch, err := c.store.Channel(server, channel)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ch.AutoJoin, nil
}

// Restore reconnects every saved server. Its auto-join channels are joined
// once the server accepts registration; private conversations reopen at once.
func (c *Controller) Restore() error {
	servers, err := c.store.Servers()
	if err != nil {
		return err
	}

	var errs []error
	for _, srv := range servers {
		channels, err := c.store.Channels(srv.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.connect(ServerParams{
			Server:   srv.Name,
			Port:     srv.Port,
			UseTLS:   srv.UseTLS,
			Nickname: srv.Nickname,
			Username: srv.Username,
			Realname: srv.Realname,
		}, false); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, ch := range channels {
			if !ch.AutoJoin {
				continue
			}
			if ch.IsPrivate {
				c.chats.AddChannel(srv.Name, ch.Name)
				continue
			}
			c.autoJoin[srv.Name] = append(c.autoJoin[srv.Name], ch.Name)
		}
	}
	return errors.Join(errs...)
}

// PendingAutoJoin returns the channels waiting for server registration.
func (c *Controller) PendingAutoJoin(server string) []string {
	return slices.Clone(c.autoJoin[server])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// sameNick returns stored when nick is the profile nick, else nick.
func sameNick(nick, profileNick, stored string) string {
	if nick == profileNick && stored != "" {
		return stored
	}
	return nick
}
