// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/storage"
)

const libera = "irc.libera.chat"

// stubSession accepts every command and records messages.
type stubSession struct {
	servers  []string
	params   []app.ServerParams
	joins    []string
	privmsgs []string
	events   chan app.Event
}

func (s *stubSession) Connect(p app.ServerParams) error {
	s.params = append(s.params, p)
	s.servers = append(s.servers, p.Server)
	return nil
}

func (s *stubSession) Disconnect(server string) error {
	s.servers = slices.DeleteFunc(s.servers, func(v string) bool { return v == server })
	return nil
}

func (s *stubSession) Join(_, channel string) error {
	s.joins = append(s.joins, channel)
	return nil
}

func (s *stubSession) Part(string, string) error { return nil }

func (s *stubSession) Privmsg(_, target, text string) error {
	s.privmsgs = append(s.privmsgs, target+" "+text)
	return nil
}

func (s *stubSession) Nick(string, string) error { return nil }

func (s *stubSession) Servers() []string { return slices.Clone(s.servers) }

func (s *stubSession) Events() <-chan app.Event { return s.events }

func newTestContext(t *testing.T) (*Context, *stubSession) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ircdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	coord, err := refresh.New(refresh.DefaultConfig(), func(refresh.Key) error { return nil })
	require.NoError(t, err)

	session := &stubSession{events: make(chan app.Event)}
	ctrl, err := app.NewController(app.Deps{
		Session: session,
		Store:   store,
		Chats:   model.NewChatList(),
		Refresh: coord,
	})
	require.NoError(t, err)
	return &Context{Ctrl: ctrl}, session
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	r := NewRegistry()

	res := r.Parse("  /JOIN #go  ")
	assert.True(t, res.IsCommand)
	assert.Equal(t, "/join", res.CommandName)
	assert.Equal(t, []string{"#go"}, res.Args)
	require.NotNil(t, res.Command)
	assert.Equal(t, "/join", res.Command.Name)

	res = r.Parse("/msg alice hello   there")
	assert.Equal(t, "alice hello   there", res.RawArgs)

	res = r.Parse("/j #go")
	assert.Equal(t, "/join", res.Command.Name, "aliases resolve")

	assert.False(t, r.Parse("hello").IsCommand)
	assert.False(t, r.Parse("//not a command").IsCommand)
	assert.Nil(t, r.Parse("/bogus").Command)
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b  c", []string{"a", "b", "c"}},
		{`a "b c" d`, []string{"a", "b c", "d"}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`""`, []string{""}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitCommandLine(tt.in), tt.in)
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	err := ValidateArgs(r.Get("/join"), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "channel", verr.Arg)

	assert.Error(t, ValidateArgs(r.Get("/autojoin"), []string{"maybe"}))
	assert.NoError(t, ValidateArgs(r.Get("/autojoin"), []string{"ON"}))
	assert.NoError(t, ValidateArgs(nil, nil))
}

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		in      string
		host    string
		port    int
		wantErr bool
	}{
		{"irc.libera.chat", "irc.libera.chat", 0, false},
		{"irc.libera.chat:6697", "irc.libera.chat", 6697, false},
		{"[::1]:6667", "::1", 6667, false},
		{"irc.libera.chat:http", "", 0, true},
		{"irc.libera.chat:70000", "", 0, true},
		{":6667", "", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		host, port, err := ParseHostPort(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.host, host)
		assert.Equal(t, tt.port, port)
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_ConnectJoinSend(t *testing.T) {
	r := NewRegistry()
	ctx, session := newTestContext(t)

	res, err := Submit(r, ctx, "/connect irc.libera.chat:6697 alice")
	require.NoError(t, err)
	require.NotNil(t, res.Activate)
	assert.Equal(t, Target{Server: libera, Channel: libera}, *res.Activate)
	require.Len(t, session.params, 1)
	assert.True(t, session.params[0].UseTLS, "port 6697 implies TLS")
	assert.Equal(t, "alice", session.params[0].Nickname)

	ctx.Server, ctx.Channel = libera, libera
	res, err = Submit(r, ctx, "/join #go")
	require.NoError(t, err)
	assert.Equal(t, "Joining #go...", res.Notice)
	assert.Equal(t, []string{"#go"}, session.joins)

	_, err = Submit(r, ctx, "hello")
	assert.ErrorIs(t, err, ErrNoConversation, "status view takes no text")

	require.NoError(t, ctx.Ctrl.HandleEvent(app.Event{Kind: app.EventJoin, Server: libera, Channel: "#go", Sender: "alice", Self: true}))
	ctx.Channel = "#go"
	_, err = Submit(r, ctx, "//slash text")
	require.NoError(t, err)
	assert.Equal(t, []string{"#go /slash text"}, session.privmsgs)
}

func TestSubmit_Errors(t *testing.T) {
	r := NewRegistry()
	ctx, _ := newTestContext(t)

	res, err := Submit(r, ctx, "   ")
	assert.NoError(t, err)
	assert.Equal(t, Result{}, res)

	_, err = Submit(r, ctx, "/frobnicate")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Submit(r, ctx, "/join #go")
	assert.ErrorIs(t, err, ErrNoServer)

	_, err = Submit(r, ctx, "/disconnect")
	assert.ErrorIs(t, err, ErrNoServer)

	_, err = Submit(r, ctx, "/connect -tls")
	assert.Error(t, err)
}

func TestSubmit_MsgOpensPrivateConversation(t *testing.T) {
	r := NewRegistry()
	ctx, session := newTestContext(t)
	_, err := Submit(r, ctx, "/connect irc.libera.chat me")
	require.NoError(t, err)
	ctx.Server, ctx.Channel = libera, libera

	res, err := Submit(r, ctx, "/msg bob hi there")
	require.NoError(t, err)
	assert.Equal(t, &Target{Server: libera, Channel: "bob"}, res.Activate)
	assert.Equal(t, []string{"bob hi there"}, session.privmsgs)

	conv, ok := ctx.Ctrl.Chats().Get(libera, "bob")
	require.True(t, ok)
	assert.True(t, conv.Last().IsOwn())
}

func TestSubmit_PartAndAutoJoin(t *testing.T) {
	r := NewRegistry()
	ctx, _ := newTestContext(t)
	_, err := Submit(r, ctx, "/connect irc.libera.chat me")
	require.NoError(t, err)
	ctx.Server, ctx.Channel = libera, libera
	_, err = Submit(r, ctx, "/join #go")
	require.NoError(t, err)
	require.NoError(t, ctx.Ctrl.HandleEvent(app.Event{Kind: app.EventJoin, Server: libera, Channel: "#go", Sender: "me", Self: true}))
	ctx.Channel = "#go"

	res, err := Submit(r, ctx, "/autojoin")
	require.NoError(t, err)
	assert.Equal(t, "Auto-join is on for #go", res.Notice)

	res, err = Submit(r, ctx, "/autojoin off")
	require.NoError(t, err)
	assert.Equal(t, "Auto-join off for #go", res.Notice)
	on, err := ctx.Ctrl.ChannelAutoJoin(libera, "#go")
	require.NoError(t, err)
	assert.False(t, on)

	res, err = Submit(r, ctx, "/part")
	require.NoError(t, err)
	assert.Equal(t, &Target{Server: libera, Channel: libera}, res.Activate)
	_, ok := ctx.Ctrl.Chats().Get(libera, "#go")
	assert.False(t, ok)
}

func TestSubmit_Switch(t *testing.T) {
	r := NewRegistry()
	ctx, _ := newTestContext(t)
	_, err := Submit(r, ctx, "/connect irc.libera.chat me")
	require.NoError(t, err)
	require.NoError(t, ctx.Ctrl.HandleEvent(app.Event{Kind: app.EventJoin, Server: libera, Channel: "#Go", Sender: "me", Self: true}))

	res, err := Submit(r, ctx, "/w #go")
	require.NoError(t, err)
	assert.Equal(t, &Target{Server: libera, Channel: "#Go"}, res.Activate)

	res, err = Submit(r, ctx, "/switch irc.libera.chat")
	require.NoError(t, err)
	assert.Equal(t, &Target{Server: libera, Channel: libera}, res.Activate)

	_, err = Submit(r, ctx, "/switch #nowhere")
	assert.ErrorIs(t, err, app.ErrUnknownConversation)
}

func TestSubmit_HelpAndQuit(t *testing.T) {
	r := NewRegistry()
	ctx, _ := newTestContext(t)

	res, err := Submit(r, ctx, "/?")
	require.NoError(t, err)
	assert.True(t, res.Help)

	res, err = Submit(r, ctx, "/quit")
	require.NoError(t, err)
	assert.True(t, res.Quit)
}

// =============================================================================
// HELP AND COMPLETION TESTS
// =============================================================================

func TestHelp(t *testing.T) {
	r := NewRegistry()

	md := HelpMarkdown(r)
	for _, want := range []string{"## Connection", "## Conversation", "`/join <#channel|nick>`", "Ctrl+N"} {
		assert.Contains(t, md, want)
	}

	text := HelpText(r)
	assert.Contains(t, text, "/autojoin [on|off]")
	assert.NotContains(t, text, "|---|")
}

func TestCompleter(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ChannelsFn = func() []string { return []string{"#go", "#golang", "alice"} }
	c.ServersFn = func() []string { return []string{libera, "irc.oftc.net"} }

	first := func(input string) string {
		got := c.Complete(input)
		if len(got) == 0 {
			return ""
		}
		return got[0].Value
	}

	assert.Equal(t, "/join", first("/jo"))
	assert.Equal(t, "#go", first("/join #g"), "exact and shorter matches rank first")
	assert.Equal(t, "irc.oftc.net", first("/connect irc.o"))
	assert.Equal(t, "off", first("/autojoin of"))
	assert.Equal(t, "alice", first("hey al"))
	assert.Empty(t, c.Complete("/nick a"), "free text has no candidates")

	assert.Equal(t, []string{"/join #go", "/join #golang"}, c.Line("/join #g"))
	assert.Equal(t, []string{"hey alice"}, c.Line("hey al"))
}

func TestCompletionState(t *testing.T) {
	var cs CompletionState
	assert.False(t, cs.Active())

	cs.Start("/j", []string{"/join", "/j"})
	assert.True(t, cs.Active())
	assert.Equal(t, "/join", cs.Next())
	assert.Equal(t, "/j", cs.Next())
	assert.Equal(t, "/join", cs.Next())

	cs.Clear()
	assert.False(t, cs.Active())
}
