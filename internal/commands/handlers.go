// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/model"
)

// Errors reported to the user.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoServer       = errors.New("no active server, use /connect first")
	ErrNoConversation = errors.New("no active conversation, use /join first")
)

// tlsPort is the conventional IRC-over-TLS port; connecting to it implies -tls.
const tlsPort = 6697

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs a line of user input: a slash command, or text for the active
// conversation.
func Submit(r *Registry, ctx *Context, input string) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, nil
	}

	parsed := r.Parse(input)
	if !parsed.IsCommand {
		if ctx.Server == "" || ctx.Channel == "" || ctx.Channel == ctx.Server {
			return Result{}, ErrNoConversation
		}
		return Result{}, ctx.Ctrl.SendMessage(ctx.Server, ctx.Channel, Unescape(input))
	}
	if parsed.Command == nil {
		return Result{}, fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, parsed.CommandName)
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return Result{}, err
	}
	return parsed.Command.Handler(ctx, parsed.Args, parsed.RawArgs)
}

// =============================================================================
// CONNECTION HANDLERS
// =============================================================================

func handleConnect(ctx *Context, args []string, _ string) (Result, error) {
	var positional []string
	useTLS := false
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "-tls", "--tls":
			useTLS = true
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) == 0 {
		return Result{}, &ValidationError{Command: "/connect", Arg: "host", Message: "required argument missing"}
	}

	host, port, err := ParseHostPort(positional[0])
	if err != nil {
		return Result{}, err
	}
	if port == tlsPort {
		useTLS = true
	}
	params := app.ServerParams{Server: host, Port: port, UseTLS: useTLS}
	if len(positional) > 1 {
		params.Nickname = positional[1]
	}

	if err := ctx.Ctrl.ConnectServer(params); err != nil {
		return Result{}, err
	}
	return Result{
		Notice:   "Connecting to " + host + "...",
		Activate: &Target{Server: host, Channel: host},
	}, nil
}

func handleDisconnect(ctx *Context, args []string, _ string) (Result, error) {
	server := ctx.Server
	if len(args) > 0 {
		server = args[0]
	}
	if server == "" {
		return Result{}, ErrNoServer
	}
	if err := ctx.Ctrl.DisconnectServer(server); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Disconnected from " + server}, nil
}

// ParseHostPort splits "host[:port]". A missing port is returned as 0.
func ParseHostPort(s string) (string, int, error) {
	host, portText, err := net.SplitHostPort(s)
	if err != nil {
		// No port given
		if strings.Count(s, ":") > 1 || s == "" {
			return "", 0, fmt.Errorf("invalid server address %q", s)
		}
		return s, 0, nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portText)
	}
	if host == "" {
		return "", 0, fmt.Errorf("invalid server address %q", s)
	}
	return host, port, nil
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

func handleJoin(ctx *Context, args []string, _ string) (Result, error) {
	if ctx.Server == "" {
		return Result{}, ErrNoServer
	}
	channel := args[0]
	if err := ctx.Ctrl.JoinChannel(ctx.Server, channel); err != nil {
		return Result{}, err
	}
	if model.IsPrivateName(channel) {
		return Result{Activate: &Target{Server: ctx.Server, Channel: channel}}, nil
	}
	return Result{Notice: "Joining " + channel + "..."}, nil
}

func handlePart(ctx *Context, args []string, _ string) (Result, error) {
	if ctx.Server == "" {
		return Result{}, ErrNoServer
	}
	channel := ctx.Channel
	if len(args) > 0 {
		channel = args[0]
	}
	if channel == "" || channel == ctx.Server {
		return Result{}, ErrNoConversation
	}
	if err := ctx.Ctrl.LeaveChannel(ctx.Server, channel); err != nil {
		return Result{}, err
	}
	res := Result{Notice: "Left " + channel}
	if model.FoldName(channel) == model.FoldName(ctx.Channel) {
		res.Activate = &Target{Server: ctx.Server, Channel: ctx.Server}
	}
	return res, nil
}

func handleMsg(ctx *Context, args []string, rawArgs string) (Result, error) {
	if ctx.Server == "" {
		return Result{}, ErrNoServer
	}
	target := args[0]
	_, text, _ := strings.Cut(rawArgs, " ")

	if _, ok := ctx.Ctrl.Chats().Get(ctx.Server, target); !ok && model.IsPrivateName(target) {
		if err := ctx.Ctrl.JoinChannel(ctx.Server, target); err != nil {
			return Result{}, err
		}
	}
	if err := ctx.Ctrl.SendMessage(ctx.Server, target, strings.TrimSpace(text)); err != nil {
		return Result{}, err
	}
	return Result{Activate: &Target{Server: ctx.Server, Channel: target}}, nil
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

func handleNick(ctx *Context, args []string, _ string) (Result, error) {
	if err := ctx.Ctrl.SetNickname(args[0]); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Nickname set to " + args[0]}, nil
}

func handleAutoJoin(ctx *Context, args []string, _ string) (Result, error) {
	if ctx.Server == "" || ctx.Channel == "" || ctx.Channel == ctx.Server {
		return Result{}, ErrNoConversation
	}
	if len(args) == 0 {
		on, err := ctx.Ctrl.ChannelAutoJoin(ctx.Server, ctx.Channel)
		if err != nil {
			return Result{}, err
		}
		return Result{Notice: "Auto-join is " + onOff(on) + " for " + ctx.Channel}, nil
	}

	on := strings.EqualFold(args[0], "on")
	if err := ctx.Ctrl.SaveChannelSettings(ctx.Server, ctx.Channel, on); err != nil {
		return Result{}, err
	}
	return Result{Notice: "Auto-join " + onOff(on) + " for " + ctx.Channel}, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// handleSwitch looks on the active server first, then on every server.
func handleSwitch(ctx *Context, args []string, _ string) (Result, error) {
	target := args[0]
	chats := ctx.Ctrl.Chats()
	if ctx.Server != "" {
		if conv, ok := chats.Get(ctx.Server, target); ok {
			return Result{Activate: &Target{Server: ctx.Server, Channel: conv.Name}}, nil
		}
	}
	for _, server := range chats.Servers() {
		if conv, ok := chats.Get(server, target); ok {
			return Result{Activate: &Target{Server: server, Channel: conv.Name}}, nil
		}
	}
	return Result{}, fmt.Errorf("%w: %s", app.ErrUnknownConversation, target)
}

func handleHelp(*Context, []string, string) (Result, error) {
	return Result{Help: true}, nil
}

func handleQuit(*Context, []string, string) (Result, error) {
	return Result{Quit: true}, nil
}
