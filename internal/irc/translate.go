// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package irc

import (
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/model"
)

// Commands the session subscribes to. Everything Translate understands.
var handledCommands = []string{
	"001", "PRIVMSG", "NOTICE", "JOIN", "PART", "KICK", "NICK",
	"372", "432", "433", "473", "474", "475",
}

const ctcpDelim = "\x01"

// Translate maps one IRC message to an app.Event. ownNick is our current
// nickname on server; it decides Self and where private messages land.
// The second result is false for messages with no visible effect.
func Translate(server, ownNick string, msg ircmsg.Message) (app.Event, bool) {
	ev := app.Event{
		Server: server,
		Sender: msg.Nick(),
		Time:   messageTime(msg),
	}
	ev.Self = sameNick(ev.Sender, ownNick)

	switch msg.Command {
	case "001":
		ev.Kind = app.EventConnected
		ev.Sender = param(msg, 0)
		ev.Self = true
		ev.Text = param(msg, 1)

	case "PRIVMSG":
		target, text := param(msg, 0), param(msg, 1)
		if target == "" || ev.Sender == "" {
			return app.Event{}, false
		}
		if strings.HasPrefix(text, ctcpDelim) {
			action, ok := ctcpAction(text)
			if !ok {
				return app.Event{}, false
			}
			text = "* " + ev.Sender + " " + action
		}
		ev.Kind = app.EventMessage
		ev.Channel = conversationFor(target, ev.Sender, ownNick)
		ev.Text = text

	case "NOTICE":
		target := param(msg, 0)
		ev.Kind = app.EventNotice
		ev.Text = param(msg, 1)
		if !model.IsPrivateName(target) {
			ev.Channel = target
		}
		if strings.HasPrefix(ev.Text, ctcpDelim) {
			return app.Event{}, false
		}

	case "JOIN":
		ev.Kind = app.EventJoin
		ev.Channel = param(msg, 0)

	case "PART":
		ev.Kind = app.EventPart
		ev.Channel = param(msg, 0)
		ev.Text = param(msg, 1)

	case "KICK":
		// KICK <channel> <nick> [reason]; the kicked nick becomes the sender
		kicker := ev.Sender
		ev.Kind = app.EventPart
		ev.Channel = param(msg, 0)
		ev.Sender = param(msg, 1)
		ev.Self = sameNick(ev.Sender, ownNick)
		ev.Text = "kicked by " + kicker
		if reason := param(msg, 2); reason != "" {
			ev.Text += ": " + reason
		}

	case "NICK":
		ev.Kind = app.EventNick
		ev.Text = param(msg, 0)
		// The library may update its own nick before callbacks run
		ev.Self = ev.Self || sameNick(ev.Text, ownNick)

	case "372", "432", "433", "473", "474", "475":
		// MOTD lines and join/nick failures go to the server status view
		ev.Kind = app.EventNotice
		ev.Sender = ""
		ev.Self = false
		if len(msg.Params) > 1 {
			ev.Text = strings.Join(msg.Params[1:], " ")
		}

	default:
		return app.Event{}, false
	}

	if ev.Kind != app.EventConnected && ev.Kind != app.EventNotice && ev.Kind != app.EventNick && ev.Channel == "" {
		return app.Event{}, false
	}
	return ev, true
}

// conversationFor returns the conversation a PRIVMSG belongs to: the
// channel, or the other party for a private message.
func conversationFor(target, sender, ownNick string) string {
	if sameNick(target, ownNick) {
		return sender
	}
	return target
}

func ctcpAction(text string) (string, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(text, ctcpDelim), ctcpDelim)
	action, ok := strings.CutPrefix(body, "ACTION ")
	return action, ok
}

// messageTime honours the IRCv3 server-time tag.
func messageTime(msg ircmsg.Message) time.Time {
	if ok, v := msg.GetTag("time"); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func param(msg ircmsg.Message, i int) string {
	if i < len(msg.Params) {
		return msg.Params[i]
	}
	return ""
}

func sameNick(a, b string) bool {
	return a != "" && b != "" && model.FoldName(a) == model.FoldName(b)
}
