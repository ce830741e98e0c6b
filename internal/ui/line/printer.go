// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package line

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/ui/components"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
	"github.com/jeranaias/ircdesk/internal/util"
)

// ErrEmptyKey is returned by Render for the zero key.
var ErrEmptyKey = errors.New("render: empty conversation key")

// backlog caps how many earlier messages are printed when a conversation
// becomes active.
const backlog = 50

// Printer writes conversation updates to a terminal. For the active
// conversation it prints every message not shown yet; for the others it
// prints a one-line unread notice when their unread count grows.
type Printer struct {
	chats *model.ChatList
	out   io.Writer
	theme *styles.Theme
	opts  components.RenderOptions

	shown   map[refresh.Key]string // last printed message ID
	noticed map[refresh.Key]int    // unread count last announced
}

// NewPrinter creates a printer writing to out.
func NewPrinter(chats *model.ChatList, out io.Writer, theme *styles.Theme, opts components.RenderOptions) *Printer {
	opts.Compact = true
	return &Printer{
		chats:   chats,
		out:     out,
		theme:   theme,
		opts:    opts,
		shown:   make(map[refresh.Key]string),
		noticed: make(map[refresh.Key]int),
	}
}

// Render prints what changed in the conversation behind key.
func (p *Printer) Render(key refresh.Key) error {
	if key.IsZero() {
		return ErrEmptyKey
	}
	conv, ok := p.chats.Get(key.Connection, key.Channel)
	if !ok {
		delete(p.shown, key)
		delete(p.noticed, key)
		return nil
	}
	defer conv.MarkRendered()

	if server, channel, ok := p.chats.Active(); ok && app.KeyFor(server, channel) == key {
		return p.printNew(key, conv)
	}
	return p.printUnread(key, conv)
}

func (p *Printer) printNew(key refresh.Key, conv *model.Conversation) error {
	p.noticed[key] = 0
	msgs := conv.MessagesAfter(p.shown[key])
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > backlog {
		msgs = msgs[len(msgs)-backlog:]
	}
	p.shown[key] = msgs[len(msgs)-1].ID

	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(components.CompactLine(msg, p.opts, p.theme))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *Printer) printUnread(key refresh.Key, conv *model.Conversation) error {
	if conv.Unread == 0 || conv.Unread == p.noticed[key] {
		return nil
	}
	p.noticed[key] = conv.Unread

	line := fmt.Sprintf("[%s] %d unread", where(conv), conv.Unread)
	if conv.LastMessage != "" {
		line += ": " + util.TruncateWidth(util.SingleLine(conv.LastMessage), 60)
	}
	_, err := fmt.Fprintln(p.out, p.theme.SystemLine.Render(line))
	return err
}

func where(conv *model.Conversation) string {
	if conv.Name == conv.Server {
		return conv.Server
	}
	return conv.Name + " @ " + conv.Server
}
