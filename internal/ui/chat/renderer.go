// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/ui/components"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

// ErrEmptyKey is returned by Render for the zero key.
var ErrEmptyKey = errors.New("render: empty conversation key")

// =============================================================================
// RENDERER
// =============================================================================

// Renderer builds and caches the rendered content of each conversation. Its
// Render method is the refresh coordinator's render callback. It is not safe
// for concurrent use.
type Renderer struct {
	chats *model.ChatList
	theme *styles.Theme
	opts  components.RenderOptions

	views map[refresh.Key]string

	// generation moves on every render or invalidation
	generation uint64
	renders    uint64

	logger zerolog.Logger
}

// NewRenderer creates a renderer over chats.
func NewRenderer(chats *model.ChatList, theme *styles.Theme, opts components.RenderOptions) *Renderer {
	return &Renderer{
		chats:  chats,
		theme:  theme,
		opts:   opts,
		views:  make(map[refresh.Key]string),
		logger: logging.Component("render"),
	}
}

// Render rebuilds the content of the conversation behind key. A key whose
// conversation is gone drops its cached content.
func (r *Renderer) Render(key refresh.Key) error {
	if key.IsZero() {
		return ErrEmptyKey
	}
	r.generation++

	conv, ok := r.chats.Get(key.Connection, key.Channel)
	if !ok {
		delete(r.views, key)
		return nil
	}
	r.views[key] = components.RenderMessages(conv.Messages, r.opts, r.theme)
	conv.MarkRendered()
	r.renders++

	r.logger.Trace().
		Str("key", key.String()).
		Int("messages", len(conv.Messages)).
		Msg("rendered")
	return nil
}

// View returns the cached content of key.
func (r *Renderer) View(key refresh.Key) (string, bool) {
	content, ok := r.views[key]
	return content, ok
}

// Generation changes whenever any cached content changes.
func (r *Renderer) Generation() uint64 { return r.generation }

// Renders counts conversation renders.
func (r *Renderer) Renders() uint64 { return r.renders }

// Theme returns the current theme.
func (r *Renderer) Theme() *styles.Theme { return r.theme }

// Options returns the current layout options.
func (r *Renderer) Options() components.RenderOptions { return r.opts }

// SetTheme switches the theme and drops every cached view.
func (r *Renderer) SetTheme(theme *styles.Theme) {
	r.theme = theme
	r.invalidate()
}

// SetOptions changes the layout. Cached views are dropped when anything
// differs.
func (r *Renderer) SetOptions(opts components.RenderOptions) {
	if opts == r.opts {
		return
	}
	r.opts = opts
	r.invalidate()
}

func (r *Renderer) invalidate() {
	clear(r.views)
	r.generation++
}
