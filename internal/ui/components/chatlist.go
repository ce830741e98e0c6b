// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
	"github.com/jeranaias/ircdesk/internal/util"
)

// =============================================================================
// CHAT LIST (SIDEBAR)
// =============================================================================

// ChatList renders the sidebar rows of a model.ChatList.
type ChatList struct {
	Items       []model.Item
	Width       int
	ShowPreview bool
	theme       *styles.Theme
}

// NewChatList creates a sidebar renderer.
func NewChatList(theme *styles.Theme) *ChatList {
	return &ChatList{Width: 28, ShowPreview: true, theme: theme}
}

// View renders every row, one server header followed by its conversations.
func (c *ChatList) View() string {
	if len(c.Items) == 0 {
		return c.theme.Preview.Render(util.FitWidth("/connect a server", c.Width))
	}
	rows := make([]string, 0, len(c.Items)*2)
	for _, item := range c.Items {
		rows = append(rows, c.renderItem(item)...)
	}
	return strings.Join(rows, "\n")
}

func (c *ChatList) renderItem(item model.Item) []string {
	name := item.Channel
	style := c.theme.ChannelItem
	indent := 2
	if item.IsServer {
		name = item.Server
		style = c.theme.ServerItem
		indent = 0
	}

	badge := ""
	if item.Unread > 0 {
		badge = c.theme.UnreadBadge.Render(unreadLabel(item.Unread))
	}
	nameWidth := c.Width - indent - util.StringWidth(badgeText(item.Unread))
	label := util.FitWidth(name, nameWidth)
	if item.Active {
		style = c.theme.ActiveItem.PaddingLeft(indent)
	}
	rows := []string{style.Render(label) + badge}

	if c.ShowPreview && !item.IsServer && item.LastMessage != "" {
		preview := util.TruncateWidth(util.SingleLine(item.LastMessage), c.Width-4)
		rows = append(rows, c.theme.Preview.Render("  "+preview))
	}
	return rows
}

// unreadLabel caps the badge at 99+.
func unreadLabel(n int) string {
	if n > 99 {
		return "99+"
	}
	return strconv.Itoa(n)
}

// badgeText is the badge content with its padding, used for width math.
func badgeText(unread int) string {
	if unread <= 0 {
		return ""
	}
	return " " + unreadLabel(unread) + " "
}
