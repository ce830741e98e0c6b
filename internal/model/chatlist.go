// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CHAT LIST
// =============================================================================

// Item is one row of the conversation sidebar.
type Item struct {
	Server        string
	Channel       string
	IsServer      bool
	IsPrivate     bool
	Unread        int
	LastMessage   string
	LastMessageAt time.Time
	Active        bool
}

// serverEntry groups a server's status conversation with its channels.
type serverEntry struct {
	name     string
	status   *Conversation
	channels []*Conversation
	byName   map[string]*Conversation // folded name -> conversation
}

// ChatList holds every server and conversation in insertion order together
// with the active selection. Each server owns a status conversation named
// after the server itself. ChatList is not safe for concurrent use.
type ChatList struct {
	servers []*serverEntry
	byName  map[string]*serverEntry

	activeServer  string
	activeChannel string

	ownNickname map[string]string
	now         func() time.Time
}

// NewChatList creates an empty list.
func NewChatList() *ChatList {
	return &ChatList{
		byName:      make(map[string]*serverEntry),
		ownNickname: make(map[string]string),
		now:         time.Now,
	}
}

// AddServer adds a server and its status conversation. It returns false if
// the server is already listed.
func (l *ChatList) AddServer(server string) bool {
	if server == "" {
		return false
	}
	if _, ok := l.byName[server]; ok {
		return false
	}
	status := NewConversation(server, server)
	status.OwnNickname = l.ownNickname[server]
	entry := &serverEntry{
		name:   server,
		status: status,
		byName: make(map[string]*Conversation),
	}
	l.servers = append(l.servers, entry)
	l.byName[server] = entry
	return true
}

// AddChannel adds a channel or private conversation, adding the server first
// when needed. An existing conversation is returned unchanged.
func (l *ChatList) AddChannel(server, channel string) *Conversation {
	if server == "" || channel == "" {
		return nil
	}
	if conv, ok := l.Get(server, channel); ok {
		return conv
	}
	l.AddServer(server)
	entry := l.byName[server]

	conv := NewConversation(server, channel)
	conv.OwnNickname = l.ownNickname[server]
	entry.channels = append(entry.channels, conv)
	entry.byName[FoldName(channel)] = conv
	return conv
}

// RemoveServer removes a server with all its conversations.
func (l *ChatList) RemoveServer(server string) bool {
	entry, ok := l.byName[server]
	if !ok {
		return false
	}
	delete(l.byName, server)
	for i, e := range l.servers {
		if e == entry {
			l.servers = append(l.servers[:i], l.servers[i+1:]...)
			break
		}
	}
	delete(l.ownNickname, server)
	if l.activeServer == server {
		l.clearActive()
	}
	return true
}

// RemoveChannel removes one conversation. A server's status conversation can
// only go away with RemoveServer.
func (l *ChatList) RemoveChannel(server, channel string) bool {
	entry, ok := l.byName[server]
	if !ok || channel == server {
		return false
	}
	folded := FoldName(channel)
	conv, ok := entry.byName[folded]
	if !ok {
		return false
	}
	delete(entry.byName, folded)
	for i, c := range entry.channels {
		if c == conv {
			entry.channels = append(entry.channels[:i], entry.channels[i+1:]...)
			break
		}
	}
	if l.activeServer == server && FoldName(l.activeChannel) == folded {
		l.clearActive()
	}
	return true
}

// Get looks up a conversation. channel == server selects the status view.
func (l *ChatList) Get(server, channel string) (*Conversation, bool) {
	entry, ok := l.byName[server]
	if !ok {
		return nil, false
	}
	if channel == server {
		return entry.status, true
	}
	conv, ok := entry.byName[FoldName(channel)]
	return conv, ok
}

// SetActive selects the conversation shown to the user and clears its
// unread count. An empty server clears the selection. It returns false for
// unknown conversations.
func (l *ChatList) SetActive(server, channel string) bool {
	if server == "" {
		l.clearActive()
		return true
	}
	conv, ok := l.Get(server, channel)
	if !ok {
		return false
	}
	l.activeServer = conv.Server
	l.activeChannel = conv.Name
	if conv.Unread > 0 {
		conv.Unread = 0
		conv.touch()
	}
	return true
}

// Active returns the selected conversation's server and channel.
func (l *ChatList) Active() (server, channel string, ok bool) {
	if l.activeServer == "" {
		return "", "", false
	}
	return l.activeServer, l.activeChannel, true
}

// ActiveConversation returns the selected conversation or nil.
func (l *ChatList) ActiveConversation() *Conversation {
	if l.activeServer == "" {
		return nil
	}
	conv, _ := l.Get(l.activeServer, l.activeChannel)
	return conv
}

// IsActive reports whether server/channel is the selected conversation.
func (l *ChatList) IsActive(server, channel string) bool {
	if l.activeServer != server {
		return false
	}
	if channel == server || l.activeChannel == server {
		return channel == l.activeChannel
	}
	return FoldName(channel) == FoldName(l.activeChannel)
}

func (l *ChatList) clearActive() {
	l.activeServer = ""
	l.activeChannel = ""
}

// =============================================================================
// MESSAGES
// =============================================================================

// AddMessage appends a chat message, creating the conversation if needed,
// and updates its sidebar summary. Unread is counted only when the
// conversation is not active.
func (l *ChatList) AddMessage(server, channel, sender, content string) *Message {
	conv := l.AddChannel(server, channel)
	if conv == nil {
		return nil
	}
	msg := conv.AddMessage(sender, content)
	l.UpdateChannelInfo(server, channel, content, sender, !msg.IsOwn())
	return msg
}

// AddSystemMessage appends a system message to an existing conversation. It
// does not touch the unread count or the preview.
func (l *ChatList) AddSystemMessage(server, channel, content string) *Message {
	conv, ok := l.Get(server, channel)
	if !ok {
		return nil
	}
	return conv.AddSystemMessage(content)
}

// UpdateChannelInfo sets the sidebar preview of a conversation and, when
// unread is true and the conversation is not active, bumps its unread count.
func (l *ChatList) UpdateChannelInfo(server, channel, lastMessage, sender string, unread bool) bool {
	conv, ok := l.Get(server, channel)
	if !ok {
		return false
	}
	conv.LastSender = sender
	if sender != "" {
		conv.LastMessage = sender + ": " + lastMessage
	} else {
		conv.LastMessage = lastMessage
	}
	conv.LastMessageAt = l.now()
	if unread && !l.IsActive(server, channel) {
		conv.Unread++
	}
	conv.touch()
	return true
}

// SetOwnNickname records our nickname on server and re-flags its messages.
func (l *ChatList) SetOwnNickname(server, nick string) {
	l.ownNickname[server] = nick
	for _, conv := range l.Conversations(server) {
		conv.SetOwnNickname(nick)
	}
}

// OwnNickname returns our nickname on server.
func (l *ChatList) OwnNickname(server string) string {
	return l.ownNickname[server]
}

// =============================================================================
// LISTING
// =============================================================================

// Servers returns the server names in insertion order.
func (l *ChatList) Servers() []string {
	names := make([]string, len(l.servers))
	for i, e := range l.servers {
		names[i] = e.name
	}
	return names
}

// Conversations returns a server's status conversation followed by its
// channels in insertion order.
func (l *ChatList) Conversations(server string) []*Conversation {
	entry, ok := l.byName[server]
	if !ok {
		return nil
	}
	convs := make([]*Conversation, 0, len(entry.channels)+1)
	convs = append(convs, entry.status)
	return append(convs, entry.channels...)
}

// Items flattens the list into sidebar rows.
func (l *ChatList) Items() []Item {
	var items []Item
	for _, entry := range l.servers {
		for _, conv := range l.Conversations(entry.name) {
			items = append(items, Item{
				Server:        conv.Server,
				Channel:       conv.Name,
				IsServer:      conv == entry.status,
				IsPrivate:     conv.IsPrivate,
				Unread:        conv.Unread,
				LastMessage:   conv.LastMessage,
				LastMessageAt: conv.LastMessageAt,
				Active:        l.IsActive(conv.Server, conv.Name),
			})
		}
	}
	return items
}

// Len returns the number of rows Items would return.
func (l *ChatList) Len() int {
	n := 0
	for _, entry := range l.servers {
		n += 1 + len(entry.channels)
	}
	return n
}

// Cycle returns the row step positions away from the active one, wrapping
// around. With nothing active it starts from the first row.
func (l *ChatList) Cycle(step int) (Item, bool) {
	items := l.Items()
	if len(items) == 0 {
		return Item{}, false
	}
	current := -1
	for i, it := range items {
		if it.Active {
			current = i
			break
		}
	}
	if current < 0 {
		if step > 0 {
			return items[0], true
		}
		return items[len(items)-1], true
	}
	next := ((current+step)%len(items) + len(items)) % len(items)
	return items[next], true
}
