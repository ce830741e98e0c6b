// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the view model for servers, conversations, and messages.
//
// # Key Types
//
//   - Message: one line with sender, content, timestamp, and Kind (chat, system, own)
//   - Conversation: a channel, private chat, or server status view with its messages
//   - ChatList: every server and conversation in insertion order plus the active selection
//
// Conversations carry a version counter. Changed reports whether anything
// moved since the last MarkRendered, which lets views skip redundant redraws.
//
// # Usage
//
//	list := model.NewChatList()
//	list.AddChannel("irc.libera.chat", "#go-nuts")
//	list.SetActive("irc.libera.chat", "#go-nuts")
//	list.AddMessage("irc.libera.chat", "#go-nuts", "alice", "hi")
//
//	for _, item := range list.Items() {
//	    fmt.Println(item.Channel, item.Unread)
//	}
package model
