// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components renders the pieces of the chat window.

Components are plain renderers: they take view-model values from the model
package and a styles.Theme, and return strings. They hold no Bubble Tea
state, so the chat model can cache their output until the refresh
coordinator asks for a redraw.

# Components

  - MessageBubble: one message. Own messages are right-aligned bubbles,
    other senders get left-aligned bubbles with a colored nick, and system
    messages render as a single italic line.
  - RenderMessages: a whole conversation, bubbles separated by blank lines.
  - ChatList: the sidebar of servers and conversations with unread badges
    and a one-line preview of the last message.
  - StatusBar: connection state, the active conversation, and transient
    notices such as rate-limit warnings.
*/
package components
