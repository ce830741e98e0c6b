// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package refresh

// Key identifies one conversation: a channel (or query target) on a
// connection. The zero Key means "no conversation".
type Key struct {
	Connection string
	Channel    string
}

// NewKey builds a Key from its parts.
func NewKey(connection, channel string) Key {
	return Key{Connection: connection, Channel: channel}
}

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool {
	return k.Connection == "" && k.Channel == ""
}

// String returns "channel@connection", the form used in logs.
func (k Key) String() string {
	return k.Channel + "@" + k.Connection
}

// less orders keys by connection, then channel.
func (k Key) less(o Key) bool {
	if k.Connection != o.Connection {
		return k.Connection < o.Connection
	}
	return k.Channel < o.Channel
}
