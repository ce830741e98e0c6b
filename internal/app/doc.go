// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app ties the IRC session, the chat list, the settings store and
// the refresh coordinator together.
//
// A Controller turns user actions (connect, join, send) and session Events
// into chat list updates, then announces each touched conversation to the
// refresh coordinator, which decides when the views actually redraw. The
// Controller is single-threaded; Loop owns it and serialises events, refresh
// ticks and calls posted from other goroutines.
package app
