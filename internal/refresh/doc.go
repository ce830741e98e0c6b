// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package refresh coalesces per-conversation redraw requests.
//
// Inbound chat traffic arrives in bursts. Redrawing a conversation on every
// message wastes frames and makes the view flicker, while redrawing only on a
// timer makes the client feel laggy. The Coordinator sits between the event
// source and the renderer and applies two rules per conversation:
//
//   - Debounce: renders of the same Key are at least MinRenderInterval apart.
//     The first announcement for a key renders immediately; announcements that
//     arrive too soon are remembered and honored by a later Tick.
//   - Catch-up: the active (visible) key is re-rendered every CatchUpInterval
//     even when nothing announced new data.
//
// # Key Types
//
//   - Key: (connection, channel) identity of a conversation
//   - Decide: the pure debounce policy
//   - Coordinator: the stateful scheduler
//
// # Threading
//
// The Coordinator holds no lock. All calls must come from one logical
// sequence, such as the Bubble Tea update loop or app.Loop. The Renderer is
// called synchronously from Notify and Tick and must not block or call back
// into the Coordinator.
//
// # Usage
//
//	coord, err := refresh.New(refresh.DefaultConfig(), func(k refresh.Key) error {
//	    view.Invalidate(k)
//	    return nil
//	})
//	coord.SetActiveKey(key)
//	coord.Notify(key)         // on inbound message
//	coord.Tick(time.Now())    // on every scheduler tick
//	coord.RemoveKey(key)      // on conversation close
package refresh
