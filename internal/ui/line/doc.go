// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package line provides the plain terminal client: a liner prompt for
// commands and messages, with incoming traffic printed as compact IRC-style
// lines.
//
// The prompt blocks its own goroutine, so every controller access is posted
// to an app.Loop. The Printer is the refresh coordinator's render callback
// and always runs on the loop goroutine.
package line
