// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by ircdesk packages.
//
//   - AtomicWriteFile: crash-safe file writes (config saving)
//   - TruncateWidth, FitWidth: column-aware text fitting for the terminal views
//
// Usage:
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	label := util.FitWidth(channel, 20)
package util
