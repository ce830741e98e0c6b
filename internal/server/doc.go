// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the optional local status endpoint.
//
// When ircdesk is started with --metrics-addr it serves:
//   - GET /health  - Liveness, version and uptime as JSON
//   - GET /metrics - Prometheus exposition of the refresh and session metrics
//
// The listener binds to loopback unless an explicit host is given.
package server
