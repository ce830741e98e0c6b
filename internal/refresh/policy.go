// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package refresh

import "time"

// Decision is the outcome of the debounce policy.
type Decision int

const (
	// Suppress means the render must wait; the announcement stays pending.
	Suppress Decision = iota
	// Allow means a render may be dispatched now.
	Allow
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Suppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// Decide applies the debounce policy. A zero time.Time means "absent".
//
//   - no previous render: Allow
//   - pending and at least minInterval since the last render: Allow
//   - otherwise: Suppress
//
// A clock that runs backwards (now before lastRenderedAt) yields Suppress
// until it catches up.
func Decide(now, lastRenderedAt, pendingSince time.Time, minInterval time.Duration) Decision {
	if lastRenderedAt.IsZero() {
		return Allow
	}
	if !pendingSince.IsZero() && now.Sub(lastRenderedAt) >= minInterval {
		return Allow
	}
	return Suppress
}
