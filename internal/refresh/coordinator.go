// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package refresh

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidConfig is returned by New for unusable intervals.
var ErrInvalidConfig = errors.New("invalid refresh config")

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the coordinator intervals. It is copied at construction.
type Config struct {
	// MinRenderInterval is the minimum spacing between two renders of one key.
	MinRenderInterval time.Duration

	// CatchUpInterval is the longest the active key may go without a render.
	CatchUpInterval time.Duration
}

// DefaultConfig returns the intervals used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinRenderInterval: 500 * time.Millisecond,
		CatchUpInterval:   5 * time.Second,
	}
}

// Validate checks the intervals. CatchUpInterval may not undercut
// MinRenderInterval, otherwise catch-up renders would break the spacing rule.
func (c Config) Validate() error {
	if c.MinRenderInterval <= 0 {
		return fmt.Errorf("%w: min render interval must be positive, got %v", ErrInvalidConfig, c.MinRenderInterval)
	}
	if c.CatchUpInterval < c.MinRenderInterval {
		return fmt.Errorf("%w: catch-up interval %v is shorter than min render interval %v",
			ErrInvalidConfig, c.CatchUpInterval, c.MinRenderInterval)
	}
	return nil
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Renderer redraws one conversation. It runs synchronously inside Notify and
// Tick, so it must return quickly and must not call back into the Coordinator.
type Renderer func(key Key) error

// Reason says why a render was dispatched.
type Reason int

const (
	// ReasonImmediate is a render dispatched directly from Notify.
	ReasonImmediate Reason = iota
	// ReasonDeferred is a suppressed announcement honored by Tick.
	ReasonDeferred
	// ReasonCatchUp is a forced render of the active key.
	ReasonCatchUp
)

// String returns the reason label used in metrics and logs.
func (r Reason) String() string {
	switch r {
	case ReasonImmediate:
		return "immediate"
	case ReasonDeferred:
		return "deferred"
	case ReasonCatchUp:
		return "catch_up"
	default:
		return "unknown"
	}
}

// Observer receives coordinator events. Implementations must be cheap;
// they run on the caller's sequence.
type Observer interface {
	Rendered(key Key, reason Reason, err error)
	Suppressed(key Key)
	Tracked(n int)
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now as the clock used by Notify and SetActiveKey.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		c.observer = o
	}
}

// =============================================================================
// COORDINATOR
// =============================================================================

// state is the per-key refresh bookkeeping. Zero times mean absent.
type state struct {
	lastRenderedAt time.Time
	pendingSince   time.Time
}

// Stats is a snapshot of coordinator counters.
type Stats struct {
	Immediate  uint64
	Deferred   uint64
	CatchUp    uint64
	Suppressed uint64
	Failed     uint64
}

// Rendered returns the total number of dispatched renders.
func (s Stats) Rendered() uint64 {
	return s.Immediate + s.Deferred + s.CatchUp
}

// Coordinator debounces renders per Key and issues catch-up renders for the
// active key. It is not safe for concurrent use.
type Coordinator struct {
	cfg      Config
	render   Renderer
	now      func() time.Time
	observer Observer

	states map[Key]*state

	active      Key
	activatedAt time.Time

	stats Stats
}

// New creates a Coordinator. render is required.
func New(cfg Config, render Renderer, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if render == nil {
		return nil, fmt.Errorf("%w: renderer is nil", ErrInvalidConfig)
	}

	c := &Coordinator{
		cfg:    cfg,
		render: render,
		now:    time.Now,
		states: make(map[Key]*state),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the intervals the coordinator was built with.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// Notify announces new data for key. The render happens now if the policy
// allows it; otherwise the announcement is kept pending, with the oldest
// pending timestamp preserved, until a Tick honors it.
// The returned error is the renderer's, if it ran and failed.
func (c *Coordinator) Notify(key Key) error {
	now := c.now()

	st, ok := c.states[key]
	if !ok {
		st = &state{}
		c.states[key] = st
		c.tracked()
	}

	pending := st.pendingSince
	if pending.IsZero() {
		pending = now
	}

	if Decide(now, st.lastRenderedAt, pending, c.cfg.MinRenderInterval) == Allow {
		return c.dispatch(key, st, now, ReasonImmediate)
	}

	st.pendingSince = pending
	c.stats.Suppressed++
	if c.observer != nil {
		c.observer.Suppressed(key)
	}
	return nil
}

// SetActiveKey records the visible conversation and arms its catch-up timer.
// The zero Key clears it. It never renders: the view is expected to have
// drawn the conversation when the user switched to it.
func (c *Coordinator) SetActiveKey(key Key) {
	c.active = key
	if key.IsZero() {
		c.activatedAt = time.Time{}
		return
	}
	c.activatedAt = c.now()
}

// ActiveKey returns the active key, if any.
func (c *Coordinator) ActiveKey() (Key, bool) {
	return c.active, !c.active.IsZero()
}

// Tick runs the periodic pass at now:
//
//  1. the active key is rendered if it has gone CatchUpInterval without one
//  2. every pending key the policy now allows is rendered
//
// Each key renders at most once per Tick. Renderer failures do not stop the
// pass; they are joined into the returned error.
func (c *Coordinator) Tick(now time.Time) error {
	var errs []error
	var caughtUp Key

	if !c.active.IsZero() && c.catchUpDue(now) {
		st, ok := c.states[c.active]
		if !ok {
			st = &state{}
			c.states[c.active] = st
			c.tracked()
		}
		if err := c.dispatch(c.active, st, now, ReasonCatchUp); err != nil {
			errs = append(errs, err)
		}
		caughtUp = c.active
	}

	for _, key := range c.pendingKeys() {
		if !caughtUp.IsZero() && key == caughtUp {
			continue
		}
		st := c.states[key]
		if Decide(now, st.lastRenderedAt, st.pendingSince, c.cfg.MinRenderInterval) != Allow {
			continue
		}
		if err := c.dispatch(key, st, now, ReasonDeferred); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// RemoveKey forgets key. Unknown keys are ignored. Removing the active key
// clears it.
func (c *Coordinator) RemoveKey(key Key) {
	if _, ok := c.states[key]; ok {
		delete(c.states, key)
		c.tracked()
	}
	if c.active == key {
		c.active = Key{}
		c.activatedAt = time.Time{}
	}
}

// Pending reports whether key has an unconsumed announcement.
func (c *Coordinator) Pending(key Key) bool {
	st, ok := c.states[key]
	return ok && !st.pendingSince.IsZero()
}

// Len returns the number of tracked keys.
func (c *Coordinator) Len() int {
	return len(c.states)
}

// Stats returns a copy of the counters.
func (c *Coordinator) Stats() Stats {
	return c.stats
}

// catchUpDue reports whether the active key is owed a catch-up render.
// The reference point is the later of its last render and its activation.
func (c *Coordinator) catchUpDue(now time.Time) bool {
	ref := c.activatedAt
	if st, ok := c.states[c.active]; ok && st.lastRenderedAt.After(ref) {
		ref = st.lastRenderedAt
	}
	if ref.IsZero() {
		return false
	}
	return now.Sub(ref) >= c.cfg.CatchUpInterval
}

// pendingKeys returns keys with pending announcements in stable order.
func (c *Coordinator) pendingKeys() []Key {
	var keys []Key
	for key, st := range c.states {
		if !st.pendingSince.IsZero() {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b Key) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		default:
			return 0
		}
	})
	return keys
}

// dispatch invokes the renderer and resets the key's state. A failed render
// still counts as dispatched so a broken renderer is not retried every tick.
func (c *Coordinator) dispatch(key Key, st *state, now time.Time, reason Reason) error {
	err := c.render(key)

	st.lastRenderedAt = now
	st.pendingSince = time.Time{}

	switch reason {
	case ReasonImmediate:
		c.stats.Immediate++
	case ReasonDeferred:
		c.stats.Deferred++
	case ReasonCatchUp:
		c.stats.CatchUp++
	}
	if err != nil {
		c.stats.Failed++
		err = fmt.Errorf("render %s: %w", key, err)
	}
	if c.observer != nil {
		c.observer.Rendered(key, reason, err)
	}
	return err
}

func (c *Coordinator) tracked() {
	if c.observer != nil {
		c.observer.Tracked(len(c.states))
	}
}
