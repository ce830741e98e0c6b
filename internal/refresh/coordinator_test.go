// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package refresh

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type fakeClock struct {
	base time.Time
	now  time.Time
}

func newFakeClock() *fakeClock {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeClock{base: base, now: base}
}

func (f *fakeClock) Now() time.Time { return f.now }

// set moves the clock to ms milliseconds after the base and returns it.
func (f *fakeClock) set(ms int) time.Time {
	f.now = f.base.Add(time.Duration(ms) * time.Millisecond)
	return f.now
}

type renderLog struct {
	clock *fakeClock
	calls []renderCall
	fail  error
}

type renderCall struct {
	key Key
	at  time.Time
}

func (r *renderLog) render(key Key) error {
	r.calls = append(r.calls, renderCall{key: key, at: r.clock.now})
	return r.fail
}

func (r *renderLog) count(key Key) int {
	n := 0
	for _, c := range r.calls {
		if c.key == key {
			n++
		}
	}
	return n
}

func newTestCoordinator(t *testing.T, cfg Config, opts ...Option) (*Coordinator, *fakeClock, *renderLog) {
	t.Helper()
	clock := newFakeClock()
	log := &renderLog{clock: clock}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	c, err := New(cfg, log.render, opts...)
	require.NoError(t, err)
	return c, clock, log
}

var (
	keyA = NewKey("irc.libera.chat", "#a")
	keyB = NewKey("irc.libera.chat", "#b")
	keyC = NewKey("irc.oftc.net", "#c")
)

func oneSecond() Config {
	return Config{MinRenderInterval: time.Second, CatchUpInterval: 5 * time.Second}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_InvalidConfig(t *testing.T) {
	noop := func(Key) error { return nil }

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero min interval", Config{MinRenderInterval: 0, CatchUpInterval: time.Second}},
		{"negative min interval", Config{MinRenderInterval: -time.Second, CatchUpInterval: time.Second}},
		{"catch-up shorter than min", Config{MinRenderInterval: 2 * time.Second, CatchUpInterval: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, noop)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

// =============================================================================
// NOTIFY / DEBOUNCE
// =============================================================================

func TestNotify_FirstRenderIsImmediate(t *testing.T) {
	c, _, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	assert.Equal(t, 1, log.count(keyA))
	assert.False(t, c.Pending(keyA))
	assert.Equal(t, 1, c.Len())
}

func TestNotify_ScenarioBurstCollapsed(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	clock.set(0)
	require.NoError(t, c.Notify(keyA))
	require.Len(t, log.calls, 1)

	clock.set(200)
	require.NoError(t, c.Notify(keyA))
	assert.Len(t, log.calls, 1, "second notify inside the window must be suppressed")
	assert.True(t, c.Pending(keyA))
	assert.Equal(t, clock.base.Add(200*time.Millisecond), c.states[keyA].pendingSince)

	clock.set(600)
	require.NoError(t, c.Notify(keyA))
	assert.Len(t, log.calls, 1)
	assert.Equal(t, clock.base.Add(200*time.Millisecond), c.states[keyA].pendingSince,
		"oldest pending timestamp must be preserved")

	require.NoError(t, c.Tick(clock.set(999)))
	assert.Len(t, log.calls, 1)

	require.NoError(t, c.Tick(clock.set(1000)))
	require.Len(t, log.calls, 2)
	assert.Equal(t, clock.base.Add(time.Second), log.calls[1].at)
	assert.False(t, c.Pending(keyA))
}

func TestNotify_BurstAfterRenderYieldsExactlyOneMore(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	for ms := 10; ms < 1000; ms += 10 {
		clock.set(ms)
		require.NoError(t, c.Notify(keyA))
	}
	for ms := 1000; ms <= 3000; ms += 100 {
		require.NoError(t, c.Tick(clock.set(ms)))
	}

	assert.Equal(t, 2, log.count(keyA))
	assert.Equal(t, clock.base.Add(time.Second), log.calls[1].at)
}

func TestNotify_AfterIntervalRendersImmediately(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	clock.set(1500)
	require.NoError(t, c.Notify(keyA))

	assert.Equal(t, 2, log.count(keyA))
	assert.False(t, c.Pending(keyA))
}

func TestNotify_StarvationFreedom(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	// Announcements every 50ms for 10s, ticks every 250ms.
	for ms := 0; ms <= 10000; ms += 50 {
		clock.set(ms)
		require.NoError(t, c.Notify(keyA))
		if ms%250 == 0 {
			require.NoError(t, c.Tick(clock.now))
		}
	}

	require.GreaterOrEqual(t, len(log.calls), 10)
	for i := 1; i < len(log.calls); i++ {
		gap := log.calls[i].at.Sub(log.calls[i-1].at)
		assert.GreaterOrEqual(t, gap, time.Second, "renders %d and %d too close", i-1, i)
		assert.LessOrEqual(t, gap, time.Second+50*time.Millisecond, "renders %d and %d too far apart", i-1, i)
	}
}

func TestNotify_KeysAreIndependent(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	clock.set(100)
	require.NoError(t, c.Notify(keyB))
	require.NoError(t, c.Notify(keyA))

	assert.Equal(t, 1, log.count(keyA))
	assert.Equal(t, 1, log.count(keyB))
	assert.True(t, c.Pending(keyA))
	assert.False(t, c.Pending(keyB))
}

// =============================================================================
// TICK
// =============================================================================

func TestTick_ScenarioCatchUp(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	clock.set(0)
	c.SetActiveKey(keyB)
	require.NoError(t, c.Notify(keyB))
	require.Len(t, log.calls, 1)

	require.NoError(t, c.Tick(clock.set(4999)))
	assert.Len(t, log.calls, 1)

	require.NoError(t, c.Tick(clock.set(5000)))
	require.Len(t, log.calls, 2)
	assert.Equal(t, keyB, log.calls[1].key)

	require.NoError(t, c.Tick(clock.set(5001)))
	assert.Len(t, log.calls, 2, "catch-up fires once per interval")

	require.NoError(t, c.Tick(clock.set(10000)))
	assert.Len(t, log.calls, 3)
}

func TestTick_CatchUpOnlyForActiveKey(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	require.NoError(t, c.Notify(keyB))
	c.SetActiveKey(keyA)

	require.NoError(t, c.Tick(clock.set(60000)))
	assert.Equal(t, 2, log.count(keyA))
	assert.Equal(t, 1, log.count(keyB))
}

func TestTick_CatchUpArmedByActivationWithoutRender(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	clock.set(1000)
	c.SetActiveKey(keyC)
	assert.Empty(t, log.calls, "activation must not render")

	require.NoError(t, c.Tick(clock.set(5999)))
	assert.Empty(t, log.calls)

	require.NoError(t, c.Tick(clock.set(6000)))
	assert.Equal(t, 1, log.count(keyC))
}

func TestTick_ActivationRearmsTimer(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	clock.set(3000)
	c.SetActiveKey(keyA)

	require.NoError(t, c.Tick(clock.set(5000)))
	assert.Equal(t, 1, log.count(keyA))
	require.NoError(t, c.Tick(clock.set(8000)))
	assert.Equal(t, 2, log.count(keyA))
}

func TestTick_ActiveKeyRendersOncePerTick(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	c.SetActiveKey(keyA)
	require.NoError(t, c.Notify(keyA))
	clock.set(500)
	require.NoError(t, c.Notify(keyA))

	require.NoError(t, c.Tick(clock.set(5000)))
	assert.Equal(t, 2, log.count(keyA))
	assert.False(t, c.Pending(keyA))
}

func TestTick_PendingKeysInStableOrder(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	for _, k := range []Key{keyC, keyB, keyA} {
		require.NoError(t, c.Notify(k))
	}
	clock.set(100)
	for _, k := range []Key{keyC, keyB, keyA} {
		require.NoError(t, c.Notify(k))
	}
	log.calls = nil

	require.NoError(t, c.Tick(clock.set(1000)))
	require.Len(t, log.calls, 3)
	assert.Equal(t, []Key{keyA, keyB, keyC}, []Key{log.calls[0].key, log.calls[1].key, log.calls[2].key})
}

func TestTick_NoActiveNoPendingIsQuiet(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	require.NoError(t, c.Tick(clock.set(100000)))
	assert.Len(t, log.calls, 1)
}

// =============================================================================
// ACTIVE KEY / REMOVAL
// =============================================================================

func TestSetActiveKey(t *testing.T) {
	c, _, _ := newTestCoordinator(t, oneSecond())

	_, ok := c.ActiveKey()
	assert.False(t, ok)

	c.SetActiveKey(keyA)
	got, ok := c.ActiveKey()
	assert.True(t, ok)
	assert.Equal(t, keyA, got)

	c.SetActiveKey(Key{})
	_, ok = c.ActiveKey()
	assert.False(t, ok)
}

func TestRemoveKey_ActsLikeNewKey(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	clock.set(100)
	require.NoError(t, c.Notify(keyA))
	require.True(t, c.Pending(keyA))

	c.RemoveKey(keyA)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Pending(keyA))

	clock.set(200)
	require.NoError(t, c.Notify(keyA))
	assert.Equal(t, 2, log.count(keyA), "notify after removal renders immediately")
}

func TestRemoveKey_Idempotent(t *testing.T) {
	c, _, _ := newTestCoordinator(t, oneSecond())

	c.RemoveKey(keyA)
	require.NoError(t, c.Notify(keyA))
	c.RemoveKey(keyA)
	c.RemoveKey(keyA)
	assert.Equal(t, 0, c.Len())
}

func TestRemoveKey_ClearsActive(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	c.SetActiveKey(keyA)
	c.RemoveKey(keyA)
	_, ok := c.ActiveKey()
	assert.False(t, ok)

	require.NoError(t, c.Tick(clock.set(60000)))
	assert.Empty(t, log.calls)
}

// =============================================================================
// ERRORS / OBSERVER
// =============================================================================

func TestNotify_RendererErrorPropagates(t *testing.T) {
	c, _, log := newTestCoordinator(t, oneSecond())
	boom := errors.New("boom")
	log.fail = boom

	err := c.Notify(keyA)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), keyA.String())
	assert.False(t, c.Pending(keyA), "failed render still resets state")
	assert.Equal(t, uint64(1), c.Stats().Failed)
}

func TestTick_JoinsErrorsAndContinues(t *testing.T) {
	c, clock, log := newTestCoordinator(t, oneSecond())

	require.NoError(t, c.Notify(keyA))
	require.NoError(t, c.Notify(keyB))
	clock.set(10)
	require.NoError(t, c.Notify(keyA))
	require.NoError(t, c.Notify(keyB))

	boom := errors.New("boom")
	log.fail = boom
	err := c.Tick(clock.set(1000))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, log.count(keyA))
	assert.Equal(t, 2, log.count(keyB))
	assert.Equal(t, uint64(2), c.Stats().Failed)
}

type recordingObserver struct {
	reasons    []Reason
	suppressed int
	tracked    []int
}

func (o *recordingObserver) Rendered(_ Key, reason Reason, _ error) {
	o.reasons = append(o.reasons, reason)
}
func (o *recordingObserver) Suppressed(Key) { o.suppressed++ }
func (o *recordingObserver) Tracked(n int)  { o.tracked = append(o.tracked, n) }

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	c, clock, _ := newTestCoordinator(t, oneSecond(), WithObserver(obs))

	c.SetActiveKey(keyA)
	require.NoError(t, c.Notify(keyA))
	clock.set(100)
	require.NoError(t, c.Notify(keyA))
	require.NoError(t, c.Tick(clock.set(1000)))
	require.NoError(t, c.Tick(clock.set(6000)))
	c.RemoveKey(keyA)

	assert.Equal(t, []Reason{ReasonImmediate, ReasonDeferred, ReasonCatchUp}, obs.reasons)
	assert.Equal(t, 1, obs.suppressed)
	assert.Equal(t, []int{1, 0}, obs.tracked)

	stats := c.Stats()
	assert.Equal(t, uint64(3), stats.Rendered())
	assert.Equal(t, uint64(1), stats.Suppressed)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "immediate", ReasonImmediate.String())
	assert.Equal(t, "deferred", ReasonDeferred.String())
	assert.Equal(t, "catch_up", ReasonCatchUp.String())
	assert.Equal(t, "unknown", Reason(9).String())
}
