// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/logging"
)

// ErrLoopStopped is returned by Call after Run has returned.
var ErrLoopStopped = errors.New("event loop stopped")

// =============================================================================
// EVENT LOOP
// =============================================================================

// Loop serialises every Controller call onto one goroutine: session events,
// refresh ticks, and closures posted from other goroutines such as a
// blocking prompt reader.
type Loop struct {
	ctrl   *Controller
	tick   time.Duration
	posts  chan func()
	done   chan struct{}
	logger zerolog.Logger
}

// NewLoop creates a loop that ticks the controller every tick.
func NewLoop(ctrl *Controller, tick time.Duration) *Loop {
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	return &Loop{
		ctrl:   ctrl,
		tick:   tick,
		posts:  make(chan func()),
		done:   make(chan struct{}),
		logger: logging.Component("loop"),
	}
}

// Run drives the controller until ctx is cancelled. Renderer failures are
// logged, never fatal.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	events := l.ctrl.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				// Session closed; keep serving ticks and posts
				events = nil
				continue
			}
			if err := l.ctrl.HandleEvent(ev); err != nil {
				l.logger.Warn().Err(err).Str("kind", ev.Kind.String()).Msg("event handling failed")
			}

		case now := <-ticker.C:
			if err := l.ctrl.Tick(now); err != nil {
				l.logger.Warn().Err(err).Msg("refresh tick failed")
			}

		case fn := <-l.posts:
			fn()
		}
	}
}

// Post schedules fn on the loop goroutine. It blocks until the loop accepts
// fn and returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.posts <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for its result.
func (l *Loop) Call(fn func(*Controller) error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn(l.ctrl) }) {
		return ErrLoopStopped
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		// fn may have run right before shutdown
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
