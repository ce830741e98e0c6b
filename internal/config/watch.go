// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/ircdesk/internal/logging"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// Watcher reloads a config file after it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	mu        sync.Mutex
	changedAt time.Time // zero when nothing is pending
}

// Watch starts watching path. onChange receives every config that loads and
// validates; files that fail to load are logged and skipped. The directory is
// watched rather than the file so editors that replace the file on save are
// still seen.
func Watch(path string, debounce time.Duration, onChange func(*Config)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("config watch: onChange is nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config watch: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	logger := logging.Component("config")

	interval := w.debounce / 2
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				if w.changedAt.IsZero() {
					w.changedAt = time.Now()
				}
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Str("path", w.path).Msg("config watcher error")

		case now := <-ticker.C:
			w.mu.Lock()
			due := !w.changedAt.IsZero() && now.Sub(w.changedAt) >= w.debounce
			if due {
				w.changedAt = time.Time{}
			}
			w.mu.Unlock()
			if !due {
				continue
			}

			cfg, err := LoadFromPath(w.path)
			if err != nil {
				logger.Warn().Err(err).Str("path", w.path).Msg("config reload failed, keeping previous settings")
				continue
			}
			logger.Info().Str("path", w.path).Msg("config reloaded")
			w.onChange(cfg)
		}
	}
}
