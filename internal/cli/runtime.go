// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/config"
	"github.com/jeranaias/ircdesk/internal/irc"
	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/metrics"
	"github.com/jeranaias/ircdesk/internal/model"
	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/server"
	"github.com/jeranaias/ircdesk/internal/storage"
	"github.com/jeranaias/ircdesk/internal/ui/chat"
	"github.com/jeranaias/ircdesk/internal/ui/components"
	"github.com/jeranaias/ircdesk/internal/ui/line"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

// configReloadDebounce coalesces the burst of writes an editor makes on save.
const configReloadDebounce = 300 * time.Millisecond

// =============================================================================
// CONFIG LOADING
// =============================================================================

// loadConfig loads the config at opts.configPath, or the default location
// when it is empty. A missing file yields the defaults. It also returns the
// path a reload watcher should follow.
func loadConfig(opts *rootOptions) (*config.Config, string, error) {
	path := opts.configPath
	var cfg *config.Config
	var err error
	switch {
	case path == "":
		if path, err = config.ConfigPathTOML(); err != nil {
			return nil, "", err
		}
		cfg, err = config.Load()
		if cfg == nil {
			return nil, path, &CommandError{Command: "ircdesk", Action: "load config", Err: err}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	case fileExists(path):
		if cfg, err = config.LoadFromPath(path); err != nil {
			return nil, path, err
		}
	default:
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, path, &UsageError{Message: err.Error()}
		}
	}
	return cfg, path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// RUNTIME
// =============================================================================

// runtime owns the long-lived pieces shared by both UIs.
type runtime struct {
	cfg     *config.Config
	cfgPath string
	store   *storage.Store
	session *irc.Session
	chats   *model.ChatList
	closers []io.Closer
	logger  zerolog.Logger
}

func newRuntime(opts *rootOptions) (*runtime, error) {
	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	logCloser, err := logging.Setup(logging.Config{
		Level:      logging.LogLevel(cfg.Logging.Level),
		Format:     logging.LogFormat(cfg.Logging.Format),
		File:       logPath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		logCloser.Close()
		return nil, &CommandError{Command: "ircdesk", Action: "open database", Err: err}
	}

	rt := &runtime{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   store,
		session: irc.NewSession(cfg.Network.EventBuffer),
		chats:   model.NewChatList(),
		logger:  logging.Component("cli"),
	}
	if opts.metricsAddr != "" {
		status, err := server.New(opts.metricsAddr, opts.version, prometheus.DefaultGatherer)
		if err != nil {
			store.Close()
			logCloser.Close()
			return nil, &UsageError{Message: "--metrics-addr: " + err.Error()}
		}
		if err := status.Start(); err != nil {
			rt.logger.Warn().Err(err).Msg("status server disabled")
		} else {
			rt.closers = append(rt.closers, status)
		}
	}
	rt.closers = append(rt.closers, store, logCloser)
	rt.logger.Info().Str("config", cfgPath).Str("database", dbPath).Msg("starting")
	return rt, nil
}

// controller wires the coordinator around render and restores saved servers.
func (rt *runtime) controller(render refresh.Renderer) (*app.Controller, error) {
	coord, err := refresh.New(rt.cfg.RefreshCoordinatorConfig(), render,
		refresh.WithObserver(metrics.RefreshObserver()))
	if err != nil {
		return nil, err
	}
	ctrl, err := app.NewController(app.Deps{
		Session: rt.session,
		Store:   rt.store,
		Chats:   rt.chats,
		Refresh: coord,
		Config:  rt.cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := ctrl.Restore(); err != nil {
		rt.logger.Warn().Err(err).Msg("restoring saved servers")
	}
	return ctrl, nil
}

// Close quits every connection and releases the store and the log file.
func (rt *runtime) Close() error {
	errs := []error{rt.session.Close()}
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// =============================================================================
// UIS
// =============================================================================

func runTUI(ctx context.Context, opts *rootOptions) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	theme := styles.NewTheme(rt.cfg.UI.Theme)
	renderer := chat.NewRenderer(rt.chats, theme, components.RenderOptions{
		ShowTimestamps: rt.cfg.UI.ShowTimestamps,
		Compact:        rt.cfg.UI.CompactMode,
	})
	ctrl, err := rt.controller(renderer.Render)
	if err != nil {
		return err
	}

	m := chat.New(chat.Options{
		Controller:   ctrl,
		Renderer:     renderer,
		UI:           rt.cfg.UI,
		TickInterval: rt.cfg.TickInterval(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	watcher, err := config.Watch(rt.cfgPath, configReloadDebounce, func(cfg *config.Config) {
		p.Send(chat.ConfigChangedMsg{Config: cfg})
	})
	if err != nil {
		rt.logger.Warn().Err(err).Msg("config reload disabled")
	} else {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runLine(ctx context.Context, opts *rootOptions) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	theme := styles.NewTheme(rt.cfg.UI.Theme)
	printer := line.NewPrinter(rt.chats, os.Stdout, theme, components.RenderOptions{
		Width:          GetTerminalWidth(),
		ShowTimestamps: rt.cfg.UI.ShowTimestamps,
	})
	ctrl, err := rt.controller(printer.Render)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loop := app.NewLoop(ctrl, rt.cfg.TickInterval())
	go loop.Run(ctx)

	repl := line.New(line.Options{
		Loop:        loop,
		Printer:     printer,
		HistoryFile: filepath.Join(filepath.Dir(rt.cfgPath), "line_history"),
		Out:         os.Stdout,
	})
	err = repl.Run(ctx)
	cancel()
	<-loop.Done()
	return err
}
