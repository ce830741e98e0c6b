// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ircdesk.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - RefreshConfig: Redraw intervals fed to the refresh coordinator
//   - NetworkConfig: Connection defaults and send flood control
//   - LoggingConfig: Log level, format and rotation
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (IRCDESK_*)
//   - ~/.ircdesk/config.toml
//   - ~/.ircdesk/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	coord, err := refresh.New(cfg.RefreshCoordinatorConfig(), render)
//
// Watch reloads a file when it changes on disk:
//
//	stop, err := config.Watch(path, 200*time.Millisecond, func(c *config.Config) {
//	    config.SetGlobal(c)
//	})
package config
