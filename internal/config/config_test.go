// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a temp dir so tests never read
// the developer's real ~/.ircdesk.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{"IRCDESK_NICK", "IRCDESK_PASSWORD", "IRCDESK_TLS", "IRCDESK_DB", "IRCDESK_LOG_LEVEL", "IRCDESK_THEME"} {
		t.Setenv(key, "")
	}
	return home
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			c.Identity.Nickname = "tester"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentMixedOperations tests a mix of all global operations
// happening concurrently.
func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 99; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			go func() {
				defer wg.Done()
				if cfg := Global(); cfg == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			go func() {
				defer wg.Done()
				_ = ReloadGlobal()
			}()
		}
	}
	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() falls back to defaults
// when no config file exists.
func TestConfig_GlobalInitialization(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.Refresh.MinRenderIntervalMs != 500 {
		t.Errorf("Expected default min render interval 500, got %d", cfg.Refresh.MinRenderIntervalMs)
	}
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	if got := Global().Version; got != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", got)
	}
}

// TestConfig_Default tests that Default() returns a valid config.
func TestConfig_Default(t *testing.T) {
	cfg := Default()
	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
	if cfg.Network.DefaultPort != 6667 {
		t.Errorf("Expected default port 6667, got %d", cfg.Network.DefaultPort)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Expected default theme 'auto', got '%s'", cfg.UI.Theme)
	}
}

func TestConfig_RefreshCoordinatorConfig(t *testing.T) {
	cfg := Default()
	cfg.Refresh.MinRenderIntervalMs = 1000
	cfg.Refresh.CatchUpIntervalMs = 5000
	cfg.Refresh.TickIntervalMs = 100

	rc := cfg.RefreshCoordinatorConfig()
	require.Equal(t, time.Second, rc.MinRenderInterval)
	require.Equal(t, 5*time.Second, rc.CatchUpInterval)
	require.NoError(t, rc.Validate())
	require.Equal(t, 100*time.Millisecond, cfg.TickInterval())
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		field   string
		wantErr bool
	}{
		{name: "valid default config", mutate: func(c *Config) {}},
		{
			name:    "zero min render interval",
			mutate:  func(c *Config) { c.Refresh.MinRenderIntervalMs = 0 },
			field:   "refresh.min_render_interval_ms",
			wantErr: true,
		},
		{
			name: "catch-up shorter than min interval",
			mutate: func(c *Config) {
				c.Refresh.MinRenderIntervalMs = 2000
				c.Refresh.CatchUpIntervalMs = 1000
			},
			field:   "refresh.catch_up_interval_ms",
			wantErr: true,
		},
		{
			name: "catch-up equal to min interval",
			mutate: func(c *Config) {
				c.Refresh.MinRenderIntervalMs = 1000
				c.Refresh.CatchUpIntervalMs = 1000
			},
		},
		{
			name:    "tick longer than catch-up",
			mutate:  func(c *Config) { c.Refresh.TickIntervalMs = 10000 },
			field:   "refresh.tick_interval_ms",
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Network.DefaultPort = 70000 },
			field:   "network.default_port",
			wantErr: true,
		},
		{
			name:    "nickname with space",
			mutate:  func(c *Config) { c.Identity.Nickname = "bad nick" },
			field:   "identity.nickname",
			wantErr: true,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			field:   "ui.theme",
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			field:   "logging.level",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error %q does not name field %s", err, tt.field)
			}
		})
	}
}

func TestConfig_SaveAndLoadTOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Identity.Nickname = "alice"
	cfg.Refresh.MinRenderIntervalMs = 750
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "alice", loaded.Identity.Nickname)
	require.Equal(t, 750, loaded.Refresh.MinRenderIntervalMs)
	require.Equal(t, 5000, loaded.Refresh.CatchUpIntervalMs)
}

func TestConfig_LoadFillsMissingSections(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[identity]\nnickname = \"bob\"\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.Identity.Nickname)
	require.Equal(t, Default().Refresh, cfg.Refresh)
	require.Equal(t, Default().Network.DefaultPort, cfg.Network.DefaultPort)
}

func TestConfig_LoadJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "light", loaded.UI.Theme)
}

func TestConfig_LoadRejectsInvalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[refresh]\nmin_render_interval_ms = 3000\ncatch_up_interval_ms = 1000\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
}

func TestConfig_LoadFromHome(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".ircdesk")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"dark\"\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dark", cfg.UI.Theme)

	// Loading tightens permissions
	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 600", info.Mode().Perm())
	}
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("IRCDESK_NICK", "envnick")
	t.Setenv("IRCDESK_TLS", "true")
	t.Setenv("IRCDESK_LOG_LEVEL", "debug")
	t.Setenv("IRCDESK_DB", "/tmp/other.db")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Identity.Nickname != "envnick" {
		t.Errorf("nickname = %q, want envnick", cfg.Identity.Nickname)
	}
	if !cfg.Network.UseTLS {
		t.Error("IRCDESK_TLS=true should enable TLS")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/other.db", path)
}

func TestConfig_DefaultPaths(t *testing.T) {
	home := isolateHome(t)
	cfg := Default()

	db, err := cfg.DatabasePath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".ircdesk", "ircdesk.db"), db)

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".ircdesk", "ircdesk.log"), logPath)
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "auto" {
		t.Errorf("Get('ui.theme') = %v, want 'auto'", val)
	}

	if err := cfg.Set("refresh.tick_interval_ms", "125"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Refresh.TickIntervalMs != 125 {
		t.Errorf("tick interval after Set = %d, want 125", cfg.Refresh.TickIntervalMs)
	}

	if err := cfg.Set("network.use_tls", "yes"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !cfg.Network.UseTLS {
		t.Error("use_tls should be true after Set")
	}

	if err := cfg.Set("network.send_rate_per_sec", 4.5); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Network.SendRatePerSec != 4.5 {
		t.Errorf("send rate = %v, want 4.5", cfg.Network.SendRatePerSec)
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if _, err := cfg.Get("version.nested"); err == nil {
		t.Error("Get() through a non-struct field should return error")
	}
}

func TestConfig_GetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()
	clone.Version = "cloned"

	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
}

func TestConfig_StringRedactsPassword(t *testing.T) {
	cfg := Default()
	cfg.Network.Password = "hunter2"

	out := cfg.String()
	if strings.Contains(out, "hunter2") {
		t.Error("String() leaked the server password")
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Error("String() should mark the password as redacted")
	}
	if cfg.Network.Password != "hunter2" {
		t.Error("String() must not modify the receiver")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	changes := make(chan *Config, 4)
	w, err := Watch(path, 20*time.Millisecond, func(c *Config) { changes <- c })
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-changes:
		require.Equal(t, "light", got.UI.Theme)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatch_NilCallback(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "config.toml"), time.Millisecond, nil)
	require.Error(t, err)
}
