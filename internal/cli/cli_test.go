// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ircdesk/internal/config"
	"github.com/jeranaias/ircdesk/internal/storage"
)

// runCLI executes the command tree with args and returns its plain output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return ansi.Strip(out.String()), err
}

// tempConfig returns a config path inside a fresh directory and clears the
// environment overrides.
func tempConfig(t *testing.T) string {
	t.Helper()
	for _, env := range []string{"IRCDESK_NICK", "IRCDESK_PASSWORD", "IRCDESK_TLS", "IRCDESK_DB", "IRCDESK_LOG_LEVEL", "IRCDESK_THEME"} {
		t.Setenv(env, "")
	}
	return filepath.Join(t.TempDir(), "config.toml")
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func TestConfigInit(t *testing.T) {
	path := tempConfig(t)

	out, err := runCLI(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	loaded, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Refresh, loaded.Refresh)

	_, err = runCLI(t, "--config", path, "config", "init")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Contains(t, usage.Message, "--force")

	_, err = runCLI(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigShowWithoutFileUsesDefaults(t *testing.T) {
	path := tempConfig(t)

	out, err := runCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"min_render_interval_ms": 500`)
	assert.Contains(t, out, `"catch_up_interval_ms": 5000`)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "show must not create the file")
}

func TestConfigShowRedactsPassword(t *testing.T) {
	path := tempConfig(t)
	_, err := runCLI(t, "--config", path, "config", "set", "network.password", "hunter2")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "[REDACTED]")

	out, err = runCLI(t, "--config", path, "config", "get", "network.password")
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]\n", out)
}

func TestConfigSetAndGet(t *testing.T) {
	path := tempConfig(t)

	_, err := runCLI(t, "--config", path, "config", "set", "ui.theme", "light")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", path, "config", "set", "refresh.min_render_interval_ms", "250")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", path, "config", "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = runCLI(t, "--config", path, "config", "get", "refresh.min_render_interval_ms")
	require.NoError(t, err)
	assert.Equal(t, "250\n", out)
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	path := tempConfig(t)

	_, err := runCLI(t, "--config", path, "config", "set", "ui.theme", "purple")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid value must not be saved")

	_, err = runCLI(t, "--config", path, "config", "set", "no.such.key", "1")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = runCLI(t, "--config", path, "config", "get", "nope")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfigPathAndKeys(t *testing.T) {
	path := tempConfig(t)

	out, err := runCLI(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = runCLI(t, "config", "keys")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(config.GetAllKeys(), "\n")+"\n", out)
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	path := tempConfig(t)

	_, err := runCLI(t, "--config", path, "--log-level", "chatty", "config", "show")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	out, err := runCLI(t, "--config", path, "--log-level", "debug", "config", "get", "logging.level")
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)
}

// =============================================================================
// SERVERS COMMAND TESTS
// =============================================================================

// seedStore points the config at a fresh database and fills it.
func seedStore(t *testing.T, path string, fill func(*storage.Store)) {
	t.Helper()
	dbPath := filepath.Join(filepath.Dir(path), "ircdesk.db")
	_, err := runCLI(t, "--config", path, "config", "set", "storage.database_path", dbPath)
	require.NoError(t, err)

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	fill(store)
	require.NoError(t, store.Close())
}

func TestServersEmpty(t *testing.T) {
	path := tempConfig(t)
	seedStore(t, path, func(*storage.Store) {})

	out, err := runCLI(t, "--config", path, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved servers")
}

func TestServersListsChannels(t *testing.T) {
	path := tempConfig(t)
	seedStore(t, path, func(s *storage.Store) {
		require.NoError(t, s.SaveServer(storage.Server{Name: "irc.libera.chat", Port: 6697, UseTLS: true, Nickname: "alice"}))
		require.NoError(t, s.SaveChannel(storage.Channel{Server: "irc.libera.chat", Name: "#go-nuts", AutoJoin: true}))
		require.NoError(t, s.SaveChannel(storage.Channel{Server: "irc.libera.chat", Name: "bob", IsPrivate: true}))
	})

	out, err := runCLI(t, "--config", path, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "irc.libera.chat:6697 (tls) as alice")
	assert.Contains(t, out, "#go-nuts (auto-join)")
	assert.Contains(t, out, "bob (private)")
	assert.Contains(t, out, "last connected")
}

func TestServersForget(t *testing.T) {
	path := tempConfig(t)
	seedStore(t, path, func(s *storage.Store) {
		require.NoError(t, s.SaveServer(storage.Server{Name: "irc.oftc.net"}))
	})

	_, err := runCLI(t, "--config", path, "servers", "forget", "irc.oftc.net")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", path, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved servers")

	_, err = runCLI(t, "--config", path, "servers", "forget", "irc.oftc.net")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Message: "bad"}, ExitUsageError},
		{"validation", config.ValidationError{Field: "ui.theme", Message: "bad"}, ExitConfigError},
		{"validation list", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "x", Message: "y"}}), ExitConfigError},
		{"not found", &CommandError{Command: "servers", Action: "forget", Err: storage.ErrNotFound}, ExitNotFoundError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCommandErrorUnwraps(t *testing.T) {
	err := &CommandError{Command: "config", Action: "set", Err: storage.ErrNotFound}
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "config set: "+storage.ErrNotFound.Error(), err.Error())
}
