// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ircdesk/internal/refresh"
	"github.com/jeranaias/ircdesk/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ircdesk configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Identity IdentityConfig `toml:"identity" json:"identity"`
	Refresh  RefreshConfig  `toml:"refresh" json:"refresh"`
	Network  NetworkConfig  `toml:"network" json:"network"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
}

// IdentityConfig is the default identity used when connecting.
// Empty values fall back to the profile stored in the settings database.
type IdentityConfig struct {
	Nickname string `toml:"nickname" json:"nickname"`
	Username string `toml:"username" json:"username"`
	Realname string `toml:"realname" json:"realname"`
}

// RefreshConfig holds the conversation redraw intervals.
type RefreshConfig struct {
	// MinRenderIntervalMs is the minimum spacing between two redraws of one conversation.
	MinRenderIntervalMs int `toml:"min_render_interval_ms" json:"min_render_interval_ms"`
	// CatchUpIntervalMs forces a redraw of the visible conversation this often.
	CatchUpIntervalMs int `toml:"catch_up_interval_ms" json:"catch_up_interval_ms"`
	// TickIntervalMs is how often pending redraws are re-evaluated.
	TickIntervalMs int `toml:"tick_interval_ms" json:"tick_interval_ms"`
}

// NetworkConfig holds connection defaults and flood control.
type NetworkConfig struct {
	DefaultPort int  `toml:"default_port" json:"default_port"`
	UseTLS      bool `toml:"use_tls" json:"use_tls"`
	// Password is sent as the server password (PASS) when set.
	Password string `toml:"password" json:"password"`
	// SendRatePerSec and SendBurst bound outgoing messages per connection set.
	SendRatePerSec float64 `toml:"send_rate_per_sec" json:"send_rate_per_sec"`
	SendBurst      int     `toml:"send_burst" json:"send_burst"`
	// EventBuffer is the capacity of the inbound event queue.
	EventBuffer int `toml:"event_buffer" json:"event_buffer"`
}

// StorageConfig locates the settings database.
type StorageConfig struct {
	// DatabasePath is the SQLite file (empty = ~/.ircdesk/ircdesk.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains user interface settings.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"` // "auto", "dark", "light"
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
	CompactMode    bool   `toml:"compact_mode" json:"compact_mode"`
	SidebarWidth   int    `toml:"sidebar_width" json:"sidebar_width"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level"`
	Format     string `toml:"format" json:"format"`
	File       string `toml:"file" json:"file"` // empty = ~/.ircdesk/ircdesk.log
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
}

// =============================================================================
// DEFAULT VALUES
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Refresh: RefreshConfig{
			MinRenderIntervalMs: 500,
			CatchUpIntervalMs:   5000,
			TickIntervalMs:      250,
		},

		Network: NetworkConfig{
			DefaultPort:    6667,
			UseTLS:         false,
			SendRatePerSec: 2,
			SendBurst:      5,
			EventBuffer:    256,
		},

		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
			CompactMode:    false,
			SidebarWidth:   28,
		},

		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ircdesk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ircdesk"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ircdesk.db"), nil
}

// LogPath returns the configured log path or the default one.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ircdesk.log"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files may hold a server password, so they are kept at 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err = finish(Default())
	if err != nil {
		return nil, err
	}
	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Refresh
	if cfg.Refresh.MinRenderIntervalMs == 0 {
		cfg.Refresh.MinRenderIntervalMs = defaults.Refresh.MinRenderIntervalMs
	}
	if cfg.Refresh.CatchUpIntervalMs == 0 {
		cfg.Refresh.CatchUpIntervalMs = defaults.Refresh.CatchUpIntervalMs
	}
	if cfg.Refresh.TickIntervalMs == 0 {
		cfg.Refresh.TickIntervalMs = defaults.Refresh.TickIntervalMs
	}

	// Network
	if cfg.Network.DefaultPort == 0 {
		cfg.Network.DefaultPort = defaults.Network.DefaultPort
	}
	if cfg.Network.SendRatePerSec == 0 {
		cfg.Network.SendRatePerSec = defaults.Network.SendRatePerSec
	}
	if cfg.Network.SendBurst == 0 {
		cfg.Network.SendBurst = defaults.Network.SendBurst
	}
	if cfg.Network.EventBuffer == 0 {
		cfg.Network.EventBuffer = defaults.Network.EventBuffer
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = defaults.UI.SidebarWidth
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// RefreshCoordinatorConfig converts the refresh section for the coordinator.
func (c *Config) RefreshCoordinatorConfig() refresh.Config {
	return refresh.Config{
		MinRenderInterval: time.Duration(c.Refresh.MinRenderIntervalMs) * time.Millisecond,
		CatchUpInterval:   time.Duration(c.Refresh.CatchUpIntervalMs) * time.Millisecond,
	}
}

// TickInterval returns the refresh tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Refresh.TickIntervalMs) * time.Millisecond
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# ircdesk configuration file\n")
	buf.WriteString("# Generated by ircdesk - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Refresh intervals
	if c.Refresh.MinRenderIntervalMs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "refresh.min_render_interval_ms",
			Message: fmt.Sprintf("must be positive, got %d", c.Refresh.MinRenderIntervalMs),
		})
	}
	if c.Refresh.CatchUpIntervalMs < c.Refresh.MinRenderIntervalMs {
		errs = append(errs, ValidationError{
			Field: "refresh.catch_up_interval_ms",
			Message: fmt.Sprintf("must be at least min_render_interval_ms (%d), got %d",
				c.Refresh.MinRenderIntervalMs, c.Refresh.CatchUpIntervalMs),
		})
	}
	if c.Refresh.TickIntervalMs <= 0 || c.Refresh.TickIntervalMs > c.Refresh.CatchUpIntervalMs {
		errs = append(errs, ValidationError{
			Field:   "refresh.tick_interval_ms",
			Message: fmt.Sprintf("must be between 1 and catch_up_interval_ms, got %d", c.Refresh.TickIntervalMs),
		})
	}

	// Network
	if c.Network.DefaultPort < 1 || c.Network.DefaultPort > 65535 {
		errs = append(errs, ValidationError{
			Field:   "network.default_port",
			Message: fmt.Sprintf("port %d out of range 1-65535", c.Network.DefaultPort),
		})
	}
	if c.Network.SendRatePerSec <= 0 {
		errs = append(errs, ValidationError{
			Field:   "network.send_rate_per_sec",
			Message: "must be positive",
		})
	}
	if c.Network.SendBurst < 1 {
		errs = append(errs, ValidationError{
			Field:   "network.send_burst",
			Message: "must be at least 1",
		})
	}
	if c.Network.EventBuffer < 1 {
		errs = append(errs, ValidationError{
			Field:   "network.event_buffer",
			Message: "must be at least 1",
		})
	}

	// Identity: IRC nicknames cannot contain spaces
	if strings.ContainsAny(c.Identity.Nickname, " \t,") {
		errs = append(errs, ValidationError{
			Field:   "identity.nickname",
			Message: fmt.Sprintf("invalid nickname %q", c.Identity.Nickname),
		})
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 12 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be between 12 and 80, got %d", c.UI.SidebarWidth),
		})
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: json, console", c.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - IRCDESK_NICK: overrides identity.nickname
//   - IRCDESK_PASSWORD: overrides network.password
//   - IRCDESK_TLS: set to "1" or "true" to connect with TLS
//   - IRCDESK_DB: overrides storage.database_path
//   - IRCDESK_LOG_LEVEL: overrides logging.level
//   - IRCDESK_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if nick := os.Getenv("IRCDESK_NICK"); nick != "" {
		c.Identity.Nickname = nick
	}
	if password := os.Getenv("IRCDESK_PASSWORD"); password != "" {
		c.Network.Password = password
	}
	if useTLS := os.Getenv("IRCDESK_TLS"); useTLS != "" {
		c.Network.UseTLS = useTLS == "1" || strings.ToLower(useTLS) == "true"
	}
	if db := os.Getenv("IRCDESK_DB"); db != "" {
		c.Storage.DatabasePath = db
	}
	if level := os.Getenv("IRCDESK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if theme := os.Getenv("IRCDESK_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "refresh.tick_interval_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the dotted key through nested structs.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"identity.nickname",
		"identity.username",
		"identity.realname",
		"refresh.min_render_interval_ms",
		"refresh.catch_up_interval_ms",
		"refresh.tick_interval_ms",
		"network.default_port",
		"network.use_tls",
		"network.password",
		"network.send_rate_per_sec",
		"network.send_burst",
		"network.event_buffer",
		"storage.database_path",
		"ui.theme",
		"ui.show_timestamps",
		"ui.compact_mode",
		"ui.sidebar_width",
		"logging.level",
		"logging.format",
		"logging.file",
		"logging.max_size_mb",
		"logging.max_backups",
	}
}

// Clone returns a copy of the config. Config holds no maps or slices, so a
// value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON with the server password redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Network.Password != "" {
		safe.Network.Password = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
