// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the global zerolog logger.
//
// The TUI owns the terminal, so by default logs go to a size-rotated file
// under ~/.ircdesk rather than to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFormat is the output encoding.
type LogFormat string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON LogFormat = "json"
	// FormatConsole writes human-readable lines.
	FormatConsole LogFormat = "console"
)

// LogLevel is the minimum level written.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config contains logger configuration.
type Config struct {
	Level  LogLevel
	Format LogFormat

	// File is the log file path. Empty means Output is used as-is.
	File       string
	MaxSizeMB  int
	MaxBackups int

	// IncludeCaller adds file:line to each entry.
	IncludeCaller bool

	// Output is used when File is empty. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns a config that logs info and above as JSON to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatJSON,
		MaxSizeMB:  10,
		MaxBackups: 3,
		Output:     os.Stderr,
	}
}

// Setup configures the global logger. The returned closer releases the log
// file, if any; it is never nil.
func Setup(config Config) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := parseLevel(config.Level)
	if err != nil {
		return nopCloser{}, err
	}

	var output io.Writer = config.Output
	var closer io.Closer = nopCloser{}
	if config.File != "" {
		if err := os.MkdirAll(filepath.Dir(config.File), 0700); err != nil {
			return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
		}
		output = rotator
		closer = rotator
	}
	if output == nil {
		output = os.Stderr
	}

	if config.Format == FormatConsole {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    config.File != "",
		}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if config.IncludeCaller {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	zerolog.SetGlobalLevel(level)

	return closer, nil
}

// Component returns a child of the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// parseLevel converts a LogLevel to zerolog.Level. Empty means info.
func parseLevel(level LogLevel) (zerolog.Level, error) {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelInfo, "":
		return zerolog.InfoLevel, nil
	case LevelWarn:
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
