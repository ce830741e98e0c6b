// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with a single /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the lower-cased command name (e.g., "/join")
	CommandName string

	Args []string

	// RawArgs is everything after the command name, untouched
	RawArgs string
}

// =============================================================================
// PARSER
// =============================================================================

// Parse parses user input against the registry. A leading "//" escapes the
// slash: the input is plain text starting with "/".
func (r *Registry) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)

	var result ParseResult
	if !IsCommand(input) {
		return result
	}
	result.IsCommand = true

	name, rest, _ := strings.Cut(input, " ")
	result.CommandName = strings.ToLower(name)
	result.RawArgs = strings.TrimSpace(rest)
	result.Args = splitCommandLine(result.RawArgs)
	result.Command = r.Get(result.CommandName)
	return result
}

// IsCommand reports whether input is a slash command.
func IsCommand(input string) bool {
	input = strings.TrimSpace(input)
	return strings.HasPrefix(input, "/") && !strings.HasPrefix(input, "//")
}

// Unescape strips the escaping slash from "//text".
func Unescape(input string) string {
	if strings.HasPrefix(input, "//") {
		return input[1:]
	}
	return input
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens. Double quotes group
// words; a backslash escapes a quote inside them.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		quoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case r == '\\' && inQuote && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
			current.WriteRune(runes[i+1])
			i++
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// ValidateArgs checks required arguments and enum values.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      argDef.Name,
				Message:  "required argument missing",
				Expected: argDef.Description,
			}
		}
		if i < len(args) && argDef.Type == ArgTypeEnum && len(argDef.Values) > 0 {
			valid := false
			for _, v := range argDef.Values {
				if strings.EqualFold(args[i], v) {
					valid = true
					break
				}
			}
			if !valid {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		}
	}
	return nil
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
