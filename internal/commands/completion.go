// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is one candidate.
type Completion struct {
	Value       string
	Display     string
	Description string
	Score       int
}

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// ServersFn returns known servers.
	ServersFn func() []string
	// ChannelsFn returns the conversations of the active server.
	ChannelsFn func() []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the word being typed at the end of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(input, "/") {
		// Plain text completes nicks and channels in the last word
		words := strings.Fields(input)
		if len(words) == 0 || strings.HasSuffix(input, " ") {
			return nil
		}
		return completeFromList(c.channels(), words[len(words)-1])
	}

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return c.completeCommands("/")
	}

	// Still typing the command name
	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if strings.HasSuffix(input, " ") {
		argIndex++
		partial = ""
	}
	return c.completeArg(cmd, argIndex, partial)
}

// Line returns full-line candidates for input, the form line editors want.
func (c *Completer) Line(input string) []string {
	completions := c.Complete(input)
	if len(completions) == 0 {
		return nil
	}

	prefix := input
	if i := strings.LastIndex(input, " "); i >= 0 {
		prefix = input[:i+1]
	} else {
		prefix = ""
	}

	lines := make([]string, len(completions))
	for i, comp := range completions {
		lines[i] = prefix + comp.Value
	}
	return lines
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if partial != "/" && strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeServer:
		if c.ServersFn == nil {
			return nil
		}
		return completeFromList(c.ServersFn(), partial)
	case ArgTypeChannel:
		return completeFromList(c.channels(), partial)
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	default:
		return nil
	}
}

func (c *Completer) channels() []string {
	if c.ChannelsFn == nil {
		return nil
	}
	return c.ChannelsFn()
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			completions = append(completions, Completion{
				Value:   v,
				Display: v,
				Score:   calculateScore(v, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// calculateScore ranks exact matches first, then shorter prefix matches.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50 + 20 - len(value)
	}
	return score - len(value)/2
}

// sortCompletions sorts by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState cycles through candidates on repeated Tab presses.
type CompletionState struct {
	// OriginalInput is the input before completion started
	OriginalInput string
	Candidates    []string
	Selected      int
}

// Start begins a cycle over candidates for input.
func (cs *CompletionState) Start(input string, candidates []string) {
	cs.OriginalInput = input
	cs.Candidates = candidates
	cs.Selected = -1
}

// Active reports whether a cycle is in progress.
func (cs *CompletionState) Active() bool {
	return len(cs.Candidates) > 0
}

// Next returns the next candidate, wrapping around.
func (cs *CompletionState) Next() string {
	if len(cs.Candidates) == 0 {
		return cs.OriginalInput
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Candidates)
	return cs.Candidates[cs.Selected]
}

// Clear ends the cycle.
func (cs *CompletionState) Clear() {
	*cs = CompletionState{}
}
