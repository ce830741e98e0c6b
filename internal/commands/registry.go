// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"

	"github.com/jeranaias/ircdesk/internal/app"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command. args are the split arguments; rawArgs is the
// unparsed remainder, used by commands that take free text.
type Handler func(ctx *Context, args []string, rawArgs string) (Result, error)

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/join")
	Name string

	// Aliases are alternative names (e.g., "/j")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/join <#channel>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	Handler Handler

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string
	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeServer                 // Saved or connected server
	ArgTypeChannel                // Conversation on the active server
	ArgTypeEnum                   // One of predefined values
)

// =============================================================================
// CONTEXT AND RESULT
// =============================================================================

// Context is what a handler operates on.
type Context struct {
	Ctrl *app.Controller
	// Server and Channel name the active conversation, empty when none.
	Server  string
	Channel string
}

// Target names a conversation.
type Target struct {
	Server  string
	Channel string
}

// Result tells the UI what to do after a command ran.
type Result struct {
	// Notice is one line of feedback for the status bar or prompt.
	Notice string
	// Activate switches the view to a conversation.
	Activate *Target
	// Help asks the UI to show the command reference.
	Help bool
	Quit bool
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "Other"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// categoryOrder is the order categories appear in help.
var categoryOrder = []string{"Connection", "Conversation", "Settings", "Navigation"}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/connect",
		Aliases:     []string{"/server"},
		Description: "Connect to an IRC server",
		Usage:       "/connect <host[:port]> [nick] [-tls]",
		Args: []ArgDef{
			{Name: "host", Required: true, Type: ArgTypeServer, Description: "server host, optionally with :port"},
			{Name: "nick", Type: ArgTypeString, Description: "nickname for this server"},
		},
		Category: "Connection",
		Handler:  handleConnect,
	})

	r.Register(&Command{
		Name:        "/disconnect",
		Description: "Disconnect and forget a server",
		Usage:       "/disconnect [host]",
		Args: []ArgDef{
			{Name: "host", Type: ArgTypeServer, Description: "defaults to the active server"},
		},
		Category: "Connection",
		Handler:  handleDisconnect,
	})

	r.Register(&Command{
		Name:        "/join",
		Aliases:     []string{"/j"},
		Description: "Join a channel or open a private chat",
		Usage:       "/join <#channel|nick>",
		Args: []ArgDef{
			{Name: "channel", Required: true, Type: ArgTypeChannel, Description: "channel or nick"},
		},
		Category: "Conversation",
		Handler:  handleJoin,
	})

	r.Register(&Command{
		Name:        "/part",
		Aliases:     []string{"/leave", "/close"},
		Description: "Leave a channel or close a private chat",
		Usage:       "/part [#channel]",
		Args: []ArgDef{
			{Name: "channel", Type: ArgTypeChannel, Description: "defaults to the active conversation"},
		},
		Category: "Conversation",
		Handler:  handlePart,
	})

	r.Register(&Command{
		Name:        "/msg",
		Aliases:     []string{"/query"},
		Description: "Send a message to a nick or channel",
		Usage:       "/msg <target> <text>",
		Args: []ArgDef{
			{Name: "target", Required: true, Type: ArgTypeChannel, Description: "nick or channel"},
			{Name: "text", Required: true, Type: ArgTypeString, Description: "message text"},
		},
		Category: "Conversation",
		Handler:  handleMsg,
	})

	r.Register(&Command{
		Name:        "/nick",
		Description: "Change your nickname on every server",
		Usage:       "/nick <nickname>",
		Args: []ArgDef{
			{Name: "nickname", Required: true, Type: ArgTypeString, Description: "new nickname"},
		},
		Category: "Settings",
		Handler:  handleNick,
	})

	r.Register(&Command{
		Name:        "/autojoin",
		Description: "Join the active channel on connect",
		Usage:       "/autojoin [on|off]",
		Args: []ArgDef{
			{Name: "state", Type: ArgTypeEnum, Values: []string{"on", "off"}, Description: "on or off"},
		},
		Category: "Settings",
		Handler:  handleAutoJoin,
	})

	r.Register(&Command{
		Name:        "/switch",
		Aliases:     []string{"/window", "/w"},
		Description: "Show another conversation",
		Usage:       "/switch <#channel|nick|server>",
		Args: []ArgDef{
			{Name: "target", Required: true, Type: ArgTypeChannel, Description: "conversation to show"},
		},
		Category: "Navigation",
		Handler:  handleSwitch,
	})

	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Category:    "Navigation",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit ircdesk",
		Category:    "Navigation",
		Handler:     handleQuit,
	})
}
