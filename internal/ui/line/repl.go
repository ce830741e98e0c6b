// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package line

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jeranaias/ircdesk/internal/app"
	"github.com/jeranaias/ircdesk/internal/commands"
	"github.com/jeranaias/ircdesk/internal/logging"
	"github.com/jeranaias/ircdesk/internal/ui/styles"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

const intro = "ircdesk line mode. Type /help for commands, /quit or Ctrl+D to exit."

// =============================================================================
// REPL
// =============================================================================

// Options configure a REPL.
type Options struct {
	Loop    *app.Loop
	Printer *Printer
	// Registry defaults to commands.NewRegistry().
	Registry *commands.Registry
	// HistoryFile keeps prompt history between runs; empty disables it.
	HistoryFile string
	Out         io.Writer
}

// REPL reads commands and messages from a liner prompt.
type REPL struct {
	loop        *app.Loop
	printer     *Printer
	registry    *commands.Registry
	completer   *commands.Completer
	historyFile string
	out         io.Writer
	logger      zerolog.Logger
}

// New creates a REPL. Loop and Printer are required.
func New(o Options) *REPL {
	registry := o.Registry
	if registry == nil {
		registry = commands.NewRegistry()
	}
	out := o.Out
	if out == nil {
		out = os.Stdout
	}

	chats := o.Printer.chats
	completer := commands.NewCompleter(registry)
	completer.ServersFn = chats.Servers
	completer.ChannelsFn = func() []string {
		server, _, ok := chats.Active()
		if !ok {
			return nil
		}
		var names []string
		for _, conv := range chats.Conversations(server) {
			if conv.Name != server {
				names = append(names, conv.Name)
			}
		}
		return names
	}

	return &REPL{
		loop:        o.Loop,
		printer:     o.Printer,
		registry:    registry,
		completer:   completer,
		historyFile: o.HistoryFile,
		out:         out,
		logger:      logging.Component("line"),
	}
}

// Run prompts until /quit, Ctrl+C, Ctrl+D, ctx cancellation, or the loop
// stopping.
func (r *REPL) Run(ctx context.Context) error {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)
	state.SetCompleter(r.Complete)

	r.loadHistory(state)
	defer r.saveHistory(state)

	fmt.Fprintln(r.out, intro)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.loop.Done():
			return app.ErrLoopStopped
		default:
		}

		input, err := state.Prompt(r.Prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		state.AppendHistory(input)

		quit, err := r.Execute(input)
		if err != nil {
			fmt.Fprintf(r.out, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one line of input on the loop and prints its outcome. It
// reports whether the user asked to quit.
func (r *REPL) Execute(input string) (bool, error) {
	var res commands.Result
	err := r.loop.Call(func(ctrl *app.Controller) error {
		server, channel, _ := ctrl.Chats().Active()
		var err error
		res, err = commands.Submit(r.registry, &commands.Context{Ctrl: ctrl, Server: server, Channel: channel}, input)
		if err != nil || res.Activate == nil {
			return err
		}
		if err := ctrl.Activate(res.Activate.Server, res.Activate.Channel); err != nil {
			return err
		}
		// Print the backlog of the newly active conversation now
		return r.printer.Render(app.KeyFor(res.Activate.Server, res.Activate.Channel))
	})
	if err != nil {
		return false, err
	}

	if res.Notice != "" {
		fmt.Fprintln(r.out, noticeStyle.Render("* "+res.Notice))
	}
	if res.Help {
		fmt.Fprint(r.out, commands.HelpText(r.registry))
	}
	return res.Quit, nil
}

// Complete returns full-line completions for liner.
func (r *REPL) Complete(input string) []string {
	var lines []string
	if err := r.loop.Call(func(*app.Controller) error {
		lines = r.completer.Line(input)
		return nil
	}); err != nil {
		r.logger.Debug().Err(err).Msg("completion skipped")
	}
	return lines
}

// Prompt names the active conversation.
func (r *REPL) Prompt() string {
	prompt := "ircdesk> "
	_ = r.loop.Call(func(ctrl *app.Controller) error {
		server, channel, ok := ctrl.Chats().Active()
		switch {
		case !ok:
		case channel == server:
			prompt = "[" + server + "] "
		default:
			prompt = "[" + channel + "] "
		}
		return nil
	})
	return promptStyle.Render(prompt)
}

// =============================================================================
// HISTORY
// =============================================================================

func (r *REPL) loadHistory(state *liner.State) {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := state.ReadHistory(f); err != nil {
		r.logger.Warn().Err(err).Str("path", r.historyFile).Msg("reading history failed")
	}
}

func (r *REPL) saveHistory(state *liner.State) {
	if r.historyFile == "" {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.historyFile).Msg("saving history failed")
		return
	}
	defer f.Close()
	if _, err := state.WriteHistory(f); err != nil {
		r.logger.Warn().Err(err).Str("path", r.historyFile).Msg("saving history failed")
	}
}
