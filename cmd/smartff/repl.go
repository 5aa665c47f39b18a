package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ashwch/smartff/internal/history"
	"github.com/ashwch/smartff/internal/instruction"
	"github.com/ashwch/smartff/internal/router"
	"github.com/ashwch/smartff/internal/ui"
)

func (a *app) repl(ctx context.Context) error {
	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "What do you want to do? (/help for commands, /exit to quit)")
		line, err := a.input.ReadLine(replPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ui.ErrInterrupted) {
				fmt.Fprintln(a.out, "Goodbye!")
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		cmd := router.Parse(line)
		switch cmd.Intent {
		case router.IntentEmpty:
		case router.IntentExit:
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		case router.IntentMode:
			a.toggleMode()
		case router.IntentPrompt:
			a.promptMenu()
		case router.IntentHistory:
			a.showHistory(ctx, cmd.Text)
		case router.IntentHelp:
			a.printHelp()
		case router.IntentRequest:
			if err := a.handleRequest(ctx, cmd.Text); err != nil && isGeneratorError(err) {
				return exitError{code: 1}
			}
		}
	}
}

func (a *app) toggleMode() {
	next := !a.prefs.AlwaysAllow()
	if err := a.prefs.SetAlwaysAllow(next); err != nil {
		fmt.Fprintf(a.errOut, "smartff: could not save preference: %v\n", err)
		return
	}
	if next {
		fmt.Fprintln(a.out, "Always-allow mode ON: generated commands run without asking.")
		return
	}
	fmt.Fprintln(a.out, "Always-allow mode OFF: you will be asked before each command runs.")
}

// promptMenu loops over the instruction submenu until Back.
func (a *app) promptMenu() {
	for {
		_, custom := a.instructions.Current()
		action, err := a.console.SelectPromptAction(custom)
		if err != nil {
			fmt.Fprintf(a.errOut, "smartff: %v\n", err)
			return
		}
		switch action {
		case ui.PromptView:
			text, custom := a.instructions.Current()
			fmt.Fprintln(a.out, ui.RenderInstruction(text, custom, a.width))
		case ui.PromptEdit:
			a.editInstruction()
		case ui.PromptReset:
			a.resetInstruction()
		default:
			return
		}
	}
}

func (a *app) editInstruction() {
	result, err := a.instructions.Edit()
	if err != nil {
		fmt.Fprintf(a.errOut, "%s %v\n", ui.Failure("Could not edit instruction:"), err)
		return
	}
	switch result {
	case instruction.EditSaved:
		fmt.Fprintln(a.out, ui.Success("Custom instruction saved."))
	case instruction.EditEmpty:
		fmt.Fprintln(a.out, "Empty instruction discarded. Nothing changed.")
	default:
		fmt.Fprintln(a.out, "No changes made.")
	}
}

func (a *app) resetInstruction() {
	result, err := a.instructions.Reset(func() (bool, error) {
		return a.console.Confirm("Reset to the default instruction? Your custom instruction will be lost.")
	})
	if err != nil {
		fmt.Fprintf(a.errOut, "%s %v\n", ui.Failure("Could not reset instruction:"), err)
		return
	}
	switch result {
	case instruction.ResetAlreadyDefault:
		fmt.Fprintln(a.out, "Already using the default instruction.")
	case instruction.ResetCleared:
		fmt.Fprintln(a.out, ui.Success("Instruction reset to default."))
	default:
		fmt.Fprintln(a.out, "Custom instruction kept.")
	}
}

func (a *app) showHistory(ctx context.Context, term string) {
	if a.history == nil {
		fmt.Fprintln(a.out, "History is disabled.")
		return
	}
	limit := a.historyLimit
	if limit <= 0 {
		limit = 20
	}

	var (
		list []history.Entry
		err  error
	)
	if term = strings.TrimSpace(term); term != "" {
		list, err = a.history.Search(ctx, term, limit)
	} else {
		list, err = a.history.Recent(ctx, limit)
	}
	if err != nil {
		fmt.Fprintf(a.errOut, "smartff: could not read history: %v\n", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No history yet.")
		return
	}
	for _, e := range list {
		fmt.Fprintf(a.out, "%s  %-9s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Outcome, e.Request)
		if e.Command != "" {
			fmt.Fprintf(a.out, "    %s\n", e.Command)
		}
	}
}

func (a *app) printHelp() {
	entries := router.Help()
	widest := 0
	for _, entry := range entries {
		if len(entry[0]) > widest {
			widest = len(entry[0])
		}
	}
	fmt.Fprintln(a.out, "commands:")
	for _, entry := range entries {
		fmt.Fprintf(a.out, "  %-*s  %s\n", widest, entry[0], entry[1])
	}
	fmt.Fprintln(a.out, "Anything else is sent to the model as a request.")
}
