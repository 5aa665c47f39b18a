package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ashwch/smartff/internal/history"
	"github.com/ashwch/smartff/internal/instruction"
	"github.com/ashwch/smartff/internal/provider"
	ffrt "github.com/ashwch/smartff/internal/runtime"
	"github.com/ashwch/smartff/internal/ui"
	"github.com/ashwch/smartff/internal/workflow"
)

type requestRunner interface {
	Run(ctx context.Context, request string) (workflow.Outcome, error)
}

type modeStore interface {
	AlwaysAllow() bool
	SetAlwaysAllow(bool) error
}

type instructionManager interface {
	Current() (string, bool)
	Edit() (instruction.EditResult, error)
	Reset(confirm func() (bool, error)) (instruction.ResetResult, error)
}

type journal interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Search(ctx context.Context, term string, limit int) ([]history.Entry, error)
}

type promptConsole interface {
	SelectPromptAction(custom bool) (ui.PromptAction, error)
	Confirm(question string) (bool, error)
}

type app struct {
	flow         requestRunner
	prefs        modeStore
	instructions instructionManager
	// history is nil when recording is disabled.
	history      journal
	console      promptConsole
	input        lineInput
	model        string
	historyLimit int
	width        int
	out          io.Writer
	errOut       io.Writer
	logger       *slog.Logger
}

// runOnce handles a request given on the command line. Any failure to get a
// usable proposal ends the process with status 1.
func (a *app) runOnce(ctx context.Context, request string) error {
	if err := a.handleRequest(ctx, request); err != nil {
		return exitError{code: 1}
	}
	return nil
}

// handleRequest runs one request through the workflow. Ctrl-C while it runs
// abandons the request instead of the process.
func (a *app) handleRequest(ctx context.Context, request string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	outcome, err := a.flow.Run(ctx, request)
	a.record(context.WithoutCancel(ctx), request, outcome, err)
	if err != nil {
		a.reportError(err)
		return err
	}
	if outcome.State == workflow.StateCancelled {
		fmt.Fprintln(a.out, "Cancelled. Command not executed.")
	}
	return nil
}

// isGeneratorError reports a failed or unusable model response. These end
// the process in both modes; cancellations and execution failures do not.
func isGeneratorError(err error) bool {
	var malformed *provider.MalformedError
	var apiErr *provider.APIError
	return errors.As(err, &malformed) || errors.As(err, &apiErr)
}

func (a *app) reportError(err error) {
	var malformed *provider.MalformedError
	var apiErr *provider.APIError
	switch {
	case errors.As(err, &malformed):
		fmt.Fprintf(a.errOut, "%s failed to parse the model response as JSON.\n", ui.Failure("Error:"))
		fmt.Fprintf(a.errOut, "Raw response: %s\n", malformed.Raw)
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.errOut, "%s %v\n", ui.Failure("Error generating command:"), apiErr)
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(a.errOut, "Request cancelled.")
	default:
		fmt.Fprintf(a.errOut, "%s %v\n", ui.Failure("Error:"), err)
	}
}

func (a *app) record(ctx context.Context, request string, outcome workflow.Outcome, runErr error) {
	if a.history == nil {
		return
	}
	entry := history.Entry{
		Request:     request,
		Command:     outcome.Result.Command,
		Explanation: outcome.Result.Explanation,
		Model:       a.model,
		Refinements: outcome.Refinements,
		Outcome:     outcomeFor(outcome, runErr),
		ExitCode:    exitCodeFor(outcome),
	}
	if _, err := a.history.Record(ctx, entry); err != nil {
		a.logger.Warn("could not record history", "error", err)
	}
}

func outcomeFor(outcome workflow.Outcome, runErr error) history.Outcome {
	switch {
	case runErr != nil:
		return history.OutcomeError
	case outcome.State == workflow.StateCancelled:
		return history.OutcomeCancelled
	case outcome.Executed && outcome.ExecErr == nil:
		return history.OutcomeSucceeded
	default:
		return history.OutcomeFailed
	}
}

func exitCodeFor(outcome workflow.Outcome) int {
	if !outcome.Executed {
		return -1
	}
	if outcome.ExecErr == nil {
		return 0
	}
	var exitErr *ffrt.ExitError
	if errors.As(outcome.ExecErr, &exitErr) {
		return exitErr.Code
	}
	return -1
}
