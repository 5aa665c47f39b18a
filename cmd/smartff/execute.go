package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ashwch/smartff/internal/conversation"
	"github.com/ashwch/smartff/internal/provider"
	ffrt "github.com/ashwch/smartff/internal/runtime"
	"github.com/ashwch/smartff/internal/safety"
	"github.com/ashwch/smartff/internal/ui"
)

// commandExecutor runs approved commands and reports how they ended.
// Failures are shown here and returned for the record; they never stop the
// session.
type commandExecutor struct {
	Binary string
	Busy   *ui.Busy
	Out    io.Writer
	Logger *slog.Logger

	run func(command string, onLine func(string)) (ffrt.Report, error)
}

func (e *commandExecutor) Execute(command string) error {
	if args, err := ffrt.Split(command); err == nil && !safety.UsesBinary(args, e.Binary) {
		fmt.Fprintln(e.Out, ui.Warning(fmt.Sprintf("Warning: command does not start with %q; running it anyway.", e.Binary)))
	}

	fmt.Fprintln(e.Out, "Running command...")
	e.Busy.Start("Processing...")
	report, err := e.runner()(command, e.Busy.Println)
	e.Busy.Stop()

	if e.Logger != nil {
		e.Logger.Debug("command finished",
			"command", safety.RedactText(command),
			"exit_code", report.ExitCode,
			"lines", report.Lines,
		)
	}

	fmt.Fprintln(e.Out)
	var exitErr *ffrt.ExitError
	switch {
	case err == nil:
		fmt.Fprintf(e.Out, "%s Command executed successfully.\n", ui.Success("Success!"))
	case errors.Is(err, ffrt.ErrBinaryNotFound):
		fmt.Fprintf(e.Out, "%s '%s' command not found. Is it installed and on your PATH?\n", ui.Failure("Error:"), binaryName(report, e.Binary))
	case errors.As(err, &exitErr):
		fmt.Fprintf(e.Out, "%s Command exited with code %d.\n", ui.Failure("Failed!"), exitErr.Code)
	default:
		fmt.Fprintf(e.Out, "%s %v\n", ui.Failure("Execution error:"), err)
	}
	return err
}

func (e *commandExecutor) runner() func(string, func(string)) (ffrt.Report, error) {
	if e.run != nil {
		return e.run
	}
	return func(command string, onLine func(string)) (ffrt.Report, error) {
		return ffrt.Runner{OnLine: onLine}.Run(command)
	}
}

func binaryName(report ffrt.Report, fallback string) string {
	if len(report.Args) > 0 {
		return report.Args[0]
	}
	return fallback
}

// busyGenerator shows the busy indicator while the model is thinking.
type busyGenerator struct {
	provider.Generator
	busy *ui.Busy
}

func (g busyGenerator) Generate(ctx context.Context, conv *conversation.Conversation) (provider.Result, error) {
	var (
		result provider.Result
		err    error
	)
	g.busy.Run("Generating command...", func() {
		result, err = g.Generator.Generate(ctx, conv)
	})
	return result, err
}
