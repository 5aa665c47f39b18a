// Package workflow drives one request from the first proposal to either
// execution or cancellation.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ashwch/smartff/internal/conversation"
	"github.com/ashwch/smartff/internal/provider"
)

type Choice string

const (
	ChoiceAllow       Choice = "allow"
	ChoiceAlwaysAllow Choice = "always_allow"
	ChoiceMakeChanges Choice = "make_changes"
	ChoiceReject      Choice = "reject"
)

func (c Choice) Label() string {
	switch c {
	case ChoiceAllow:
		return "Allow"
	case ChoiceAlwaysAllow:
		return "Always Allow"
	case ChoiceMakeChanges:
		return "Make Changes"
	case ChoiceReject:
		return "Reject"
	default:
		return string(c)
	}
}

// Choices lists the menu entries in display order.
func Choices() []Choice {
	return []Choice{ChoiceAllow, ChoiceAlwaysAllow, ChoiceMakeChanges, ChoiceReject}
}

type Preferences interface {
	AlwaysAllow() bool
	SetAlwaysAllow(bool) error
}

type Instructions interface {
	Current() (text string, custom bool)
}

type Prompter interface {
	Choose(ctx context.Context, result provider.Result) (Choice, error)
	Refinement(ctx context.Context) (string, error)
}

type Presenter interface {
	Present(result provider.Result)
}

type Executor interface {
	Execute(command string) error
}

type Workflow struct {
	Generator    provider.Generator
	Prefs        Preferences
	Instructions Instructions
	Prompter     Prompter
	Presenter    Presenter
	Executor     Executor
	Logger       *slog.Logger
}

type Outcome struct {
	State        State
	Result       provider.Result
	Conversation *conversation.Conversation
	Generations  int
	Refinements  int
	Executed     bool
	// ExecErr is the execution failure, if any. It is never returned as the
	// Run error.
	ExecErr error
}

// Run generates a proposal for request and walks the confirmation state
// machine until it reaches Running or Cancelled. Generator failures end the
// request and are returned unchanged.
func (w *Workflow) Run(ctx context.Context, request string) (Outcome, error) {
	logger := w.logger()
	instruction, custom := w.Instructions.Current()
	conv := conversation.New(instruction)
	conv.AddUser(request)

	out := Outcome{State: StateRefining, Conversation: conv}
	logger.Debug("workflow started", "custom_instruction", custom)

	if err := w.generate(ctx, &out); err != nil {
		return out, err
	}

	for !out.State.Terminal() {
		ev, refinement, err := w.decide(ctx, out.Result)
		if err != nil {
			return out, err
		}
		next, err := Next(out.State, ev)
		if err != nil {
			return out, err
		}
		logger.Debug("workflow transition", "from", out.State, "event", ev, "to", next)
		out.State = next

		if next == StateRefining {
			conv.AddUser(refinement)
			out.Refinements++
			if err := w.generate(ctx, &out); err != nil {
				return out, err
			}
		}
	}

	if out.State == StateRunning {
		out.Executed = true
		out.ExecErr = w.Executor.Execute(out.Result.Command)
	}
	return out, nil
}

// generate asks the model for a new proposal and enters Proposed.
func (w *Workflow) generate(ctx context.Context, out *Outcome) error {
	result, err := w.Generator.Generate(ctx, out.Conversation)
	out.Generations++
	if err != nil {
		return err
	}
	next, err := Next(out.State, EventGenerated)
	if err != nil {
		return err
	}
	out.State = next
	out.Result = result
	out.Conversation.AddAssistant(result.JSON())
	if w.Presenter != nil {
		w.Presenter.Present(result)
	}
	return nil
}

func (w *Workflow) decide(ctx context.Context, result provider.Result) (Event, string, error) {
	if w.Prefs.AlwaysAllow() {
		return EventAutoApprove, "", nil
	}

	choice, err := w.Prompter.Choose(ctx, result)
	if err != nil {
		return "", "", err
	}
	switch choice {
	case ChoiceAllow:
		return EventAllow, "", nil
	case ChoiceAlwaysAllow:
		if err := w.Prefs.SetAlwaysAllow(true); err != nil {
			return "", "", fmt.Errorf("could not enable always-allow: %w", err)
		}
		return EventAlwaysAllow, "", nil
	case ChoiceMakeChanges:
		text, err := w.Prompter.Refinement(ctx)
		if err != nil {
			return "", "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return EventEmptyRefine, "", nil
		}
		return EventRefine, text, nil
	case ChoiceReject:
		return EventReject, "", nil
	default:
		return "", "", fmt.Errorf("unknown choice: %q", choice)
	}
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
