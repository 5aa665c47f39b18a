package ui

import (
	"context"
	"fmt"

	"github.com/ashwch/smartff/internal/provider"
	"github.com/ashwch/smartff/internal/workflow"
)

// Prompter adapts a Console to the confirmation workflow.
type Prompter struct {
	Console Console
	Width   int
}

func (p Prompter) Present(result provider.Result) {
	fmt.Fprintln(p.Console.out(), RenderProposal(result, p.Width))
}

func (p Prompter) Choose(ctx context.Context, result provider.Result) (workflow.Choice, error) {
	if err := ctx.Err(); err != nil {
		return workflow.ChoiceReject, err
	}
	return p.Console.ChooseAction(result.Command)
}

func (p Prompter) Refinement(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Console.AskRefinement()
}

var (
	_ workflow.Prompter  = Prompter{}
	_ workflow.Presenter = Prompter{}
)
