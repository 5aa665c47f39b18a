package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ashwch/smartff/internal/conversation"
	"github.com/ashwch/smartff/internal/provider"
	ffrt "github.com/ashwch/smartff/internal/runtime"
	"github.com/ashwch/smartff/internal/ui"
)

func newTestExecutor(out *strings.Builder, lines []string, report ffrt.Report, err error) (*commandExecutor, *[]string) {
	var ran []string
	exec := &commandExecutor{
		Binary: "ffmpeg",
		Busy:   ui.NewBusy(out, false),
		Out:    out,
		run: func(command string, onLine func(string)) (ffrt.Report, error) {
			ran = append(ran, command)
			for _, line := range lines {
				onLine(line)
			}
			return report, err
		},
	}
	return exec, &ran
}

func TestCommandExecutorSuccess(t *testing.T) {
	out := &strings.Builder{}
	exec, ran := newTestExecutor(out, []string{"frame=  10", "frame=  20"}, ffrt.Report{ExitCode: 0, Success: true}, nil)

	if err := exec.Execute("ffmpeg -i a.mov b.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*ran) != 1 || (*ran)[0] != "ffmpeg -i a.mov b.mp4" {
		t.Fatalf("expected command to run once, got %v", *ran)
	}
	text := out.String()
	for _, want := range []string{"Running command...", "frame=  20", "Success!"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output, got %q", want, text)
		}
	}
	if strings.Contains(text, "Warning") {
		t.Fatalf("did not expect a binary warning, got %q", text)
	}
}

func TestCommandExecutorNonZeroExit(t *testing.T) {
	out := &strings.Builder{}
	exec, _ := newTestExecutor(out, nil, ffrt.Report{ExitCode: 1}, &ffrt.ExitError{Code: 1})

	err := exec.Execute("ffmpeg -i missing.mov out.mp4")
	var exitErr *ffrt.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit error with code 1, got %v", err)
	}
	if !strings.Contains(out.String(), "Command exited with code 1.") {
		t.Fatalf("expected failure message, got %q", out.String())
	}
}

func TestCommandExecutorBinaryNotFound(t *testing.T) {
	out := &strings.Builder{}
	notFound := fmt.Errorf("%w: %s", ffrt.ErrBinaryNotFound, "ffmpeg")
	exec, _ := newTestExecutor(out, nil, ffrt.Report{Args: []string{"ffmpeg"}, ExitCode: -1}, notFound)

	if err := exec.Execute("ffmpeg -version"); !errors.Is(err, ffrt.ErrBinaryNotFound) {
		t.Fatalf("expected ErrBinaryNotFound, got %v", err)
	}
	if !strings.Contains(out.String(), "'ffmpeg' command not found") {
		t.Fatalf("expected not-found message, got %q", out.String())
	}
}

func TestCommandExecutorWarnsOnOtherBinaryButRuns(t *testing.T) {
	out := &strings.Builder{}
	exec, ran := newTestExecutor(out, nil, ffrt.Report{Success: true}, nil)

	if err := exec.Execute("ffprobe -i a.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*ran) != 1 {
		t.Fatalf("expected the command to run despite the warning")
	}
	if !strings.Contains(out.String(), `does not start with "ffmpeg"`) {
		t.Fatalf("expected binary warning, got %q", out.String())
	}
}

type stubGenerator struct {
	result provider.Result
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ *conversation.Conversation) (provider.Result, error) {
	g.calls++
	return g.result, g.err
}

func TestBusyGeneratorPassesThrough(t *testing.T) {
	stub := &stubGenerator{result: provider.Result{Command: "ffmpeg -version"}}
	gen := busyGenerator{Generator: stub, busy: ui.NewBusy(nil, false)}

	got, err := gen.Generate(context.Background(), conversation.New("instruction"))
	if err != nil || got.Command != "ffmpeg -version" || stub.calls != 1 {
		t.Fatalf("unexpected result %+v err=%v calls=%d", got, err, stub.calls)
	}

	stub.err = errors.New("boom")
	if _, err := gen.Generate(context.Background(), conversation.New("instruction")); err == nil {
		t.Fatalf("expected generator error to pass through")
	}
}
