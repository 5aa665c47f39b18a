package ui

import (
	"context"
	"strings"
	"testing"

	"github.com/ashwch/smartff/internal/provider"
	"github.com/ashwch/smartff/internal/workflow"
)

func TestPrompterPlainFlow(t *testing.T) {
	c, _, out := plainConsole("3", "make it 720p")
	p := Prompter{Console: c, Width: 80}

	p.Present(provider.Result{Command: "ffmpeg -i a.mp4 b.mp4", Explanation: "Re-encodes."})
	if !strings.Contains(out.String(), "ffmpeg -i a.mp4 b.mp4") {
		t.Fatalf("expected proposal to be printed, got %q", out.String())
	}

	choice, err := p.Choose(context.Background(), provider.Result{Command: "ffmpeg -i a.mp4 b.mp4"})
	if err != nil || choice != workflow.ChoiceMakeChanges {
		t.Fatalf("expected make changes, got %q err=%v", choice, err)
	}
	text, err := p.Refinement(context.Background())
	if err != nil || text != "make it 720p" {
		t.Fatalf("expected refinement text, got %q err=%v", text, err)
	}
}

func TestPrompterCancelledContextRejects(t *testing.T) {
	c, _, _ := plainConsole("1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	choice, err := Prompter{Console: c}.Choose(ctx, provider.Result{})
	if err == nil || choice != workflow.ChoiceReject {
		t.Fatalf("expected reject with context error, got %q err=%v", choice, err)
	}
}
