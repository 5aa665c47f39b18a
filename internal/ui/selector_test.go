package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBubblePickerSizeStandardTerminal(t *testing.T) {
	width, height := bubblePickerSize(90, 30, 3)
	if width != 86 {
		t.Fatalf("expected width 86, got %d", width)
	}
	if height != 9 {
		t.Fatalf("expected height 9, got %d", height)
	}
}

func TestBubblePickerSizeTinyTerminalStillFits(t *testing.T) {
	width, height := bubblePickerSize(20, 5, 25)
	if width > 20 {
		t.Fatalf("expected width to fit terminal, got %d", width)
	}
	if height > 5 {
		t.Fatalf("expected height to fit terminal, got %d", height)
	}
	if width <= 0 || height <= 0 {
		t.Fatalf("expected positive dimensions, got width=%d height=%d", width, height)
	}
}

func TestHuhSelectHeightBounds(t *testing.T) {
	if got := huhSelectHeight(0); got != 4 {
		t.Fatalf("expected minimum huh height 4, got %d", got)
	}
	if got := huhSelectHeight(3); got != 4 {
		t.Fatalf("expected huh height 4 for small lists, got %d", got)
	}
	if got := huhSelectHeight(20); got != 10 {
		t.Fatalf("expected max huh height 10, got %d", got)
	}
}

func TestPromptOptionsLabelReflectsCustomInstruction(t *testing.T) {
	if got := promptOptions(true)[0].Label; got != "View current instruction (custom)" {
		t.Fatalf("unexpected custom label %q", got)
	}
	if got := promptOptions(false)[0].Label; got != "View current instruction (default)" {
		t.Fatalf("unexpected default label %q", got)
	}
}

func TestParsePlainPromptAction(t *testing.T) {
	options := promptOptions(false)
	cases := map[string]PromptAction{
		"1":      PromptView,
		"2":      PromptEdit,
		" 3 ":    PromptReset,
		"4":      PromptBack,
		"edit":   PromptEdit,
		"RESET":  PromptReset,
		"9":      PromptBack,
		"banana": PromptBack,
		"":       PromptBack,
	}
	for input, want := range cases {
		if got := parsePlainPromptAction(input, options); got != want {
			t.Fatalf("input %q: expected %q, got %q", input, want, got)
		}
	}
}

func TestSelectPromptActionPlainListsOptions(t *testing.T) {
	c, _, out := plainConsole("2")
	got, err := c.SelectPromptAction(true)
	if err != nil {
		t.Fatalf("SelectPromptAction failed: %v", err)
	}
	if got != PromptEdit {
		t.Fatalf("expected edit, got %q", got)
	}
	if !strings.Contains(out.String(), "1) View current instruction (custom)") {
		t.Fatalf("expected numbered options, got %q", out.String())
	}
}

func TestBubbleSelectorModelEscapeGoesBack(t *testing.T) {
	m := newBubbleSelectorModel(promptOptions(false))
	out := pressKey(t, m, tea.KeyMsg{Type: tea.KeyEsc}).(bubbleSelectorModel)
	if out.action() != PromptBack {
		t.Fatalf("expected back on escape, got %q", out.action())
	}
}

func TestBubbleSelectorModelEnterSelectsHighlighted(t *testing.T) {
	var m tea.Model = newBubbleSelectorModel(promptOptions(false))
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	out := pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter}).(bubbleSelectorModel)
	if out.action() != PromptEdit {
		t.Fatalf("expected edit after moving down, got %q", out.action())
	}
}
