package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

// ErrInterrupted is returned by a LineReader when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// LineReader feeds the plain backend.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Console bundles what every prompt needs: the preferred backend, the line
// reader used by the plain fallback and where plain output goes.
type Console struct {
	Backend string
	In      LineReader
	Out     io.Writer
}

func NormalizeBackend(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendAuto, "":
		return BackendAuto
	case BackendBubbleTea:
		return BackendBubbleTea
	case BackendHuh:
		return BackendHuh
	case BackendTView:
		return BackendTView
	case BackendPlain:
		return BackendPlain
	default:
		return BackendAuto
	}
}

// backendCandidates lists backends to try in order. Plain always comes last
// so a prompt still works when no terminal UI can start.
func backendCandidates(backend string) []string {
	switch NormalizeBackend(backend) {
	case BackendBubbleTea:
		return []string{BackendBubbleTea, BackendHuh, BackendTView, BackendPlain}
	case BackendHuh:
		return []string{BackendHuh, BackendBubbleTea, BackendTView, BackendPlain}
	case BackendTView:
		return []string{BackendTView, BackendBubbleTea, BackendHuh, BackendPlain}
	case BackendPlain:
		return []string{BackendPlain}
	default:
		return []string{BackendBubbleTea, BackendHuh, BackendTView, BackendPlain}
	}
}

// runBackends calls the attempt registered for each candidate until one
// succeeds. The first failure is returned when all of them fail.
func runBackends(backend string, attempts map[string]func() error) error {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		attempt, ok := attempts[candidate]
		if !ok {
			continue
		}
		err := attempt()
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%s prompt failed: %w", candidate, err)
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("no prompt backend available")
	}
	return firstErr
}

func (c Console) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

// readPlain reads one line, reporting aborted=true on EOF or Ctrl-C.
func (c Console) readPlain(prompt string) (line string, aborted bool, err error) {
	if c.In == nil {
		return "", false, fmt.Errorf("no line input available")
	}
	line, err = c.In.ReadLine(prompt)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
			return "", true, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(line), false, nil
}
