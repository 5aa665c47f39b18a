// Package instruction manages the instruction text sent to the model: the
// built-in default, or the user's custom replacement edited in $EDITOR.
package instruction

import (
	"fmt"
	"os"
	"strings"

	"github.com/ashwch/smartff/internal/knowledge"
)

type Store interface {
	CustomInstruction() (string, bool)
	SetCustomInstruction(text string) error
	ClearCustomInstruction() error
}

type Opener interface {
	Open(path string) error
}

type Manager struct {
	Store  Store
	Editor Opener
	// TempDir overrides os.TempDir for the editing buffer.
	TempDir string
}

// Current returns the active instruction and whether it is a custom one.
func (m *Manager) Current() (string, bool) {
	if text, ok := m.Store.CustomInstruction(); ok {
		return text, true
	}
	return knowledge.DefaultInstruction(), false
}

type EditResult int

const (
	EditUnchanged EditResult = iota
	EditSaved
	EditEmpty
)

// Edit writes the active instruction to a private temp file, opens it in the
// editor and saves the result as the custom instruction when it changed and
// is not blank. The temp file is removed on every path.
func (m *Manager) Edit() (EditResult, error) {
	current, _ := m.Current()

	file, err := os.CreateTemp(m.TempDir, "smartff-instruction-*.md")
	if err != nil {
		return EditUnchanged, fmt.Errorf("could not create temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if err := file.Chmod(0o600); err != nil {
		_ = file.Close()
		return EditUnchanged, fmt.Errorf("could not secure temp file: %w", err)
	}
	if _, err := file.WriteString(current + "\n"); err != nil {
		_ = file.Close()
		return EditUnchanged, fmt.Errorf("could not write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return EditUnchanged, fmt.Errorf("could not close temp file: %w", err)
	}

	if err := m.Editor.Open(path); err != nil {
		return EditUnchanged, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return EditUnchanged, fmt.Errorf("could not read edited instruction: %w", err)
	}
	edited := strings.TrimSpace(string(bytes))
	switch {
	case edited == "":
		return EditEmpty, nil
	case edited == strings.TrimSpace(current):
		return EditUnchanged, nil
	}
	if err := m.Store.SetCustomInstruction(edited); err != nil {
		return EditUnchanged, err
	}
	return EditSaved, nil
}

type ResetResult int

const (
	ResetAlreadyDefault ResetResult = iota
	ResetCleared
	ResetKept
)

// Reset clears the custom instruction after confirm approves. Nothing is
// asked or written when no custom instruction is set.
func (m *Manager) Reset(confirm func() (bool, error)) (ResetResult, error) {
	if _, ok := m.Store.CustomInstruction(); !ok {
		return ResetAlreadyDefault, nil
	}
	yes, err := confirm()
	if err != nil {
		return ResetKept, err
	}
	if !yes {
		return ResetKept, nil
	}
	if err := m.Store.ClearCustomInstruction(); err != nil {
		return ResetKept, err
	}
	return ResetCleared, nil
}
