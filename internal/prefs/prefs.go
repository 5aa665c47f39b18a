// Package prefs persists the user's interactive preferences: whether
// generated commands run without confirmation, and the custom instruction
// text that replaces the built-in one.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashwch/smartff/internal/appdirs"
	"github.com/ashwch/smartff/internal/config"
)

type Preferences struct {
	AlwaysAllow       bool
	CustomInstruction *string
}

type document struct {
	AlwaysAllow        bool    `json:"always_allow"`
	CustomSystemPrompt *string `json:"custom_system_prompt"`
	// accepted on read only
	CustomInstruction *string `json:"custom_instruction,omitempty"`
}

func Default() Preferences {
	return Preferences{}
}

// Load reads the document at path. A missing or unreadable document yields
// the defaults.
func Load(path string) Preferences {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	return decode(bytes)
}

func decode(bytes []byte) Preferences {
	var doc document
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return Default()
	}
	p := Preferences{AlwaysAllow: doc.AlwaysAllow}
	switch {
	case doc.CustomSystemPrompt != nil:
		p.CustomInstruction = cloneString(doc.CustomSystemPrompt)
	case doc.CustomInstruction != nil:
		p.CustomInstruction = cloneString(doc.CustomInstruction)
	}
	return p
}

func encode(p Preferences) ([]byte, error) {
	doc := document{
		AlwaysAllow:        p.AlwaysAllow,
		CustomSystemPrompt: cloneString(p.CustomInstruction),
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}

// Store is the single writer of the preferences document. Every setter
// persists the whole document before returning.
type Store struct {
	path  string
	prefs Preferences
}

// Open loads the document at path and creates it with the defaults when it
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, prefs: Load(path)}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.save(s.prefs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// OpenDefault opens the document at the per-user config path.
func OpenDefault() (*Store, error) {
	path, err := appdirs.PreferencesFilePath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get() Preferences {
	return Preferences{
		AlwaysAllow:       s.prefs.AlwaysAllow,
		CustomInstruction: cloneString(s.prefs.CustomInstruction),
	}
}

func (s *Store) AlwaysAllow() bool {
	return s.prefs.AlwaysAllow
}

func (s *Store) CustomInstruction() (string, bool) {
	if s.prefs.CustomInstruction == nil {
		return "", false
	}
	return *s.prefs.CustomInstruction, true
}

func (s *Store) SetAlwaysAllow(v bool) error {
	next := s.Get()
	next.AlwaysAllow = v
	return s.commit(next)
}

func (s *Store) SetCustomInstruction(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("custom instruction must not be empty")
	}
	next := s.Get()
	next.CustomInstruction = &text
	return s.commit(next)
}

func (s *Store) ClearCustomInstruction() error {
	next := s.Get()
	next.CustomInstruction = nil
	return s.commit(next)
}

func (s *Store) commit(next Preferences) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

func (s *Store) save(p Preferences) error {
	payload, err := encode(p)
	if err != nil {
		return fmt.Errorf("could not serialize preferences: %w", err)
	}
	if err := config.WriteFileAtomic(s.path, payload); err != nil {
		return fmt.Errorf("could not save preferences to %s: %w", filepath.Base(s.path), err)
	}
	return nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
