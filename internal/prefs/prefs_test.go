package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "nope", "preferences.json"))
	assert.False(t, p.AlwaysAllow)
	assert.Nil(t, p.CustomInstruction)
}

func TestLoadCorruptFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{always_allow: tru"), 0o600))

	p := Load(path)
	assert.Equal(t, Default(), p)
}

func TestLoadAcceptsLegacyKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"always_allow":true,"custom_instruction":"be brief"}`), 0o600))

	p := Load(path)
	assert.True(t, p.AlwaysAllow)
	require.NotNil(t, p.CustomInstruction)
	assert.Equal(t, "be brief", *p.CustomInstruction)
}

func TestOpenCreatesDefaultDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "preferences.json")

	s, err := Open(path)
	require.NoError(t, err)
	assert.False(t, s.AlwaysAllow())

	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(bytes, &raw))
	assert.Equal(t, false, raw["always_allow"])
	assert.Contains(t, raw, "custom_system_prompt")
	assert.Nil(t, raw["custom_system_prompt"])
}

func TestSettersPersistImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetAlwaysAllow(true))
	assert.True(t, Load(path).AlwaysAllow)

	require.NoError(t, s.SetCustomInstruction("only output mp4 commands"))
	reloaded := Load(path)
	require.NotNil(t, reloaded.CustomInstruction)
	assert.Equal(t, "only output mp4 commands", *reloaded.CustomInstruction)
	assert.True(t, reloaded.AlwaysAllow)

	require.NoError(t, s.ClearCustomInstruction())
	assert.Nil(t, Load(path).CustomInstruction)
	_, ok := s.CustomInstruction()
	assert.False(t, ok)
}

func TestSetCustomInstructionRejectsBlank(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	assert.Error(t, s.SetCustomInstruction("  \n"))
}

func TestWriteFailureIsReportedAndRolledBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	path := filepath.Join(dir, "preferences.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0o600))

	err = s.SetAlwaysAllow(true)
	require.Error(t, err)
	assert.False(t, s.AlwaysAllow())
}

func TestGetReturnsCopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	require.NoError(t, s.SetCustomInstruction("original"))

	p := s.Get()
	*p.CustomInstruction = "mutated"

	got, ok := s.CustomInstruction()
	require.True(t, ok)
	assert.Equal(t, "original", got)
}

func TestStorePathIsTheOpenedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
}
