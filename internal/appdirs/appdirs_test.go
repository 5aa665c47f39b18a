package appdirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestEnsureConfigDirUsesPrivatePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat config dir failed: %v", err)
	}
	if perms := info.Mode().Perm(); perms&0o077 != 0 {
		t.Fatalf("expected private config dir permissions, got %o", perms)
	}
}

func TestEnsureStateDirUsesPrivatePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	dir, err := EnsureStateDir()
	if err != nil {
		t.Fatalf("EnsureStateDir failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat state dir failed: %v", err)
	}
	if perms := info.Mode().Perm(); perms&0o077 != 0 {
		t.Fatalf("expected private state dir permissions, got %o", perms)
	}
}

func TestConfigFilesLiveUnderXDGConfigHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on linux")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	prefs, err := PreferencesFilePath()
	if err != nil {
		t.Fatalf("PreferencesFilePath failed: %v", err)
	}
	if want := filepath.Join(xdg, AppName, "preferences.json"); prefs != want {
		t.Fatalf("expected %q, got %q", want, prefs)
	}

	settings, err := SettingsFilePath()
	if err != nil {
		t.Fatalf("SettingsFilePath failed: %v", err)
	}
	if filepath.Dir(settings) != filepath.Dir(prefs) {
		t.Fatalf("expected settings and preferences in the same dir, got %q and %q", settings, prefs)
	}
}
