package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ashwch/smartff/internal/appdirs"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultModel   = "google/gemini-2.0-flash-001"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultBinary  = "ffmpeg"
)

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	Limit   int  `toml:"limit" json:"limit"`
}

type Config struct {
	Version   int           `toml:"version" json:"version"`
	Model     string        `toml:"model" json:"model"`
	BaseURL   string        `toml:"base_url" json:"base_url"`
	Binary    string        `toml:"binary" json:"binary"`
	ForceJSON bool          `toml:"force_json" json:"force_json"`
	Editor    string        `toml:"editor" json:"editor"`
	UI        UIConfig      `toml:"ui" json:"ui"`
	History   HistoryConfig `toml:"history" json:"history"`
}

func Default() Config {
	return Config{
		Version:   1,
		Model:     DefaultModel,
		BaseURL:   DefaultBaseURL,
		Binary:    DefaultBinary,
		ForceJSON: true,
		UI: UIConfig{
			Backend: "auto",
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   20,
		},
	}
}

// LoadOrCreate reads the settings file, writing the defaults on first run.
func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.SettingsFilePath()
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("could not read settings file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(bytes, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse settings file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize settings: %w", err)
	}
	return WriteFileAtomic(path, payload)
}

// WriteFileAtomic replaces path with payload through a temp file in the same
// directory, leaving the result readable only by the owner.
func WriteFileAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := appdirs.EnsurePrivateDir(dir); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = defaults.Model
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	c.Binary = strings.TrimSpace(c.Binary)
	if c.Binary == "" {
		c.Binary = defaults.Binary
	}
	c.Editor = strings.TrimSpace(c.Editor)
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
	if c.History.Limit <= 0 {
		c.History.Limit = defaults.History.Limit
	}
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "model":
		if value == "" {
			return fmt.Errorf("model must not be empty")
		}
		c.Model = value
	case "base_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("base_url must be an http(s) URL")
		}
		c.BaseURL = value
	case "binary":
		if value == "" || strings.ContainsAny(value, " \t") {
			return fmt.Errorf("binary must be a single executable name")
		}
		c.Binary = value
	case "force_json":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("force_json must be boolean")
		}
		c.ForceJSON = b
	case "editor":
		c.Editor = value
	case "ui.backend":
		c.UI.Backend = normalizeUIBackend(value, "")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "history.enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("history.enabled must be boolean")
		}
		c.History.Enabled = b
	case "history.limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("history.limit must be a positive number")
		}
		c.History.Limit = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	switch key {
	case "model":
		return c.Model, nil
	case "base_url":
		return c.BaseURL, nil
	case "binary":
		return c.Binary, nil
	case "force_json":
		return strconv.FormatBool(c.ForceJSON), nil
	case "editor":
		return c.Editor, nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "history.enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "history.limit":
		return strconv.Itoa(c.History.Limit), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Keys lists every key accepted by Set and Get, in display order.
func Keys() []string {
	return []string{
		"model",
		"base_url",
		"binary",
		"force_json",
		"editor",
		"ui.backend",
		"history.enabled",
		"history.limit",
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", value)
	}
}

func normalizeUIBackend(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return normalized
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}
