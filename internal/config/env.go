package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey   = "OPENROUTER_API_KEY"
	EnvModel    = "OPENROUTER_MODEL"
	EnvBaseURL  = "OPENROUTER_BASE_URL"
	EnvLogLevel = "SMARTFF_LOG_LEVEL"
)

var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

// Env is the configuration taken from the process environment.
type Env struct {
	APIKey   string
	Model    string
	BaseURL  string
	Editor   string
	LogLevel slog.Level
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("could not load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

func LoadEnv() Env {
	return Env{
		APIKey:   strings.TrimSpace(os.Getenv(EnvAPIKey)),
		Model:    strings.TrimSpace(os.Getenv(EnvModel)),
		BaseURL:  strings.TrimSpace(os.Getenv(EnvBaseURL)),
		Editor:   firstNonEmpty(os.Getenv("EDITOR"), os.Getenv("VISUAL")),
		LogLevel: parseLevel(os.Getenv(EnvLogLevel)),
	}
}

func (e Env) Validate() error {
	if e.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Apply overlays environment overrides on top of the settings file.
func (e Env) Apply(cfg Config) Config {
	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	if e.Editor != "" {
		cfg.Editor = e.Editor
	}
	cfg.normalize()
	return cfg
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
