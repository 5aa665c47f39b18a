package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ashwch/smartff/internal/appdirs"
	"github.com/ashwch/smartff/internal/config"
	"github.com/ashwch/smartff/internal/history"
	"github.com/ashwch/smartff/internal/instruction"
	"github.com/ashwch/smartff/internal/logging"
	"github.com/ashwch/smartff/internal/prefs"
	"github.com/ashwch/smartff/internal/provider"
	"github.com/ashwch/smartff/internal/ui"
	"github.com/ashwch/smartff/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

type options struct {
	Model      string
	UI         string
	Set        []string
	ShowConfig bool
	NoHistory  bool
	Version    bool
}

// exitError ends the process with code after the failure was already shown.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "smartff: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "smartff [flags] [request...]",
		Short: "Turn a plain-language media task into an ffmpeg command",
		Long: `smartff asks a language model for the ffmpeg command that does what you
describe, shows it with an explanation and runs it once you approve.

Without a request it starts an interactive session.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdin, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	// everything after the first request word belongs to the request,
	// including things like "-i" or "--crf"
	flags.SetInterspersed(false)
	flags.StringVar(&opts.Model, "model", "", "override the model for this invocation")
	flags.StringVar(&opts.UI, "ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")
	flags.StringArrayVar(&opts.Set, "set", nil, "persist a setting, key=value (repeatable)")
	flags.BoolVar(&opts.ShowConfig, "show-config", false, "show effective settings and exit")
	flags.BoolVar(&opts.NoHistory, "no-history", false, "do not record this session in history")
	flags.BoolVar(&opts.Version, "version", false, "print version")
	return cmd
}

func run(ctx context.Context, opts options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	env := config.LoadEnv()
	logger := logging.New(env.LogLevel, stderr)

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("could not load settings: %w", err)
	}
	if len(opts.Set) > 0 {
		cfg, err = applySettingChanges(cfg, opts.Set)
		if err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("could not save settings: %w", err)
		}
		logger.Info("settings saved", "path", cfgPath, "changes", len(opts.Set))
	}

	cfg = env.Apply(cfg)
	cfg, err = applyFlagOverrides(cfg, opts)
	if err != nil {
		return err
	}

	if opts.ShowConfig {
		printSettings(stdout, cfg, cfgPath)
		return nil
	}
	request := joinRequest(args)
	if len(opts.Set) > 0 && request == "" {
		printSavedSettings(stdout, opts.Set, cfgPath)
		return nil
	}
	if err := env.Validate(); err != nil {
		return err
	}

	store, err := prefs.OpenDefault()
	if err != nil {
		return fmt.Errorf("could not open preferences: %w", err)
	}
	logger.Debug("preferences loaded", "path", store.Path(), "always_allow", store.AlwaysAllow())
	manager := &instruction.Manager{
		Store:  store,
		Editor: instruction.Editor{Command: instruction.ResolveEditor(cfg.Editor)},
	}

	generator, err := provider.NewOpenAIGenerator(provider.OpenAIConfig{
		BaseURL:   cfg.BaseURL,
		APIKey:    env.APIKey,
		Model:     cfg.Model,
		ForceJSON: cfg.ForceJSON,
	}, logger)
	if err != nil {
		return err
	}

	interactive := request == ""
	var input lineInput
	if interactive {
		historyPath := ""
		if _, err := appdirs.EnsureStateDir(); err == nil {
			historyPath, _ = appdirs.InputHistoryPath()
		}
		input, err = newLineInput(historyPath, stdin, stdout)
		if err != nil {
			logger.Debug("line editing unavailable", "error", err)
		}
	} else {
		input = newBasicLineInput(stdin, stdout)
	}
	defer input.Close()

	backend := cfg.UI.Backend
	if !isTerminal(stdin) || !isTerminal(stdout) {
		backend = ui.BackendPlain
	}
	console := ui.Console{Backend: backend, In: input, Out: stdout}
	width := terminalWidth(stdout)
	busy := ui.NewBusy(stderr, isTerminal(stderr))
	prompter := ui.Prompter{Console: console, Width: width}

	flow := &workflow.Workflow{
		Generator:    busyGenerator{Generator: generator, busy: busy},
		Prefs:        store,
		Instructions: manager,
		Prompter:     prompter,
		Presenter:    prompter,
		Executor: &commandExecutor{
			Binary: cfg.Binary,
			Busy:   busy,
			Out:    stdout,
			Logger: logger,
		},
		Logger: logger,
	}

	a := &app{
		flow:         flow,
		prefs:        store,
		instructions: manager,
		console:      console,
		input:        input,
		model:        generator.Model(),
		historyLimit: cfg.History.Limit,
		width:        width,
		out:          stdout,
		errOut:       stderr,
		logger:       logger,
	}
	if cfg.History.Enabled && !opts.NoHistory {
		recorder, err := history.OpenDefault()
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer recorder.Close()
			logger.Debug("history enabled", "path", recorder.Path())
			a.history = recorder
		}
	}

	if !interactive {
		return a.runOnce(ctx, request)
	}
	ui.PrintBanner(stdout, version, generator.Model())
	return a.repl(ctx)
}

// joinRequest turns command-line words into one request.
func joinRequest(args []string) string {
	words := make([]string, 0, len(args))
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return strings.Join(words, " ")
}

func applySettingChanges(cfg config.Config, pairs []string) (config.Config, error) {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return cfg, fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if err := cfg.Set(key, value); err != nil {
			return cfg, fmt.Errorf("invalid setting %s=%s: %w", key, value, err)
		}
	}
	return cfg, nil
}

func applyFlagOverrides(cfg config.Config, opts options) (config.Config, error) {
	if strings.TrimSpace(opts.Model) != "" {
		if err := cfg.Set("model", opts.Model); err != nil {
			return cfg, fmt.Errorf("invalid --model: %w", err)
		}
	}
	if strings.TrimSpace(opts.UI) != "" {
		if err := cfg.Set("ui.backend", opts.UI); err != nil {
			return cfg, fmt.Errorf("invalid --ui: %w", err)
		}
	}
	return cfg, nil
}

func printSettings(w io.Writer, cfg config.Config, cfgPath string) {
	fmt.Fprintln(w, "effective settings")
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s = %s\n", key, value)
	}
	fmt.Fprintf(w, "config: %s\n", cfgPath)
}

func printSavedSettings(w io.Writer, pairs []string, cfgPath string) {
	sorted := append([]string(nil), pairs...)
	sort.Strings(sorted)
	fmt.Fprintln(w, "saved settings")
	for _, pair := range sorted {
		fmt.Fprintf(w, "- %s\n", strings.TrimSpace(pair))
	}
	fmt.Fprintf(w, "config: %s\n", cfgPath)
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(v any) bool {
	f, ok := v.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(v any) int {
	f, ok := v.(fdWriter)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
