// Package runtime runs a generated command line as a child process and
// streams its merged output line by line.
package runtime

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

var (
	ErrBinaryNotFound = errors.New("binary not found")
	ErrShellSyntax    = errors.New("shell operators are not supported")
)

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

type Report struct {
	Args     []string
	ExitCode int
	Success  bool
	Lines    int
}

// Runner executes commands without a shell. Output from stdout and stderr is
// merged into one stream and handed to OnLine as each line completes. Both
// '\n' and '\r' end a line so progress updates arrive as they are printed.
type Runner struct {
	OnLine func(line string)
	// Stdin is nil by default, which connects the null device.
	Stdin io.Reader
}

func (r Runner) Run(command string) (Report, error) {
	normalized, err := NormalizeCommand(command)
	if err != nil {
		return Report{}, err
	}
	args, err := Split(normalized)
	if err != nil {
		return Report{}, err
	}
	report := Report{Args: args, ExitCode: -1}

	pr, pw, err := os.Pipe()
	if err != nil {
		return report, fmt.Errorf("could not create output pipe: %w", err)
	}
	defer pr.Close()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.Stdin = r.Stdin

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		if isNotFound(err) {
			return report, fmt.Errorf("%w: %s", ErrBinaryNotFound, args[0])
		}
		return report, fmt.Errorf("could not start %s: %w", args[0], err)
	}
	_ = pw.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanOutputLines)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			continue
		}
		report.Lines++
		if r.OnLine != nil {
			r.OnLine(line)
		}
	}
	scanErr := scanner.Err()
	// the scanner stops early on an overlong line; keep the pipe flowing
	// so the child can still exit
	_, _ = io.Copy(io.Discard, pr)

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			report.ExitCode = exitErr.ExitCode()
			return report, &ExitError{Code: report.ExitCode}
		}
		return report, fmt.Errorf("waiting for %s: %w", args[0], waitErr)
	}
	report.ExitCode = 0
	report.Success = true
	if scanErr != nil {
		return report, fmt.Errorf("reading output: %w", scanErr)
	}
	return report, nil
}

// Split breaks a command line into arguments using POSIX shell quoting.
// Environment variables and backticks are left untouched.
func Split(command string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("could not split command: %w", err)
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("%w (near %q)", ErrShellSyntax, tail(command, parser.Position))
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}
	return args, nil
}

// NormalizeCommand trims whitespace, code fences and a leading prompt marker.
func NormalizeCommand(command string) (string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", fmt.Errorf("command cannot be empty")
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", fmt.Errorf("command contains invalid null byte")
	}

	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		trimmed = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	if strings.HasPrefix(trimmed, "$ ") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "$ "))
	}

	if trimmed == "" {
		return "", fmt.Errorf("command cannot be empty")
	}
	return trimmed, nil
}

func scanOutputLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func tail(s string, pos int) string {
	if pos < 0 || pos >= len(s) {
		return ""
	}
	return truncate(s[pos:], 24)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
