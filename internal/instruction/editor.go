package instruction

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

const DefaultEditor = "nano"

// Editor opens a file in an external text editor and blocks until it exits.
type Editor struct {
	// Command may include arguments, e.g. "code --wait".
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// ResolveEditor picks the first non-empty candidate, falling back to
// DefaultEditor.
func ResolveEditor(candidates ...string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return trimmed
		}
	}
	return DefaultEditor
}

func (e Editor) Open(path string) error {
	command := ResolveEditor(e.Command)
	args, err := shellwords.Parse(command)
	if err != nil || len(args) == 0 {
		return fmt.Errorf("invalid editor command %q", command)
	}
	args = append(args, path)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = orReader(e.Stdin, os.Stdin)
	cmd.Stdout = orWriter(e.Stdout, os.Stdout)
	cmd.Stderr = orWriter(e.Stderr, os.Stderr)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", args[0], err)
	}
	return nil
}

func orReader(r io.Reader, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}

func orWriter(w io.Writer, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
