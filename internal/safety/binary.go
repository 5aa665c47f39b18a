package safety

import (
	"path/filepath"
	"strings"
)

// UsesBinary reports whether the first word of args names binary, either
// bare or as a path. A mismatch is only ever reported to the user; it never
// blocks execution.
func UsesBinary(args []string, binary string) bool {
	if len(args) == 0 || strings.TrimSpace(binary) == "" {
		return false
	}
	first := strings.ToLower(filepath.Base(args[0]))
	first = strings.TrimSuffix(first, ".exe")
	want := strings.ToLower(strings.TrimSuffix(filepath.Base(binary), ".exe"))
	return first == want
}
