package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errEmptyResponse  = errors.New("empty response")
	errMissingCommand = errors.New(`missing or empty "command"`)
)

// ParseResult decodes raw model output into a Result after removing stray
// code-fence markers. Fenced and unfenced forms of the same object decode
// identically.
func ParseResult(raw string) (Result, error) {
	cleaned := preprocessStructuredText(raw)
	if cleaned == "" {
		return Result{}, &MalformedError{Raw: raw, Err: errEmptyResponse}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return Result{}, &MalformedError{Raw: raw, Err: err}
	}

	command, err := stringField(fields, "command")
	if err != nil {
		return Result{}, &MalformedError{Raw: raw, Err: err}
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{}, &MalformedError{Raw: raw, Err: errMissingCommand}
	}
	explanation, err := stringField(fields, "explanation")
	if err != nil {
		return Result{}, &MalformedError{Raw: raw, Err: err}
	}

	return Result{Command: command, Explanation: strings.TrimSpace(explanation)}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	value, ok := fields[name]
	if !ok || string(value) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", fmt.Errorf("%q must be a string", name)
	}
	return s, nil
}

func preprocessStructuredText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		if idx := strings.IndexAny(trimmed, "{[\n"); idx > 0 {
			// language tag such as "json" before the payload
			if tag := strings.TrimSpace(trimmed[:idx]); isFenceTag(tag) {
				trimmed = trimmed[idx:]
			}
		}
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}

func isFenceTag(tag string) bool {
	if tag == "" || len(tag) > 16 {
		return false
	}
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func truncate(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= max {
		return trimmed
	}
	return trimmed[:max] + "..."
}
