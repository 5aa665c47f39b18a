// Package knowledge holds the built-in instruction text sent to the model
// when the user has not configured a custom one.
package knowledge

import (
	_ "embed"
	"strings"
)

//go:embed default_instruction.md
var defaultInstruction string

func DefaultInstruction() string {
	return strings.TrimSpace(defaultInstruction)
}
