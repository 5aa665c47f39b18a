// Package router classifies one line typed at the interactive prompt.
package router

import "strings"

type Intent string

func (i Intent) String() string { return string(i) }

const (
	IntentEmpty   Intent = "empty"
	IntentExit    Intent = "exit"
	IntentMode    Intent = "mode"
	IntentPrompt  Intent = "prompt"
	IntentHistory Intent = "history"
	IntentHelp    Intent = "help"
	IntentRequest Intent = "request"
)

type Command struct {
	Intent Intent
	// Text is the request for IntentRequest or the argument for slash
	// commands that take one.
	Text string
}

var slashCommands = map[string]Intent{
	"/exit":    IntentExit,
	"/quit":    IntentExit,
	"/mode":    IntentMode,
	"/prompt":  IntentPrompt,
	"/history": IntentHistory,
	"/help":    IntentHelp,
}

// bare words that also leave the loop
var exitWords = map[string]struct{}{
	"exit": {},
	"quit": {},
	"q":    {},
}

func Parse(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Intent: IntentEmpty}
	}
	if _, ok := exitWords[strings.ToLower(trimmed)]; ok {
		return Command{Intent: IntentExit}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Intent: IntentRequest, Text: trimmed}
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	if intent, ok := slashCommands[strings.ToLower(name)]; ok {
		return Command{Intent: intent, Text: strings.TrimSpace(arg)}
	}
	// "/home/me/clip.mov to gif" is a request, not a command
	return Command{Intent: IntentRequest, Text: trimmed}
}

// Help lists the interactive commands in display order.
func Help() [][2]string {
	return [][2]string{
		{"/mode", "toggle always-allow (run generated commands without asking)"},
		{"/prompt", "view, edit or reset the instruction sent to the model"},
		{"/history [term]", "show recent requests, optionally filtered"},
		{"/help", "show this list"},
		{"/exit", "quit"},
	}
}
