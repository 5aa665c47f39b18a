package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/ashwch/smartff/internal/provider"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("87"))

	menuCursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("45"))

	menuItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	menuHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	commandBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	commandLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("153"))

	commandTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230"))

	explanationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("248"))

	outputLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

const defaultRenderWidth = 80

// RenderProposal formats a generated command and its explanation for the
// terminal.
func RenderProposal(result provider.Result, width int) string {
	if width <= 0 {
		width = defaultRenderWidth
	}
	body := commandLabelStyle.Render("Command") + "\n" + commandTextStyle.Render(strings.TrimSpace(result.Command))
	box := commandBoxStyle.Width(clampInt(width-2, 20, 120)).Render(body)

	explanation := strings.TrimSpace(result.Explanation)
	if explanation == "" {
		return box
	}
	wrapped := explanationStyle.Width(clampInt(width-2, 20, 120)).Render(explanation)
	return box + "\n" + commandLabelStyle.Render("Explanation") + "\n" + wrapped
}

// RenderInstruction renders the active instruction as markdown. Rendering
// failures fall back to the raw text.
func RenderInstruction(text string, custom bool, width int) string {
	if width <= 0 {
		width = defaultRenderWidth
	}
	title := "Default instruction"
	if custom {
		title = "Custom instruction"
	}
	header := menuTitleStyle.Render(title)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return header + "\n" + text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return header + "\n" + text
	}
	return header + "\n" + strings.TrimRight(out, "\n")
}

func Success(message string) string { return successStyle.Render(message) }
func Failure(message string) string { return failureStyle.Render(message) }
func Warning(message string) string { return warningStyle.Render(message) }

// PrintBanner writes the REPL greeting.
func PrintBanner(w io.Writer, version, model string) {
	p := termenv.ColorProfile()
	s1 := termenv.String("  smartff").Bold().Foreground(p.Color("#38bdf8"))
	s2 := termenv.String(" " + strings.TrimSpace(version)).Foreground(p.Color("#818cf8"))
	s3 := termenv.String("  model: " + strings.TrimSpace(model)).Foreground(p.Color("#94a3b8"))
	s4 := termenv.String("  Describe what you want ffmpeg to do. /help lists commands.").Foreground(p.Color("#94a3b8"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s\n", s1, s2)
	fmt.Fprintln(w, s3)
	fmt.Fprintln(w, s4)
	fmt.Fprintln(w)
}
