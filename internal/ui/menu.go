package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashwch/smartff/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// ChooseAction asks what to do with a proposed command. Aborting any backend
// (Esc, Ctrl-C, EOF) counts as Reject.
func (c Console) ChooseAction(command string) (workflow.Choice, error) {
	choice := workflow.ChoiceReject
	err := runBackends(c.Backend, map[string]func() error{
		BackendBubbleTea: func() (err error) {
			choice, err = chooseWithBubbleTea(command)
			return err
		},
		BackendHuh: func() (err error) {
			choice, err = chooseWithHuh(command)
			return err
		},
		BackendTView: func() (err error) {
			choice, err = chooseWithTView(command)
			return err
		},
		BackendPlain: func() (err error) {
			choice, err = c.chooseWithPlain()
			return err
		},
	})
	return choice, err
}

type actionMenuModel struct {
	command  string
	choices  []workflow.Choice
	cursor   int
	selected workflow.Choice
	done     bool
}

func newActionMenuModel(command string) actionMenuModel {
	return actionMenuModel{command: strings.TrimSpace(command), choices: workflow.Choices()}
}

func (m actionMenuModel) Init() tea.Cmd { return nil }

func (m actionMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(k.String()) {
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor + len(m.choices) - 1) % len(m.choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "enter", " ":
		return m.finish(m.choices[m.cursor])
	case "1", "y":
		return m.finish(workflow.ChoiceAllow)
	case "2", "a":
		return m.finish(workflow.ChoiceAlwaysAllow)
	case "3", "m", "e":
		return m.finish(workflow.ChoiceMakeChanges)
	case "4", "n", "r", "esc", "ctrl+c", "q":
		return m.finish(workflow.ChoiceReject)
	}
	return m, nil
}

func (m actionMenuModel) finish(choice workflow.Choice) (tea.Model, tea.Cmd) {
	m.selected = choice
	m.done = true
	return m, tea.Quit
}

func (m actionMenuModel) View() string {
	if m.done {
		return ""
	}
	lines := []string{menuTitleStyle.Render("Run this command?"), ""}
	for i, choice := range m.choices {
		label := fmt.Sprintf("%d. %s", i+1, choice.Label())
		if i == m.cursor {
			lines = append(lines, menuCursorStyle.Render("> "+label))
			continue
		}
		lines = append(lines, menuItemStyle.Render("  "+label))
	}
	lines = append(lines, "", menuHintStyle.Render("[enter] select  [y] allow  [a] always  [m] change  [n] reject"))
	return strings.Join(lines, "\n") + "\n"
}

func chooseWithBubbleTea(command string) (workflow.Choice, error) {
	final, err := tea.NewProgram(newActionMenuModel(command)).Run()
	if err != nil {
		return workflow.ChoiceReject, err
	}
	out, ok := final.(actionMenuModel)
	if !ok || !out.done {
		return workflow.ChoiceReject, nil
	}
	return out.selected, nil
}

func chooseWithHuh(command string) (workflow.Choice, error) {
	options := make([]huh.Option[workflow.Choice], 0, 4)
	for _, choice := range workflow.Choices() {
		options = append(options, huh.NewOption(choice.Label(), choice))
	}
	choice := workflow.ChoiceAllow
	prompt := huh.NewSelect[workflow.Choice]().
		Title("Run this command?").
		Description(strings.TrimSpace(command)).
		Options(options...).
		Height(huhSelectHeight(len(options))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return workflow.ChoiceReject, nil
		}
		return workflow.ChoiceReject, err
	}
	return choice, nil
}

func chooseWithTView(command string) (workflow.Choice, error) {
	app := tview.NewApplication()
	choices := workflow.Choices()
	labels := make([]string, 0, len(choices))
	for _, choice := range choices {
		labels = append(labels, choice.Label())
	}

	selected := workflow.ChoiceReject
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Run this command?\n\n%s", strings.TrimSpace(command))).
		AddButtons(labels).
		SetDoneFunc(func(index int, _ string) {
			if index >= 0 && index < len(choices) {
				selected = choices[index]
			}
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return workflow.ChoiceReject, err
	}
	return selected, nil
}

func (c Console) chooseWithPlain() (workflow.Choice, error) {
	choices := workflow.Choices()
	labels := make([]string, 0, len(choices))
	for i, choice := range choices {
		labels = append(labels, fmt.Sprintf("[%d] %s", i+1, choice.Label()))
	}
	fmt.Fprintln(c.out(), strings.Join(labels, "  "))

	for {
		line, aborted, err := c.readPlain("Choose [1-4]: ")
		if err != nil {
			return workflow.ChoiceReject, err
		}
		if aborted {
			return workflow.ChoiceReject, nil
		}
		if choice, ok := parsePlainChoice(line, choices); ok {
			return choice, nil
		}
		fmt.Fprintln(c.out(), "Please enter 1, 2, 3 or 4.")
	}
}

func parsePlainChoice(line string, choices []workflow.Choice) (workflow.Choice, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(line))
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], true
	}
	for _, choice := range choices {
		if trimmed == strings.ToLower(choice.Label()) {
			return choice, true
		}
	}
	switch trimmed {
	case "y", "yes":
		return workflow.ChoiceAllow, true
	case "a", "always":
		return workflow.ChoiceAlwaysAllow, true
	case "m", "e", "edit", "change":
		return workflow.ChoiceMakeChanges, true
	case "n", "no", "r":
		return workflow.ChoiceReject, true
	}
	return "", false
}
