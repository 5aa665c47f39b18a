package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// Confirm asks a yes/no question. The default answer is no.
func (c Console) Confirm(question string) (bool, error) {
	approved := false
	err := runBackends(c.Backend, map[string]func() error{
		BackendBubbleTea: func() (err error) {
			approved, err = confirmWithBubbleTea(question)
			return err
		},
		BackendHuh: func() (err error) {
			approved, err = confirmWithHuh(question)
			return err
		},
		BackendTView: func() (err error) {
			approved, err = confirmWithTView(question)
			return err
		},
		BackendPlain: func() error {
			line, _, err := c.readPlain(fmt.Sprintf("%s [y/N]: ", strings.TrimSpace(question)))
			answer := strings.ToLower(line)
			approved = answer == "y" || answer == "yes"
			return err
		},
	})
	return approved, err
}

type bubbleConfirmModel struct {
	question string
	approved bool
	done     bool
}

func (m bubbleConfirmModel) Init() tea.Cmd { return nil }

func (m bubbleConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(k.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.approved = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m bubbleConfirmModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n",
		menuTitleStyle.Render(m.question),
		menuHintStyle.Render("[y] yes  [n] no"),
	)
}

func confirmWithBubbleTea(question string) (bool, error) {
	model := bubbleConfirmModel{question: strings.TrimSpace(question)}
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(bubbleConfirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(question string) (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title(strings.TrimSpace(question)).
		Affirmative("Yes").
		Negative("No").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	err := prompt.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(question string) (bool, error) {
	app := tview.NewApplication()
	approved := false

	modal := tview.NewModal().
		SetText(strings.TrimSpace(question)).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			approved = strings.EqualFold(strings.TrimSpace(label), "yes")
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	return approved, nil
}
