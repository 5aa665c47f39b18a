package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

const refinementTitle = "What should change?"

// AskRefinement reads the change request for a proposed command. An aborted
// prompt returns "".
func (c Console) AskRefinement() (string, error) {
	var text string
	err := runBackends(c.Backend, map[string]func() error{
		BackendBubbleTea: func() (err error) {
			text, err = refineWithBubbleTea()
			return err
		},
		BackendHuh: func() (err error) {
			text, err = refineWithHuh()
			return err
		},
		BackendTView: func() (err error) {
			text, err = refineWithTView()
			return err
		},
		BackendPlain: func() error {
			line, _, err := c.readPlain(refinementTitle + " ")
			text = line
			return err
		},
	})
	return strings.TrimSpace(text), err
}

type refinementModel struct {
	input     textinput.Model
	value     string
	submitted bool
	done      bool
}

func newRefinementModel() refinementModel {
	input := textinput.New()
	input.Placeholder = "e.g. use h265 and keep the audio untouched"
	input.CharLimit = 1000
	input.Width = 72
	input.Focus()
	return refinementModel{input: input}
}

func (m refinementModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m refinementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.value = strings.TrimSpace(m.input.Value())
			m.submitted = true
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m refinementModel) View() string {
	if m.done {
		return ""
	}
	lines := []string{
		menuTitleStyle.Render(refinementTitle),
		m.input.View(),
		menuHintStyle.Render("[enter] submit  [esc] back to menu"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func refineWithBubbleTea() (string, error) {
	final, err := tea.NewProgram(newRefinementModel()).Run()
	if err != nil {
		return "", err
	}
	out, ok := final.(refinementModel)
	if !ok || !out.submitted {
		return "", nil
	}
	return out.value, nil
}

func refineWithHuh() (string, error) {
	var text string
	prompt := huh.NewInput().
		Title(refinementTitle).
		Placeholder("describe the change").
		CharLimit(1000).
		Value(&text).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

func refineWithTView() (string, error) {
	app := tview.NewApplication()
	text := ""
	submitted := false

	form := tview.NewForm()
	form.AddInputField("Change", "", 72, nil, func(value string) {
		text = value
	})
	form.AddButton("Submit", func() {
		submitted = true
		app.Stop()
	})
	form.AddButton("Cancel", func() {
		app.Stop()
	})
	form.SetCancelFunc(func() {
		app.Stop()
	})
	form.SetBorder(true).SetTitle(refinementTitle)

	if err := app.SetRoot(form, true).Run(); err != nil {
		return "", err
	}
	if !submitted {
		return "", nil
	}
	return text, nil
}
