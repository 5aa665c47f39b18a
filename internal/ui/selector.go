package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// PromptAction is an entry of the /prompt submenu.
type PromptAction string

const (
	PromptView  PromptAction = "view"
	PromptEdit  PromptAction = "edit"
	PromptReset PromptAction = "reset"
	PromptBack  PromptAction = "back"
)

type promptOption struct {
	Label  string
	Action PromptAction
}

func promptOptions(custom bool) []promptOption {
	view := "View current instruction (default)"
	if custom {
		view = "View current instruction (custom)"
	}
	return []promptOption{
		{Label: view, Action: PromptView},
		{Label: "Edit instruction in $EDITOR", Action: PromptEdit},
		{Label: "Reset to default instruction", Action: PromptReset},
		{Label: "Back", Action: PromptBack},
	}
}

// SelectPromptAction shows the instruction submenu. Aborting returns
// PromptBack.
func (c Console) SelectPromptAction(custom bool) (PromptAction, error) {
	options := promptOptions(custom)
	action := PromptBack
	err := runBackends(c.Backend, map[string]func() error{
		BackendBubbleTea: func() (err error) {
			action, err = selectPromptWithBubbleTea(options)
			return err
		},
		BackendHuh: func() (err error) {
			action, err = selectPromptWithHuh(options)
			return err
		},
		BackendTView: func() (err error) {
			action, err = selectPromptWithTView(options)
			return err
		},
		BackendPlain: func() (err error) {
			action, err = c.selectPromptWithPlain(options)
			return err
		},
	})
	return action, err
}

func selectPromptWithHuh(options []promptOption) (PromptAction, error) {
	huhOptions := make([]huh.Option[PromptAction], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option.Label, option.Action))
	}
	choice := options[0].Action

	prompt := huh.NewSelect[PromptAction]().
		Title("Instruction").
		Options(huhOptions...).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return PromptBack, nil
		}
		return PromptBack, err
	}
	return choice, nil
}

type bubbleSelectorItem struct {
	label  string
	action PromptAction
}

func (i bubbleSelectorItem) Title() string       { return i.label }
func (i bubbleSelectorItem) Description() string { return "" }
func (i bubbleSelectorItem) FilterValue() string { return i.label }

type bubbleSelectorModel struct {
	list      list.Model
	selection PromptAction
	cancelled bool
	options   int
}

func newBubbleSelectorModel(options []promptOption) bubbleSelectorModel {
	items := make([]list.Item, 0, len(options))
	for _, option := range options {
		items = append(items, bubbleSelectorItem{label: option.Label, action: option.Action})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	width, height := bubblePickerSize(80, 24, len(items))
	picker := list.New(items, delegate, width, height)
	picker.Title = "Instruction"
	picker.SetShowHelp(false)
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)

	return bubbleSelectorModel{list: picker, options: len(items)}
}

func (m bubbleSelectorModel) Init() tea.Cmd { return nil }

func (m bubbleSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := bubblePickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(bubbleSelectorItem); ok {
				m.selection = item.action
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m bubbleSelectorModel) View() string {
	return m.list.View()
}

func (m bubbleSelectorModel) action() PromptAction {
	if m.cancelled || m.selection == "" {
		return PromptBack
	}
	return m.selection
}

func selectPromptWithBubbleTea(options []promptOption) (PromptAction, error) {
	final, err := tea.NewProgram(newBubbleSelectorModel(options), tea.WithAltScreen()).Run()
	if err != nil {
		return PromptBack, err
	}
	out, ok := final.(bubbleSelectorModel)
	if !ok {
		return PromptBack, nil
	}
	return out.action(), nil
}

func selectPromptWithTView(options []promptOption) (PromptAction, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle("Instruction")
	listView.ShowSecondaryText(false)

	selected := PromptBack
	for i, option := range options {
		current := option
		listView.AddItem(current.Label, "", rune('1'+i), func() {
			selected = current.Action
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return PromptBack, err
	}
	return selected, nil
}

func (c Console) selectPromptWithPlain(options []promptOption) (PromptAction, error) {
	out := c.out()
	for i, option := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, option.Label)
	}
	line, aborted, err := c.readPlain(fmt.Sprintf("Select [1-%d]: ", len(options)))
	if err != nil || aborted {
		return PromptBack, err
	}
	return parsePlainPromptAction(line, options), nil
}

func parsePlainPromptAction(line string, options []promptOption) PromptAction {
	answer := strings.ToLower(strings.TrimSpace(line))
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1].Action
	}
	for _, option := range options {
		if answer == string(option.Action) {
			return option.Action
		}
	}
	return PromptBack
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func bubblePickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	maxWidth := termWidth
	minWidth := 32
	if maxWidth < minWidth {
		minWidth = maxWidth
	}
	width := clampInt(termWidth-4, minWidth, maxWidth)

	visibleItems := clampInt(optionCount, 3, 12)
	desiredHeight := visibleItems + 6

	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = termHeight
	}
	if maxHeight <= 0 {
		maxHeight = 1
	}
	minHeight := 8
	if maxHeight < minHeight {
		minHeight = maxHeight
	}
	height := clampInt(desiredHeight, minHeight, maxHeight)
	return width, height
}

func huhSelectHeight(optionCount int) int {
	if optionCount < 1 {
		optionCount = 1
	}
	return clampInt(optionCount+1, 4, 10)
}
