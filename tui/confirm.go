package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var _ Model[bool] = &ConfirmModel{}

// ConfirmModel asks a yes/no question. Only an explicit "Yes" confirms.
type ConfirmModel struct {
	prompt   string
	quitting bool
	buttons  [2]string
	focus    int // 0 for Yes, 1 for No

	confirmed bool
}

func NewConfirmModel(prompt string) *ConfirmModel {
	// focus No so that a stray enter does not confirm
	return &ConfirmModel{prompt: prompt, buttons: [2]string{"Yes", "No"}, focus: 1}
}

func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch msgKey.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		m.confirmed = false
		return m, tea.Quit
	case "y", "Y":
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit
	case "n", "N":
		m.confirmed = false
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.confirmed = m.focus == 0
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab", "left", "right", "up", "down", "h", "l":
		m.focus = 1 - m.focus
	}
	return m, nil
}

func (m *ConfirmModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	buttons := make([]string, len(m.buttons))
	for i, button := range m.buttons {
		if i == m.focus {
			buttons[i] = focusedStyle.Render(fmt.Sprintf("[ %s ]", button))
			continue
		}
		buttons[i] = fmt.Sprintf("[ %s ]", blurredStyle.Render(button))
	}

	fmt.Fprintf(&b, "%s\n\n%s  %s\n\n", m.prompt, buttons[0], buttons[1])
	b.WriteString(helpStyle.Render("(y/n, ctrl+c, esc or q to cancel)"))

	return b.String()
}

func (m *ConfirmModel) Value() bool {
	return m.confirmed
}

func (m *ConfirmModel) Error() error {
	return nil
}
