package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noStyle      = lipgloss.NewStyle()
	helpStyle    = blurredStyle.Copy()

	focusedButton = focusedStyle.Copy().Render("[ Save ]")
	blurredButton = fmt.Sprintf("[ %s ]", blurredStyle.Render("Save"))
)

// Field is one line of a ConfigInputModel.
type Field struct {
	Placeholder string
	Secret      bool // echo as dots, for tokens and passwords
}

var _ Model[[]string] = &ConfigInputModel{}

// ConfigInputModel collects a few text values, e.g. the token on login.
// Value returns nil when the user aborted.
type ConfigInputModel struct {
	focusIndex int
	inputs     []textinput.Model
	aborted    bool
}

func NewConfigInputModel(fields ...Field) *ConfigInputModel {
	if len(fields) == 0 {
		return nil
	}

	var inputs []textinput.Model
	for _, f := range fields {
		t := textinput.New()
		t.Placeholder = f.Placeholder
		t.Cursor.Style = focusedStyle.Copy()
		t.CharLimit = 4096
		if f.Secret {
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		inputs = append(inputs, t)
	}

	inputs[0].PromptStyle = focusedStyle
	inputs[0].TextStyle = focusedStyle
	inputs[0].Focus()

	return &ConfigInputModel{inputs: inputs}
}

func (m *ConfigInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ConfigInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch s := msg.String(); s {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit

		case "tab", "shift+tab", "enter", "up", "down":
			// enter on the last input or on the button saves
			if s == "enter" && m.focusIndex >= len(m.inputs)-1 {
				return m, tea.Quit
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}
			return m, m.focus()
		}
	}

	// Only text inputs with Focus() set will respond
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *ConfigInputModel) focus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
			continue
		}
		m.inputs[i].Blur()
		m.inputs[i].PromptStyle = noStyle
		m.inputs[i].TextStyle = noStyle
	}
	return tea.Batch(cmds...)
}

func (m *ConfigInputModel) View() string {
	var b strings.Builder

	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		if i < len(m.inputs)-1 {
			b.WriteRune('\n')
		}
	}

	button := blurredButton
	if m.focusIndex == len(m.inputs) {
		button = focusedButton
	}
	fmt.Fprintf(&b, "\n\n%s\n\n", button)
	b.WriteString(helpStyle.Render("(ctrl+c or esc to quit)"))

	return b.String()
}

func (m *ConfigInputModel) Error() error {
	return nil
}

func (m *ConfigInputModel) Value() []string {
	if m.aborted {
		return nil
	}
	var vals []string
	for _, input := range m.inputs {
		vals = append(vals, strings.TrimSpace(input.Value()))
	}
	return vals
}
