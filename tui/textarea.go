package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shafreeck/studio/markdown"
)

var _ Model[string] = &TextAreaModel{}

// TextAreaModel composes a multi-line chat message, handy for pasting
// code that contains fences. The status line counts the code blocks and
// warns about a fence left open, which would swallow the rest of the
// message into a code block.
type TextAreaModel struct {
	textarea textarea.Model
	abort    bool
}

func NewTextAreaModel(placeholder string) *TextAreaModel {
	m := textarea.New()
	m.Placeholder = placeholder
	m.ShowLineNumbers = false
	m.CharLimit = 0
	m.Focus()
	return &TextAreaModel{textarea: m}
}

func (m *TextAreaModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *TextAreaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+d", "esc":
			return m, tea.Quit
		case "ctrl+c":
			m.abort = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width)
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// composeStatus describes the message being composed.
func composeStatus(text string) string {
	if strings.TrimSpace(text) == "" {
		return "empty message"
	}
	lines := strings.Count(text, "\n") + 1
	blocks := len(markdown.CodeBlocks(markdown.Render(text)))
	status := fmt.Sprintf("%d lines, %d code blocks", lines, blocks)
	if strings.Count(text, "```")%2 == 1 {
		status += ", unclosed code fence"
	}
	return status
}

func (m *TextAreaModel) View() string {
	return m.textarea.View() + "\n" +
		helpStyle.Render(composeStatus(m.textarea.Value())+" · ctrl+d or esc to send, ctrl+c to abort")
}

func (m *TextAreaModel) Value() string {
	if m.abort {
		return ""
	}
	return strings.TrimRight(m.textarea.Value(), " \t\n")
}

func (m *TextAreaModel) Error() error {
	if m.abort {
		return ErrInterrupted
	}
	return nil
}
