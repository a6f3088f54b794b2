package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

var _ Model[string] = &ContentModel{}

// ContentModel prints text once through any Renderer and quits.
type ContentModel struct {
	Val      string
	Text     string
	renderer Renderer
	err      error
}

func NewContentModel(text string, renderer Renderer) *ContentModel {
	m := &ContentModel{Text: text, renderer: renderer}
	m.Val, m.err = renderer.Render(text)
	return m
}

func (m *ContentModel) Init() tea.Cmd {
	return tea.Quit
}

func (m *ContentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

func (m *ContentModel) View() string {
	if m.err != nil {
		return m.err.Error() + "\n"
	}
	return m.Val + "\n"
}

// Value returns the rendered text.
func (m *ContentModel) Value() string {
	return m.Val
}

func (m *ContentModel) Error() error {
	return m.err
}
