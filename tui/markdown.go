package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shafreeck/studio/markdown"
)

var _ Model[string] = &MarkdownModel{}

// copyChangedMsg is sent when a code block's copied mark is set or
// cleared, so the copy icon is redrawn.
type copyChangedMsg struct{}

type MarkdownOption func(m *MarkdownModel)

func WithTheme(theme Theme) MarkdownOption {
	return func(m *MarkdownModel) {
		m.r.Theme = theme
	}
}

func WithWidth(width int) MarkdownOption {
	return func(m *MarkdownModel) {
		m.r.Width = width
	}
}

// WithClipboard makes the model interactive: the number keys copy the
// matching code block to clipboard.
func WithClipboard(clipboard markdown.Clipboard, opts ...markdown.CopyOption) MarkdownOption {
	return func(m *MarkdownModel) {
		m.clipboard = clipboard
		m.copyOpts = opts
	}
}

// MarkdownModel shows a rendered reply. When a clipboard is configured it
// stays open so code blocks can be copied, otherwise it quits right after
// the first render.
type MarkdownModel struct {
	r      BlockRenderer
	blocks []markdown.Block
	codes  []*markdown.CodeBlock
	Text   string

	clipboard markdown.Clipboard
	copyOpts  []markdown.CopyOption
	tracker   *markdown.CopyTracker
	changes   chan struct{}
	done      chan struct{}
	quitting  bool
}

func NewMarkdownModel(text string, opts ...MarkdownOption) *MarkdownModel {
	m := &MarkdownModel{
		r:       BlockRenderer{Theme: Dark},
		Text:    text,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.blocks = markdown.Render(text)
	m.codes = markdown.CodeBlocks(m.blocks)

	if m.clipboard != nil && len(m.codes) > 0 {
		opts := append([]markdown.CopyOption{markdown.WithOnChange(m.notify)}, m.copyOpts...)
		m.tracker = markdown.NewCopyTracker(m.clipboard, opts...)
		m.r.Copied = m.tracker.Copied
	}
	return m
}

func (m *MarkdownModel) interactive() bool {
	return m.tracker != nil
}

func (m *MarkdownModel) notify(int, bool) {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *MarkdownModel) waitChange() tea.Msg {
	select {
	case <-m.changes:
		return copyChangedMsg{}
	case <-m.done:
		return nil
	}
}

func (m *MarkdownModel) copy(index int) tea.Cmd {
	content := m.codes[index].Content
	return func() tea.Msg {
		m.tracker.Copy(context.Background(), content, index)
		return nil
	}
}

func (m *MarkdownModel) quit() (tea.Model, tea.Cmd) {
	if !m.quitting {
		m.quitting = true
		close(m.done)
		if m.tracker != nil {
			m.tracker.Stop()
		}
	}
	return m, tea.Quit
}

func (m *MarkdownModel) Init() tea.Cmd {
	if !m.interactive() {
		return tea.Quit
	}
	return m.waitChange
}

func (m *MarkdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.interactive() {
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "esc", "q", "enter":
			return m.quit()
		}
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if index := int(key[0] - '1'); index < len(m.codes) {
				return m, m.copy(index)
			}
		}
	case tea.WindowSizeMsg:
		m.r.Width = msg.Width
	case copyChangedMsg:
		return m, m.waitChange
	}
	return m, nil
}

func (m *MarkdownModel) View() string {
	view := m.r.RenderBlocks(m.blocks)
	if !m.interactive() || m.quitting {
		return view + "\n"
	}
	var help string
	if len(m.codes) == 1 {
		help = "1 to copy the code block"
	} else {
		help = fmt.Sprintf("1-%d to copy a code block", min(len(m.codes), 9))
	}
	return view + "\n\n" + helpStyle.Render(strings.Join([]string{help, "q to quit"}, ", ")) + "\n"
}

func (m *MarkdownModel) Value() string {
	return m.Text
}

func (m *MarkdownModel) Error() error {
	return nil
}
