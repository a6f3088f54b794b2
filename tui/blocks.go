package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shafreeck/studio/markdown"
)

const (
	copyIcon   = "⧉"
	copiedIcon = "✓"
)

var _ Renderer = &BlockRenderer{}

// BlockRenderer draws markdown-subset blocks on the terminal: code blocks
// framed and highlighted, lists with bullets or numbers, and paragraphs
// with bold and inline code runs.
type BlockRenderer struct {
	Theme Theme
	Width int // zero means no wrapping

	// Copied reports whether the code block with the given index was
	// copied recently. It may be nil.
	Copied func(index int) bool
}

func (r *BlockRenderer) Render(text string) (string, error) {
	return r.RenderBlocks(markdown.Render(text)), nil
}

func (r *BlockRenderer) RenderBlocks(blocks []markdown.Block) string {
	p := r.Theme.palette()

	var out []string
	codeIndex := 0
	for _, block := range blocks {
		switch b := block.(type) {
		case *markdown.CodeBlock:
			out = append(out, r.renderCode(p, b, codeIndex))
			codeIndex++
		case *markdown.Paragraph:
			out = append(out, r.wrap(r.renderInline(p, b.Content), 0))
		case *markdown.List:
			out = append(out, r.renderList(p, b))
		}
	}
	return strings.Join(out, "\n\n")
}

func (r *BlockRenderer) renderInline(p palette, run markdown.InlineRun) string {
	text := lipgloss.NewStyle().Foreground(p.text)
	bold := text.Copy().Bold(true)
	code := lipgloss.NewStyle().Foreground(p.codeText).Background(p.codeBg)

	var b strings.Builder
	for _, span := range run {
		switch span.Kind {
		case markdown.BoldSpan:
			b.WriteString(bold.Render(span.Content))
		case markdown.CodeSpan:
			b.WriteString(code.Render(span.Content))
		default:
			b.WriteString(text.Render(span.Content))
		}
	}
	return b.String()
}

func (r *BlockRenderer) renderList(p palette, list *markdown.List) string {
	marker := lipgloss.NewStyle().Foreground(p.accent)

	markers := make([]string, len(list.Items))
	widest := 0
	for i := range list.Items {
		m := "•"
		if list.Ordered {
			m = fmt.Sprintf("%d.", i+1)
		}
		markers[i] = m
		if w := lipgloss.Width(m); w > widest {
			widest = w
		}
	}

	lines := make([]string, 0, len(list.Items))
	for i, item := range list.Items {
		prefix := marker.Render(fmt.Sprintf("%*s ", widest, markers[i]))
		body := r.wrap(r.renderInline(p, item), widest+1)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, prefix, body))
	}
	return strings.Join(lines, "\n")
}

func (r *BlockRenderer) renderCode(p palette, code *markdown.CodeBlock, index int) string {
	icon := lipgloss.NewStyle().Foreground(p.faint).Render(copyIcon)
	if r.Copied != nil && r.Copied(index) {
		icon = lipgloss.NewStyle().Foreground(p.copied).Render(copiedIcon + " copied")
	}
	header := fmt.Sprintf("%s  %s %s",
		lipgloss.NewStyle().Foreground(p.accent).Render(code.Language),
		icon,
		lipgloss.NewStyle().Foreground(p.faint).Render(fmt.Sprintf("[%d]", index+1)))

	body := Highlight(code.Content, code.Language, r.Theme)
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)
	return header + "\n" + frame.Render(body)
}

// wrap wraps s to the renderer width minus indent columns.
func (r *BlockRenderer) wrap(s string, indent int) string {
	width := r.Width - indent
	if r.Width <= 0 || width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
