package tui

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type Renderer interface {
	Render(string) (string, error)
}

type JSONRenderer struct {
	Theme Theme
}

func (r *JSONRenderer) Render(text string) (string, error) {
	out := &strings.Builder{}
	if err := quick.Highlight(out, text, "json", "terminal256", r.Theme.palette().chromaName); err != nil {
		return "", err
	}
	return out.String(), nil
}

type TextRenderer struct {
	Style lipgloss.Style
}

func (r *TextRenderer) Render(text string) (string, error) {
	return r.Style.Render(text), nil
}

// GlamourRenderer renders full CommonMark, for text that needs more than
// the subset BlockRenderer understands (headings, tables, links).
type GlamourRenderer struct {
	Theme Theme
	Width int
}

func (r *GlamourRenderer) Render(text string) (string, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(r.Theme.String())}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return md.Render(text)
}

// NewRenderer returns the renderer registered under name, the block
// renderer for unknown names.
func NewRenderer(name string, theme Theme) Renderer {
	var renderer Renderer
	switch name {
	case "text":
		renderer = &TextRenderer{}
	case "glamour":
		renderer = &GlamourRenderer{Theme: theme}
	case "json":
		renderer = &JSONRenderer{Theme: theme}
	default:
		renderer = &BlockRenderer{Theme: theme}
	}
	return renderer
}
