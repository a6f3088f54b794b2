package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

// chroma knows some languages under other names
var chromaLexers = map[string]string{
	"markup": "html",
	"text":   "plaintext",
}

// Highlight renders code with the grammar for language and the palette of
// theme. Unknown languages fall back to plain text; a highlighting
// failure returns the code unstyled apart from the faint color.
func Highlight(code, language string, theme Theme) string {
	if name, ok := chromaLexers[language]; ok {
		language = name
	}
	p := theme.palette()

	var b strings.Builder
	if err := quick.Highlight(&b, code, language, "terminal256", p.chromaName); err != nil {
		return lipgloss.NewStyle().Foreground(p.faint).Render(code)
	}
	return strings.TrimRight(b.String(), "\n")
}
