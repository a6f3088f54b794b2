package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the color scheme flag read once per render pass.
type Theme int

const (
	Dark Theme = iota
	Light
)

func (t Theme) String() string {
	if t == Light {
		return "light"
	}
	return "dark"
}

// ParseTheme accepts "light", "dark" or "auto" (and the empty string),
// which detects the terminal background.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DetectTheme(), nil
	case "dark":
		return Dark, nil
	case "light":
		return Light, nil
	}
	return Dark, fmt.Errorf("unknown theme %q, want light, dark or auto", s)
}

// DetectTheme picks the theme matching the terminal background.
func DetectTheme() Theme {
	if termenv.HasDarkBackground() {
		return Dark
	}
	return Light
}

type palette struct {
	text       lipgloss.Color
	faint      lipgloss.Color
	accent     lipgloss.Color
	codeText   lipgloss.Color
	codeBg     lipgloss.Color
	border     lipgloss.Color
	copied     lipgloss.Color
	chromaName string
}

var palettes = map[Theme]palette{
	Dark: {
		text:       lipgloss.Color("252"),
		faint:      lipgloss.Color("243"),
		accent:     lipgloss.Color("#0aacf8"),
		codeText:   lipgloss.Color("#e6db74"),
		codeBg:     lipgloss.Color("236"),
		border:     lipgloss.Color("240"),
		copied:     lipgloss.Color("#13f911"),
		chromaName: "monokai",
	},
	Light: {
		text:       lipgloss.Color("235"),
		faint:      lipgloss.Color("245"),
		accent:     lipgloss.Color("#1d73c9"),
		codeText:   lipgloss.Color("#c7254e"),
		codeBg:     lipgloss.Color("255"),
		border:     lipgloss.Color("250"),
		copied:     lipgloss.Color("#2e8b57"),
		chromaName: "github",
	},
}

func (t Theme) palette() palette {
	return palettes[t]
}
