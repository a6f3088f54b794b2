package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CommandOutput is where commands print for the user. Diagnostics go to
// slog instead.
type CommandOutput interface {
	io.Writer
	StylePrint(style lipgloss.Style, a ...any)
	StylePrintln(style lipgloss.Style, a ...any)
	StylePrintf(style lipgloss.Style, format string, a ...any)
	Print(a ...any)
	Println(a ...any)
	Printf(format string, a ...any)
	Error(a ...any)
	Errorln(a ...any)
	Errorf(format string, a ...any)
}

var _ CommandOutput = &Studio{}

func (s *Studio) Write(data []byte) (int, error) {
	return s.stdout.Write(data)
}

// StylePrint renders the operands separated by spaces, like Println
// without the newline.
func (s *Studio) StylePrint(style lipgloss.Style, a ...any) {
	fmt.Fprint(s.stdout, style.Render(sprint(a...)))
}

func sprint(a ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(a...), "\n")
}

func (s *Studio) StylePrintf(style lipgloss.Style, format string, a ...any) {
	fmt.Fprint(s.stdout, style.Render(fmt.Sprintf(format, a...)))
}

func (s *Studio) StylePrintln(style lipgloss.Style, a ...any) {
	s.StylePrint(style, a...)
	fmt.Fprintln(s.stdout)
}

func (s *Studio) Print(a ...any) {
	s.StylePrint(s.textStyle, a...)
}

func (s *Studio) Printf(format string, a ...any) {
	s.StylePrintf(s.textStyle, format, a...)
}

func (s *Studio) Println(a ...any) {
	s.StylePrintln(s.textStyle, a...)
}

func (s *Studio) Error(a ...any) {
	fmt.Fprint(s.stderr, s.errStyle.Render(sprint(a...)))
}

func (s *Studio) Errorf(format string, a ...any) {
	fmt.Fprint(s.stderr, s.errStyle.Render(fmt.Sprintf(format, a...)))
}

func (s *Studio) Errorln(a ...any) {
	s.Error(a...)
	fmt.Fprintln(s.stderr)
}

func (s *Studio) Fatalln(a ...any) {
	s.Errorln(a...)
	os.Exit(1)
}
