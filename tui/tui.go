package tui

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	Stdin  io.ReadCloser = os.Stdin
	Stdout io.Writer     = os.Stdout
	Stderr io.Writer     = os.Stderr
)

type (
	errMsg         error
	doneMsg[V any] struct {
		v V
	}
	eventMsg[E any] struct {
		e E
	}
)

type Model[T any] interface {
	tea.Model
	Value() T
	Error() error
}

func Display[M Model[V], V any](ctx context.Context, m M) (V, error) {
	// set the default output using termenv, tea.WithOutput(Stdout) does not work for vscode terminal
	termenv.SetDefaultOutput(termenv.NewOutput(Stdout, termenv.WithColorCache(true)))
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(Stdin)}
	if !IsRenderable() {
		opts = append(opts, tea.WithoutRenderer(), tea.WithInput(nil))
	}
	p := tea.NewProgram(m, opts...)
	done, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		// the context was cancelled, the model still holds what it got so far
		err = ctx.Err()
	}
	res, ok := done.(M)
	if !ok {
		var v V
		return v, err
	}
	if res.Error() != nil {
		err = res.Error()
	}
	return res.Value(), err
}

// IsRenderable reports whether Stdout is a terminal the models can draw on.
func IsRenderable() bool {
	if f, ok := Stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
