package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted is returned by models the user left with ctrl+c.
var ErrInterrupted = errors.New("interrupted")

var _ Model[any] = &SpinnerModel[any]{}

// SpinnerModel waits for one request to the studio api, showing what it
// waits for and for how long. ctrl+c cancels the request.
type SpinnerModel[V any] struct {
	spinner spinner.Model
	label   string
	started time.Time
	elapsed time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	do     func(ctx context.Context) (V, error)

	val V
	err error
}

// NewSpinnerModel runs do with a context derived from ctx, label says
// what is going on, e.g. "thinking (studio-chat)".
func NewSpinnerModel[V any](ctx context.Context, label string, do func(ctx context.Context) (V, error)) *SpinnerModel[V] {
	ctx, cancel := context.WithCancel(ctx)
	return &SpinnerModel[V]{
		label:   label,
		started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		do:      do,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
		),
	}
}

func (s *SpinnerModel[V]) run() tea.Msg {
	v, err := s.do(s.ctx)
	if err != nil {
		return errMsg(err)
	}
	return doneMsg[V]{v: v}
}

func (s *SpinnerModel[V]) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.run)
}

func (s *SpinnerModel[V]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.err = ErrInterrupted
			s.cancel()
			return s, tea.Quit
		}
	case errMsg:
		// a late error after ctrl+c is the cancellation itself
		if s.err == nil {
			s.err = msg
		}
		return s, tea.Quit
	case doneMsg[V]:
		s.val = msg.v
		return s, tea.Quit
	case spinner.TickMsg:
		s.elapsed = time.Since(s.started).Truncate(time.Second)
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SpinnerModel[V]) View() string {
	str := fmt.Sprintf("%s %s", s.spinner.View(), s.label)
	if s.elapsed >= time.Second {
		str += helpStyle.Render(fmt.Sprintf(" %s", s.elapsed))
	}
	return str + strings.Repeat(" ", 10) + "\r"
}

func (s *SpinnerModel[V]) Value() V {
	return s.val
}

func (s *SpinnerModel[V]) Error() error {
	return s.err
}
