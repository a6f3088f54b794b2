package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ Model[string] = &StreamModel[any, chan any]{}

// StreamModel drains a stream of events, appending the text onEvent
// extracts from each one. The text so far is re-rendered after every
// event, so a code fence shows as a block once its closing fence arrives.
type StreamModel[E any, S chan E] struct {
	spinner.Model
	err      error
	out      *strings.Builder
	stream   S
	renderer Renderer
	onEvent  func(event E) (string, error)
}

func NewStreamModel[E any, S chan E](stream S, renderer Renderer, onEvent func(event E) (string, error)) *StreamModel[E, S] {
	if renderer == nil {
		renderer = &BlockRenderer{}
	}
	return &StreamModel[E, S]{
		out:      &strings.Builder{},
		stream:   stream,
		renderer: renderer,
		onEvent:  onEvent,
		Model: spinner.New(
			spinner.WithSpinner(spinner.Points),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
		),
	}
}

func (s *StreamModel[E, S]) drainEvent() tea.Msg {
	ev, ok := <-s.stream
	// the channel close
	if !ok {
		return doneMsg[E]{ev}
	}
	return eventMsg[E]{e: ev}
}

func (s *StreamModel[E, S]) Init() tea.Cmd {
	return tea.Batch(s.Model.Tick, s.drainEvent)
}

func (s *StreamModel[E, S]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.err = ErrInterrupted
			return s, tea.Quit
		}
	case errMsg:
		s.err = msg
		return s, tea.Quit
	case eventMsg[E]:
		text, err := s.onEvent(msg.e)
		if err != nil {
			s.err = err
			return s, tea.Quit
		}
		s.out.WriteString(text)
		return s, s.drainEvent
	case doneMsg[E]:
		return s, tea.Quit
	default:
		var cmd tea.Cmd
		s.Model, cmd = s.Model.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StreamModel[E, S]) View() string {
	text, err := s.renderer.Render(s.out.String())
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s %s\n", text, s.Model.View())
}

func (s *StreamModel[E, S]) Value() string {
	return s.out.String()
}

func (s *StreamModel[E, S]) Error() error {
	return s.err
}
