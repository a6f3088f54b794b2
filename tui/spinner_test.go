package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func TestSpinnerModelCtrlCCancelsRequest(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "thinking (studio-chat)", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- m.run() }()

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	select {
	case msg := <-msgs:
		err, ok := msg.(errMsg)
		if !ok || !errors.Is(err, context.Canceled) {
			t.Fatalf("request finished with %#v", msg)
		}
		m.Update(msg)
	case <-time.After(5 * time.Second):
		t.Fatal("request not cancelled by ctrl+c")
	}
	if !errors.Is(m.Error(), ErrInterrupted) {
		t.Errorf("Error = %v, want ErrInterrupted", m.Error())
	}
}

func TestSpinnerModelDone(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "connecting", func(context.Context) (string, error) {
		return "chan", nil
	})
	m.Update(m.run())
	if m.Value() != "chan" || m.Error() != nil {
		t.Errorf("Value = %q, Error = %v", m.Value(), m.Error())
	}

	failing := NewSpinnerModel(context.Background(), "connecting", func(context.Context) (string, error) {
		return "", errors.New("refused")
	})
	failing.Update(failing.run())
	if failing.Error() == nil || failing.Error().Error() != "refused" {
		t.Errorf("Error = %v", failing.Error())
	}
}

func TestSpinnerModelShowsElapsed(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "thinking (studio-chat)", func(context.Context) (int, error) {
		return 0, nil
	})
	if view := ansi.Strip(m.View()); !strings.Contains(view, "thinking (studio-chat)") || strings.Contains(view, "0s") {
		t.Errorf("initial view %q", view)
	}

	m.started = time.Now().Add(-3 * time.Second)
	m.Update(m.spinner.Tick())
	if view := ansi.Strip(m.View()); !strings.Contains(view, "3s") {
		t.Errorf("view after 3s %q", view)
	}
}

func TestComposeStatus(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"  \n", "empty message"},
		{"explain this", "1 lines, 0 code blocks"},
		{"look\n```go\nx := 1\n```", "4 lines, 1 code blocks"},
		{"look\n```go\nx := 1", "3 lines, 0 code blocks, unclosed code fence"},
	}
	for _, test := range tests {
		if got := composeStatus(test.text); got != test.want {
			t.Errorf("composeStatus(%q) = %q, want %q", test.text, got, test.want)
		}
	}
}

func TestTextAreaModelAbort(t *testing.T) {
	m := NewTextAreaModel("type")
	m.Update(keyRunes("hi"))
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.Value() != "" || !errors.Is(m.Error(), ErrInterrupted) {
		t.Errorf("aborted model = %q, %v", m.Value(), m.Error())
	}
}
