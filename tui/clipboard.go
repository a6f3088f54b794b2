package tui

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/shafreeck/studio/markdown"
)

var _ markdown.Clipboard = &OSC52Clipboard{}

// OSC52Clipboard sets the terminal's clipboard with the OSC 52 escape
// sequence. It works over SSH and inside tmux or screen, where the
// sequence is wrapped for passthrough.
type OSC52Clipboard struct {
	// Out receives the sequence, /dev/tty when nil so the write bypasses
	// the bubbletea renderer.
	Out io.Writer

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (c *OSC52Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := c.Out
	if out == nil {
		tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		defer tty.Close()
		out = tty
	}

	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	termName := getenv("TERM")

	seq := osc52.New(text)
	switch {
	case getenv("TMUX") != "" || strings.HasPrefix(termName, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(termName, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(out)
	return err
}
