package main

import (
	"context"
	"strings"
	"unicode"

	"github.com/c-bata/go-prompt"
	"github.com/charmbracelet/lipgloss"
	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/tui"
)

// the builtin commands of the chat repl, all prefixed by ':'

type builtinCommand struct {
	*cortana.Cortana

	ctx     context.Context
	text    string // text a builtin asks to send
	exiting bool
}

var builtins = &builtinCommand{Cortana: cortana.New(cortana.ExitOnError(false))}

func init() {
	builtins.AddCommand(":exit", builtins.exit, "exit studio")
	builtins.Alias(":quit", ":exit")
	builtins.AddCommand(":read", builtin(read), "read a long message with a textarea")
}

// Launch runs the builtin matching args and returns the text it wants to
// send, if any.
func (c *builtinCommand) Launch(ctx context.Context, args []string) string {
	cmd := c.SearchCommand(args)
	if cmd == nil {
		usage := lipgloss.NewStyle().Foreground(
			lipgloss.AdaptiveColor{Dark: "#79b3ec", Light: "#1d73c9"}).
			Render(c.UsageString())
		tui.Stdout.Write([]byte(usage + "\n"))
		return ""
	}
	c.ctx = ctx
	cmd.Proc()
	text := c.text
	c.text = "" // clear the state
	return text
}

func (c *builtinCommand) exit() {
	c.exiting = true
}

// Exiting reports whether :exit was called, the repl checks it after each
// line.
func (c *builtinCommand) Exiting() bool {
	return c.exiting
}

func builtin(f func() string) func() {
	return func() {
		builtins.text = f()
	}
}

func read() string {
	opts := struct {
		Prompt []string `cortana:"prompt"`
	}{}
	builtins.Parse(&opts)

	ctx := builtins.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// no error in this model
	text, _ := tui.Display[tui.Model[string], string](ctx, tui.NewTextAreaModel("paste or type, code fences included"))
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if len(opts.Prompt) == 0 {
		return text
	}
	return strings.Join(opts.Prompt, " ") + "\n" + text
}

func builtinCompleter(d prompt.Document) []prompt.Suggest {
	prefix := strings.TrimLeft(d.CurrentLineBeforeCursor(), " ")
	if !strings.HasPrefix(prefix, ":") {
		return nil
	}
	cmds := builtins.Complete(prefix)
	var suggests []prompt.Suggest
	for _, cmd := range cmds {
		path := cmd.Path
		fields := strings.Fields(prefix)
		if strings.HasSuffix(prefix, " ") || len(fields) > 1 {
			path = strings.TrimSpace(strings.TrimPrefix(cmd.Path, strings.TrimSpace(fields[0])))
		}
		if path == "" {
			continue
		}
		suggests = append(suggests, prompt.Suggest{Text: path})
	}
	return suggests
}

// splitQuoted split s by spaces with keeping
// untouch on quoted fields
func splitQuoted(s string) []string {
	return strings.FieldsFunc(s, func() func(r rune) bool {
		arounded := false
		return func(r rune) bool {
			if r == '\'' || r == '"' {
				arounded = !arounded
				return true
			}
			if unicode.IsSpace(r) && !arounded {
				return true
			}
			return false
		}
	}())
}
