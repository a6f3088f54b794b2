package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/auth"
	"github.com/shafreeck/studio/chat"
	"github.com/shafreeck/studio/markdown"
	"github.com/shafreeck/studio/tui"
	"golang.org/x/term"
)

type ChatCommandOptions struct {
	CommonOptions     `yaml:",inline"`
	ModelOptions      `yaml:"model"`
	System            string `cortana:"--system, -, , the optional system prompt" yaml:"system,omitempty"`
	Filename          string `cortana:"--file, -f, , send the file content after sending the text(if supplied)" yaml:"-"`
	Stdin             bool   `cortana:"--stdin, -, false, read from stdin, works as '-f --'" yaml:"-"`
	NonInteractive    bool   `cortana:"--non-interactive, -n, false, chat in none interactive mode" yaml:"non-interactive,omitempty"`
	DisableAutoShrink bool   `cortana:"--disable-auto-shrink, -, false, disable auto shrink messages when the context length is exceeded" yaml:"disable-auto-shrink,omitempty"`
	Renderer          string `cortana:"--renderer, -r, blocks, render replies with blocks, glamour, text or json" yaml:"renderer,omitempty"`
	SessionID         string `cortana:"--session-id, -s, , continue a saved session" yaml:"-"`
	Conversation      string `cortana:"--conversation, -, , the server side conversation to continue" yaml:"-"`
	Text              string `cortana:"text, -" yaml:"-"`
}

type ChatOptions struct {
	ModelOptions
	NonInteractive    bool
	DisableAutoShrink bool
	Text              string
}

type ChatCommand struct {
	c      chat.Chat[*Question, *Answer, *AnswerChunk]
	sess   *Session
	out    CommandOutput
	logger *slog.Logger

	theme          tui.Theme
	renderer       tui.Renderer
	clipboard      markdown.Clipboard
	copies         *markdown.CopyTracker
	conversationID string
}

func NewChatCommand(c chat.Chat[*Question, *Answer, *AnswerChunk], sess *Session, out CommandOutput, logger *slog.Logger) *ChatCommand {
	clipboard := &tui.OSC52Clipboard{}
	return &ChatCommand{
		c:         c,
		sess:      sess,
		out:       out,
		logger:    logger,
		renderer:  &tui.BlockRenderer{},
		clipboard: clipboard,
		copies:    markdown.NewCopyTracker(clipboard, markdown.WithLogger(logger)),
	}
}

// ChatCommand talks to the conversation api
func (s *Studio) ChatCommand() {
	opts := &ChatCommandOptions{}
	cortana.Parse(opts)
	s.setup(&opts.CommonOptions)

	sess := NewSession(path.Join(opts.Dir, "session"), WithCommandOutput(s), WithHighlightStyle(s.highlightStyle))
	if err := sess.Open(opts.SessionID); err != nil {
		s.Fatalln(err)
	}
	defer sess.Close()

	client := NewChatClient(s.getHTTPClient(&opts.CommonOptions),
		strings.TrimRight(opts.API, "/")+"/chat/completions", s.tokenStore(&opts.CommonOptions))
	cc := NewChatCommand(client, sess, s, s.logger)
	cc.theme = s.theme(&opts.CommonOptions)
	cc.renderer = tui.NewRenderer(opts.Renderer, cc.theme)
	cc.conversationID = opts.Conversation
	defer cc.copies.Stop()

	// read from stdin or file
	var err error
	var content string
	if !opts.Stdin {
		opts.Stdin = opts.Filename == "--"
	}
	// read from stdin if os.Stdin is not a terminal
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		opts.Stdin = true
	}
	if opts.Stdin {
		opts.NonInteractive = true
		content, err = s.readStdin()
	} else if opts.Filename != "" {
		content, err = s.readFile(opts.Filename)
	}
	if err != nil {
		s.Fatalln(err)
	}

	if opts.System != "" && len(sess.Messages()) == 0 {
		sess.Append(&Message{Role: System, Content: opts.System})
	}
	if opts.Text != "" {
		sess.Append(&Message{Role: User, Content: opts.Text})
	}
	if content != "" {
		sess.Append(&Message{Role: User, Content: content})
	}

	ctx := context.Background()
	eval := func(text string) {
		// :set may have changed the options
		cc.renderer = tui.NewRenderer(opts.Renderer, cc.theme)
		copts := &ChatOptions{
			ModelOptions:      opts.ModelOptions,
			Text:              text,
			NonInteractive:    opts.NonInteractive,
			DisableAutoShrink: opts.DisableAutoShrink,
		}
		if _, err := cc.Talk(ctx, copts); err != nil {
			s.Errorln(describeError(err))
			if opts.NonInteractive {
				os.Exit(1)
			}
		}
	}

	// Evaluate first before entering interactive mode
	if opts.Text != "" || content != "" {
		eval("")
	}

	if opts.NonInteractive {
		return
	}

	cc.registerBuiltinCommands()
	sess.registerBuiltinCommands()
	NewStudioInfo(s, opts).registerBuiltinCommands()

	lp := &LivePrompt{Prefix: "studio", Delimiter: ">", Session: sess.ID}
	if err := NewRepl(lp).Loop(NewEvaluator(ctx, sess, eval)); err != nil {
		s.Fatalln(err)
	}
}

// Talk sends the session messages, plus opts.Text if any, and shows the
// reply.
func (c *ChatCommand) Talk(ctx context.Context, opts *ChatOptions) (string, error) {
	if opts.Text != "" {
		c.sess.Append(&Message{Role: User, Content: opts.Text})
	}

	// return if there is nothing to ask
	if len(c.sess.Messages()) == 0 {
		return "", nil
	}

	if opts.Stream {
		return c.stream(ctx, opts)
	}
	return c.ask(ctx, opts)
}

func (c *ChatCommand) question(opts *ChatOptions) *Question {
	return &Question{
		ModelOptions:   opts.ModelOptions,
		ConversationID: c.conversationID,
		Messages:       c.sess.Messages(),
	}
}

func (c *ChatCommand) ask(ctx context.Context, opts *ChatOptions) (string, error) {
	q := c.question(opts)
	ans, err := tui.Display[tui.Model[*Answer], *Answer](ctx,
		tui.NewSpinnerModel(ctx, fmt.Sprintf("thinking (%s)", q.Model), func(ctx context.Context) (*Answer, error) {
			return c.c.Ask(ctx, q)
		}))
	if errors.Is(err, tui.ErrInterrupted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if ans == nil {
		return "", nil
	}

	if ans.Error.Message != "" {
		return "", fmt.Errorf("%s", ans.Error.Message)
	}

	var replies []string
	for _, choice := range ans.Choices {
		if choice.Message == nil {
			continue
		}
		replies = append(replies, strings.TrimSpace(choice.Message.Content))
		c.sess.Append(choice.Message)
	}
	text := strings.Join(replies, "\n\n")

	if err := c.show(ctx, text, !opts.NonInteractive); err != nil {
		return "", err
	}

	c.logger.Debug("answer usage",
		"prompt_tokens", ans.Usage.PromptTokens,
		"completion_tokens", ans.Usage.CompletionTokens,
		"total_tokens", ans.Usage.TotalTokens,
	)
	return text, nil
}

func (c *ChatCommand) stream(ctx context.Context, opts *ChatOptions) (string, error) {
	for {
		content, done, err := c.streamOnce(ctx, c.question(opts))
		if err != nil {
			if c.shrinkOnExceeded(err, opts) {
				continue
			}
			return "", err
		}
		// ctrl+c interrupted
		if !done {
			return "", nil
		}

		// Print to output if the tui is not renderable
		// in case the the stdout is not terminal
		if !tui.IsRenderable() {
			fmt.Fprintln(c.out, content)
		}
		c.sess.Append(&Message{Role: Assistant, Content: content})
		return content, nil
	}
}

// streamOnce issues one streamed request and displays it. The request
// is cancelled when the display returns, so an interrupted reply closes
// the connection and stops the reading goroutine.
func (c *ChatCommand) streamOnce(ctx context.Context, q *Question) (string, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := tui.Display[tui.Model[chan *AnswerChunk], chan *AnswerChunk](ctx,
		tui.NewSpinnerModel(ctx, fmt.Sprintf("connecting (%s)", q.Model), func(ctx context.Context) (chan *AnswerChunk, error) {
			return c.c.Stream(ctx, q)
		}))
	if errors.Is(err, tui.ErrInterrupted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if s == nil {
		return "", false, nil
	}

	// handle the stream and print the delta text, the whole
	// content is returned when finished
	content, err := tui.Display[tui.Model[string], string](ctx,
		tui.NewStreamModel(s, c.renderer, (*AnswerChunk).Text))
	// keep what arrived before ctrl+c
	if errors.Is(err, tui.ErrInterrupted) {
		return content, content != "", nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

// shrinkOnExceeded drops older messages when err says the context length
// was exceeded. It reports whether the request should be retried.
func (c *ChatCommand) shrinkOnExceeded(err error, opts *ChatOptions) bool {
	if !IsTokenExceeded(err) || opts.DisableAutoShrink {
		return false
	}

	// Nothing to shrink, the last message alone exceeds the limit.
	n := c.sess.AutoShrink()
	if n == 0 {
		return false
	}

	word := "message"
	if n > 1 {
		word = "messages"
	}
	c.out.Println(fmt.Sprintf("%d %s shrinked because of the context length limit", n, word))
	return true
}

// show displays a reply. With the block renderer in a terminal it stays
// open so code blocks can be copied with the number keys.
func (c *ChatCommand) show(ctx context.Context, text string, interactive bool) error {
	if !tui.IsRenderable() {
		fmt.Fprintln(c.out, text)
		return nil
	}

	var m tui.Model[string]
	if _, ok := c.renderer.(*tui.BlockRenderer); ok {
		opts := []tui.MarkdownOption{tui.WithTheme(c.theme)}
		if interactive {
			opts = append(opts, tui.WithClipboard(c.clipboard, markdown.WithLogger(c.logger)))
		}
		m = tui.NewMarkdownModel(text, opts...)
	} else {
		m = tui.NewContentModel(text, c.renderer)
	}
	_, err := tui.Display[tui.Model[string], string](ctx, m)
	return err
}

// copyCommand copies the nth code block of the last reply
func (c *ChatCommand) copyCommand() (_ string) {
	opts := struct {
		N string `cortana:"n, -, 1"`
	}{}
	builtins.Parse(&opts)

	codes := markdown.CodeBlocks(markdown.Render(c.sess.LastReply()))
	if len(codes) == 0 {
		c.out.Errorln("no code block in the last reply")
		return
	}
	n, err := strconv.Atoi(opts.N)
	if err != nil || n < 1 || n > len(codes) {
		c.out.Errorln(fmt.Sprintf("pick a code block between 1 and %d", len(codes)))
		return
	}
	ctx := builtins.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	c.copies.Copy(ctx, codes[n-1].Content, n-1)
	if c.copies.Copied(n - 1) {
		c.out.Println(fmt.Sprintf("copied code block %d (%s)", n, codes[n-1].Language))
	}
	return
}

// showCommand shows messages, the last one by default
func (c *ChatCommand) showCommand() (_ string) {
	opts := struct {
		Indexes []int `cortana:"index, -"`
		Role    bool  `cortana:"--role, -r, false, show message with role"`
	}{}
	builtins.Parse(&opts)

	messages := c.sess.Messages()
	// nothing to show
	if len(messages) == 0 {
		return
	}

	// show the last message if no index supplied
	if len(opts.Indexes) == 0 {
		opts.Indexes = append(opts.Indexes, len(messages)-1)
	}
	var parts []string
	for _, index := range opts.Indexes {
		if index < 0 || index >= len(messages) {
			continue
		}
		if opts.Role {
			parts = append(parts, "**"+string(messages[index].Role)+"**")
		}
		parts = append(parts, messages[index].Content)
	}
	ctx := builtins.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.show(ctx, strings.Join(parts, "\n\n"), true); err != nil {
		c.out.Errorln(err)
	}
	return
}

func (c *ChatCommand) registerBuiltinCommands() {
	builtins.AddCommand(":message show", builtin(c.showCommand), "show certain messages, copy code with 1-9")
	builtins.AddCommand(":copy", builtin(c.copyCommand), "copy the nth code block of the last reply")
	builtins.Alias(":show", ":message show")
}

const codeContextLengthExceeded = "context_length_exceeded"

// IsTokenExceeded reports whether err says the conversation no longer
// fits the model context. Replies rejected with a status carry the code,
// errors from the stream only have the text.
func IsTokenExceeded(err error) bool {
	if err == nil {
		return false
	}
	var se *chat.StatusError
	if errors.As(err, &se) {
		return se.Code == codeContextLengthExceeded
	}
	return strings.Contains(err.Error(), codeContextLengthExceeded)
}

// describeError turns transport and auth errors into a hint for the user.
func describeError(err error) string {
	var se *chat.StatusError
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		return "not logged in, run `studio login` first"
	case errors.Is(err, auth.ErrTokenExpired):
		return "the session expired, run `studio login` again"
	case errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized:
		return "the server rejected the token, run `studio login` again"
	}
	return err.Error()
}
