package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/markdown"
	"github.com/shafreeck/studio/tui"
)

type RenderCommandOptions struct {
	Theme          string `cortana:"--theme, -, auto, the color theme: auto, dark or light"`
	Renderer       string `cortana:"--renderer, -r, blocks, render with blocks, glamour, text or json"`
	Width          int    `cortana:"--width, -w, 0, wrap paragraphs at this width, 0 for the terminal width"`
	NonInteractive bool   `cortana:"--non-interactive, -n, false, print and quit, do not wait to copy code blocks"`
	Verbose        bool   `cortana:"--verbose, -v, false, print verbose messages"`
	File           string `cortana:"file, -"`
}

// RenderCommand renders markdown from a file or stdin
func (s *Studio) RenderCommand() {
	opts := &RenderCommandOptions{}
	cortana.Parse(opts)
	s.logger = newLogger(s.stderr, opts.Verbose)

	var text string
	var err error
	if opts.File == "" || opts.File == "-" {
		text, err = s.readStdin()
	} else {
		text, err = s.readFile(expandPath(opts.File))
	}
	if err != nil {
		s.Fatalln(err)
	}

	theme, err := tui.ParseTheme(opts.Theme)
	if err != nil {
		s.Fatalln(err)
	}
	if err := s.render(context.Background(), text, theme, opts); err != nil {
		s.Fatalln(err)
	}
}

func (s *Studio) render(ctx context.Context, text string, theme tui.Theme, opts *RenderCommandOptions) error {
	renderer := tui.NewRenderer(opts.Renderer, theme)
	if br, ok := renderer.(*tui.BlockRenderer); ok {
		br.Width = opts.Width
	}

	// print directly when the output is piped
	if !tui.IsRenderable() {
		out, err := renderer.Render(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.stdout, out)
		return nil
	}

	var m tui.Model[string]
	if _, ok := renderer.(*tui.BlockRenderer); ok {
		mopts := []tui.MarkdownOption{tui.WithTheme(theme), tui.WithWidth(opts.Width)}
		if !opts.NonInteractive {
			mopts = append(mopts, tui.WithClipboard(&tui.OSC52Clipboard{}, markdown.WithLogger(s.logger)))
		}
		m = tui.NewMarkdownModel(text, mopts...)
	} else {
		m = tui.NewContentModel(text, renderer)
	}
	_, err := tui.Display[tui.Model[string], string](ctx, m)
	if err != nil {
		s.logger.Debug("render failed", slog.String("renderer", opts.Renderer), slog.Any("error", err))
	}
	return err
}
