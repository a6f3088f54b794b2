package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shafreeck/cortana"
	"github.com/shafreeck/studio/tui"
)

// ConversationListCommand lists the server side conversations
func (s *Studio) ConversationListCommand() {
	opts := struct {
		CommonOptions
		JSON bool `cortana:"--json, -, false, print as json"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	conversations, err := NewConversationClient(s.restClient(&opts.CommonOptions)).List(context.Background())
	if err != nil {
		s.Fatalln(describeError(err))
	}

	if opts.JSON {
		data, err := json.MarshalIndent(conversations, "", "  ")
		if err != nil {
			s.Fatalln(err)
		}
		text, err := (&tui.JSONRenderer{Theme: s.theme(&opts.CommonOptions)}).Render(string(data))
		if err != nil {
			s.Fatalln(err)
		}
		fmt.Fprintln(s.stdout, text)
		return
	}
	printConversations(s.stdout, conversations, time.Now())
}

func printConversations(w io.Writer, conversations []Conversation, now time.Time) {
	if len(conversations) == 0 {
		fmt.Fprintln(w, "no conversations")
		return
	}
	for _, c := range conversations {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%-36s  %-12s  %s\n", c.ID, age(now, c.UpdatedAt), title)
	}
}

// age is a short human readable distance from t to now
func age(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// ConversationShowCommand prints one conversation
func (s *Studio) ConversationShowCommand() {
	opts := struct {
		CommonOptions
		ID string `cortana:"id"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	c, err := NewConversationClient(s.restClient(&opts.CommonOptions)).Get(context.Background(), opts.ID)
	if err != nil {
		s.Fatalln(describeError(err))
	}
	printConversations(s.stdout, []Conversation{*c}, time.Now())
}

// ConversationCreateCommand starts a server side conversation
func (s *Studio) ConversationCreateCommand() {
	opts := struct {
		CommonOptions
		Model string   `cortana:"--model, -m, , the model of the conversation"`
		Title []string `cortana:"title, -"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	c, err := NewConversationClient(s.restClient(&opts.CommonOptions)).Create(context.Background(),
		&Conversation{Title: strings.Join(opts.Title, " "), Model: opts.Model})
	if err != nil {
		s.Fatalln(describeError(err))
	}
	fmt.Fprintln(s.stdout, c.ID)
}

// ConversationRenameCommand changes the title of a conversation
func (s *Studio) ConversationRenameCommand() {
	opts := struct {
		CommonOptions
		ID    string   `cortana:"id"`
		Title []string `cortana:"title, -"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	conversations := NewConversationClient(s.restClient(&opts.CommonOptions))
	ctx := context.Background()
	c, err := conversations.Get(ctx, opts.ID)
	if err != nil {
		s.Fatalln(describeError(err))
	}
	c.Title = strings.Join(opts.Title, " ")
	if _, err := conversations.Update(ctx, opts.ID, c); err != nil {
		s.Fatalln(describeError(err))
	}
}

// ConversationDeleteCommand deletes conversations
func (s *Studio) ConversationDeleteCommand() {
	opts := struct {
		CommonOptions
		Yes bool     `cortana:"--yes, -y, false, do not ask for confirmation"`
		IDs []string `cortana:"id, -, -"`
	}{}
	cortana.Parse(&opts)
	s.setup(&opts.CommonOptions)

	if len(opts.IDs) == 0 {
		s.Fatalln("no conversation to delete")
	}
	if !opts.Yes && tui.IsRenderable() {
		prompt := fmt.Sprintf("Delete %d conversation(s)?", len(opts.IDs))
		ok, err := tui.Display[tui.Model[bool], bool](context.Background(), tui.NewConfirmModel(prompt))
		if err != nil {
			s.Fatalln(err)
		}
		if !ok {
			return
		}
	}

	conversations := NewConversationClient(s.restClient(&opts.CommonOptions))
	for _, id := range opts.IDs {
		if err := conversations.Delete(context.Background(), id); err != nil {
			s.Errorln(id, describeError(err))
			continue
		}
		s.Println("deleted", id)
	}
}
