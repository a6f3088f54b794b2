package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shafreeck/studio/tui"
)

type messageManager struct {
	messages []*Message
}

func (m *messageManager) append(msg *Message) {
	m.messages = append(m.messages, msg)
}

// shrink keeps messages[begin:end] for expr "begin:end", either side may
// be omitted. A single number keeps messages[begin:].
func (m *messageManager) shrink(expr string) error {
	size := len(m.messages)
	parts := strings.SplitN(expr, ":", 2)

	begin, end := 0, size
	var err error
	if v := strings.TrimSpace(parts[0]); v != "" {
		if begin, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid shrink expression %q: %w", expr, err)
		}
	}
	if len(parts) == 2 {
		if v := strings.TrimSpace(parts[1]); v != "" {
			if end, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("invalid shrink expression %q: %w", expr, err)
			}
		}
	}
	if begin < 0 || end < 0 {
		return fmt.Errorf("invalid shrink expression %q: negative index", expr)
	}
	if end > size {
		end = size
	}
	if begin > end {
		begin = end
	}
	m.messages = m.messages[begin:end]
	return nil
}

func (m *messageManager) delete(indexes ...int) {
	for _, index := range indexes {
		if index < 0 || index >= len(m.messages) {
			continue
		}
		m.messages[index] = nil
	}
	var updated []*Message
	for _, msg := range m.messages {
		if msg != nil {
			updated = append(updated, msg)
		}
	}
	m.messages = updated
}

// autoShrink drops the older half of the messages when the conversation
// exceeds the context length. The last message is always kept.
func (m *messageManager) autoShrink() int {
	size := len(m.messages)
	switch size {
	case 0, 1:
		return 0
	case 2, 3:
		m.messages = m.messages[size-1:]
		return size - 1
	}
	idx := size / 2
	m.messages = m.messages[idx:]
	return idx
}

// replay applies one journaled operation.
func (m *messageManager) replay(r *record) error {
	args := strings.Fields(r.Op)
	if len(args) == 0 {
		return fmt.Errorf("empty session record")
	}
	switch args[0] {
	case ":append":
		if r.Msg == nil {
			return fmt.Errorf("append record without a message")
		}
		m.append(r.Msg)
	case ":reset":
		m.messages = nil
	case ":shrink":
		if len(args) != 2 {
			return fmt.Errorf("invalid shrink record %q", r.Op)
		}
		return m.shrink(args[1])
	case ":delete":
		var indexes []int
		for _, arg := range args[1:] {
			i, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid delete record %q: %w", r.Op, err)
			}
			indexes = append(indexes, i)
		}
		m.delete(indexes...)
	default:
		return fmt.Errorf("unknown session operation %q", args[0])
	}
	return nil
}

func (m *messageManager) registerBuiltinCommands(s *Session) {
	list := func() (_ string) {
		opts := struct {
			N int `cortana:"--n, -n, 0, list the first n messages"`
		}{}
		builtins.Parse(&opts)

		messages := m.messages
		if opts.N > 0 && opts.N < len(messages) {
			messages = messages[:opts.N]
		}
		render := &tui.JSONRenderer{}
		for i, msg := range messages {
			data, err := json.Marshal(msg)
			if err != nil {
				s.out.Errorln(err)
				return
			}
			text, err := render.Render(string(data))
			if err != nil {
				s.out.Errorln(err)
				return
			}
			fmt.Fprintf(s.out, "%3d. %s\n", i, text)
		}
		return
	}
	shrink := func() (_ string) {
		opts := struct {
			Expr string `cortana:"expr"`
		}{}
		builtins.Parse(&opts)
		if err := s.Shrink(opts.Expr); err != nil {
			s.out.Errorln(err)
		}
		return
	}
	del := func() (_ string) {
		opts := struct {
			Indexes []int `cortana:"index, -, -"`
		}{}
		builtins.Parse(&opts)
		s.Delete(opts.Indexes...)
		return
	}
	appendMessage := func() (_ string) {
		opts := struct {
			Role string `cortana:"--role, -r, user, append message with certain role"`
			Text string `cortana:"text"`
		}{}
		builtins.Parse(&opts)
		if opts.Text != "" {
			s.Append(&Message{Role: ChatRole(opts.Role), Content: opts.Text})
		}
		return
	}
	reset := func() (_ string) {
		s.ClearMessage()
		return
	}

	builtins.AddCommand(":message list", builtin(list), "list messages")
	builtins.AddCommand(":message delete", builtin(del), "delete messages")
	builtins.AddCommand(":message shrink", builtin(shrink), "shrink messages, e.g. 2:5")
	builtins.AddCommand(":message append", builtin(appendMessage), "append a message")
	builtins.AddCommand(":message reset", builtin(reset), "remove all messages")
	builtins.Alias(":ls", ":message list")
	builtins.Alias(":reset", ":message reset")
	builtins.Alias(":append", ":message append")
}
