package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const sessionPrefix = "chat-"

// record is one line of a session file
type record struct {
	Op  string   `json:"op"`
	Msg *Message `json:"msg,omitempty"`
}

type history struct {
	w       io.WriteCloser
	records []*record
}

func (h *history) append(r *record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if h.w != nil {
		if _, err := fmt.Fprintln(h.w, string(data)); err != nil {
			return err
		}
	}
	h.records = append(h.records, r)
	return nil
}

// Session keeps the messages of a chat and journals every change to a
// json lines file, so a chat can be continued with --session-id.
type Session struct {
	mm      messageManager
	dir     string
	sid     string
	history history

	out            CommandOutput
	highlightStyle lipgloss.Style
}

type SessionOption func(s *Session)

func WithCommandOutput(out CommandOutput) SessionOption {
	return func(s *Session) {
		s.out = out
	}
}

func WithHighlightStyle(style lipgloss.Style) SessionOption {
	return func(s *Session) {
		s.highlightStyle = style
	}
}

func NewSession(dir string, opts ...SessionOption) *Session {
	s := &Session{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if s.out == nil {
		s.out = New()
	}
	return s
}

func newSessionID() string {
	return fmt.Sprintf("%s%d-%s", sessionPrefix, time.Now().UnixMilli(), uuid.New())
}

// Open opens the session sid, or a new session when sid is empty.
func (s *Session) Open(sid string) error {
	s.sid = sid
	if s.sid == "" {
		s.sid = newSessionID()
	} else if err := s.load(); err != nil {
		return fmt.Errorf("load session %s: %w", sid, err)
	}

	// open session file for appending
	f, err := os.OpenFile(path.Join(s.dir, s.sid), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	s.history.w = f
	return nil
}

func (s *Session) Close() {
	if s.history.w != nil {
		s.history.w.Close()
		s.history.w = nil
	}
	// nothing saved, delete the session
	if len(s.history.records) == 0 {
		os.Remove(path.Join(s.dir, s.sid))
	}
}

func (s *Session) ID() string {
	return s.sid
}

func (s *Session) Messages() []*Message {
	return s.mm.messages
}

// LastReply returns the content of the last assistant message.
func (s *Session) LastReply() string {
	for i := len(s.mm.messages) - 1; i >= 0; i-- {
		if s.mm.messages[i].Role == Assistant {
			return s.mm.messages[i].Content
		}
	}
	return ""
}

func (s *Session) Append(m *Message) {
	s.apply(&record{Op: ":append", Msg: m})
}

func (s *Session) ClearMessage() {
	s.apply(&record{Op: ":reset"})
}

// Shrink keeps the messages selected by expr, see messageManager.shrink.
func (s *Session) Shrink(expr string) error {
	if err := s.mm.shrink(expr); err != nil {
		return err
	}
	s.journal(&record{Op: ":shrink " + expr})
	return nil
}

func (s *Session) Delete(indexes ...int) {
	op := ":delete"
	for _, i := range indexes {
		op += fmt.Sprintf(" %d", i)
	}
	s.apply(&record{Op: op})
}

// AutoShrink drops the older half of the messages and returns how many
// were dropped.
func (s *Session) AutoShrink() int {
	n := s.mm.autoShrink()
	if n > 0 {
		s.journal(&record{Op: fmt.Sprintf(":shrink %d:", n)})
	}
	return n
}

func (s *Session) apply(r *record) {
	if err := s.mm.replay(r); err != nil {
		s.out.Errorln(err)
		return
	}
	s.journal(r)
}

func (s *Session) journal(r *record) {
	if err := s.history.append(r); err != nil {
		s.out.Errorln(err)
	}
}

func (s *Session) load() error {
	f, err := os.Open(path.Join(s.dir, s.sid))
	if err != nil {
		return err
	}
	defer f.Close()

	var records []*record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		r := &record{}
		if err := json.Unmarshal(scanner.Bytes(), r); err != nil {
			return err
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.mm.messages = nil
	for _, r := range records {
		if err := s.mm.replay(r); err != nil {
			return err
		}
	}
	s.history.records = records
	return nil
}

// Switch closes the current session and opens sid.
func (s *Session) Switch(sid string) error {
	if !strings.HasPrefix(sid, sessionPrefix) {
		return errors.New("invalid session id: " + sid)
	}
	s.Close()
	s.mm.messages = nil
	s.history = history{}
	return s.Open(sid)
}

// List returns the session ids, the latest first.
func (s *Session) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), sessionPrefix) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (s *Session) listCommand() (_ string) {
	ids, err := s.List()
	if err != nil {
		s.out.Errorln(err)
		return
	}
	for _, id := range ids {
		if id == s.sid {
			s.out.StylePrint(s.highlightStyle, "*", id)
			fmt.Fprintln(s.out)
			continue
		}
		fmt.Fprintln(s.out, " ", id)
	}
	return
}

func (s *Session) loadCommand() (_ string) {
	opts := struct {
		SID string `cortana:"sid"`
	}{}
	builtins.Parse(&opts)

	if err := s.Switch(opts.SID); err != nil {
		s.out.Errorln(err)
	}
	return
}

func (s *Session) registerBuiltinCommands() {
	builtins.AddCommand(":session list", builtin(s.listCommand), "list sessions")
	builtins.AddCommand(":session load", builtin(s.loadCommand), "load a session")
	s.mm.registerBuiltinCommands(s)
}
