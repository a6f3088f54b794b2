package main

import (
	"bytes"
	"os"
	"path"
	"reflect"
	"strings"
	"testing"
)

func contents(messages []*Message) []string {
	var out []string
	for _, m := range messages {
		out = append(out, m.Content)
	}
	return out
}

func managerWith(contents ...string) *messageManager {
	m := &messageManager{}
	for _, c := range contents {
		m.append(&Message{Role: User, Content: c})
	}
	return m
}

func TestMessageManagerShrink(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"1:3", []string{"b", "c"}},
		{"2", []string{"c", "d"}},
		{":2", []string{"a", "b"}},
		{"2:", []string{"c", "d"}},
		{"0:0", nil},
		{"1:10", []string{"b", "c", "d"}},
		{"9", nil},
	}
	for _, test := range tests {
		m := managerWith("a", "b", "c", "d")
		if err := m.shrink(test.expr); err != nil {
			t.Errorf("shrink(%q): %v", test.expr, err)
			continue
		}
		if got := contents(m.messages); !reflect.DeepEqual(got, test.want) {
			t.Errorf("shrink(%q) = %v, want %v", test.expr, got, test.want)
		}
	}

	for _, bad := range []string{"x", "1:y", "-1"} {
		if err := managerWith("a").shrink(bad); err == nil {
			t.Errorf("shrink(%q) should fail", bad)
		}
	}
}

func TestMessageManagerDelete(t *testing.T) {
	m := managerWith("a", "b", "c", "d")
	m.delete(0, 2, 7, -1)
	if got := contents(m.messages); !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Errorf("delete left %v", got)
	}
}

func TestMessageManagerAutoShrink(t *testing.T) {
	tests := []struct {
		size    int
		dropped int
		left    int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 1},
		{3, 2, 1},
		{4, 2, 2},
		{9, 4, 5},
	}
	for _, test := range tests {
		m := &messageManager{}
		for i := 0; i < test.size; i++ {
			m.append(&Message{Role: User, Content: "x"})
		}
		if n := m.autoShrink(); n != test.dropped || len(m.messages) != test.left {
			t.Errorf("size %d: dropped %d left %d, want %d and %d",
				test.size, n, len(m.messages), test.dropped, test.left)
		}
	}
}

func TestMessageManagerReplay(t *testing.T) {
	m := &messageManager{}
	records := []*record{
		{Op: ":append", Msg: &Message{Role: User, Content: "a"}},
		{Op: ":append", Msg: &Message{Role: Assistant, Content: "b"}},
		{Op: ":append", Msg: &Message{Role: User, Content: "c"}},
		{Op: ":delete 1"},
		{Op: ":shrink 1:"},
	}
	for _, r := range records {
		if err := m.replay(r); err != nil {
			t.Fatal(err)
		}
	}
	if got := contents(m.messages); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("replayed messages %v", got)
	}
	if err := m.replay(&record{Op: ":reset"}); err != nil || len(m.messages) != 0 {
		t.Errorf("reset = %v, %d messages left", err, len(m.messages))
	}
	for _, bad := range []*record{{Op: ""}, {Op: ":append"}, {Op: ":nope"}, {Op: ":delete x"}} {
		if err := m.replay(bad); err == nil {
			t.Errorf("replay(%q) should fail", bad.Op)
		}
	}
}

func newTestSession(t *testing.T, dir string) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(dir, WithCommandOutput(New(WithStdout(&out), WithStderr(&out))))
	return s, &out
}

func TestSessionJournalIsReplayed(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, dir)
	if err := s.Open(""); err != nil {
		t.Fatal(err)
	}
	sid := s.ID()
	if !strings.HasPrefix(sid, sessionPrefix) {
		t.Fatalf("unexpected session id %q", sid)
	}

	s.Append(&Message{Role: System, Content: "be brief"})
	s.Append(&Message{Role: User, Content: "hi"})
	s.Append(&Message{Role: Assistant, Content: "```go\nfmt.Println(1)\n```"})
	s.Append(&Message{Role: User, Content: "again"})
	if n := s.AutoShrink(); n != 2 {
		t.Fatalf("AutoShrink dropped %d", n)
	}
	s.Close()

	reopened, _ := newTestSession(t, dir)
	if err := reopened.Open(sid); err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	want := []string{"```go\nfmt.Println(1)\n```", "again"}
	if got := contents(reopened.Messages()); !reflect.DeepEqual(got, want) {
		t.Errorf("reopened messages %v, want %v", got, want)
	}
	if got := reopened.LastReply(); got != want[0] {
		t.Errorf("LastReply = %q", got)
	}
}

func TestEmptySessionIsRemoved(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, dir)
	if err := s.Open(""); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := os.Stat(path.Join(dir, s.ID())); !os.IsNotExist(err) {
		t.Errorf("empty session file still exists: %v", err)
	}
}

func TestSessionListAndSwitch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chat-1-a", "chat-2-b", "notes.txt"} {
		if err := os.WriteFile(path.Join(dir, name),
			[]byte(`{"op":":append","msg":{"role":"user","content":"`+name+`"}}`+"\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	s, out := newTestSession(t, dir)
	if err := s.Open("chat-1-a"); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ids, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"chat-2-b", "chat-1-a"}) {
		t.Errorf("List = %v", ids)
	}

	s.listCommand()
	if !strings.Contains(out.String(), "chat-1-a") || !strings.Contains(out.String(), "chat-2-b") {
		t.Errorf("list output %q", out.String())
	}

	if err := s.Switch("chat-2-b"); err != nil {
		t.Fatal(err)
	}
	if got := contents(s.Messages()); !reflect.DeepEqual(got, []string{"chat-2-b"}) {
		t.Errorf("messages after switch %v", got)
	}
	if err := s.Switch("notes.txt"); err == nil {
		t.Error("switching to a non session file should fail")
	}
}

func TestShortSessionID(t *testing.T) {
	tests := map[string]string{
		"chat-1712345678901-1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed": "1b9d6bcd",
		"chat-1":     "",
		"other-1-ab": "",
	}
	for sid, want := range tests {
		if got := shortSessionID(sid); got != want {
			t.Errorf("shortSessionID(%q) = %q, want %q", sid, got, want)
		}
	}
}
