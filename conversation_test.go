package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shafreeck/studio/auth"
	"github.com/shafreeck/studio/chat"
)

func TestAnswerChunkUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		text    string
		wantErr string
	}{
		{"delta", `{"choices":[{"delta":{"content":"Hel"}}]}`, "Hel", ""},
		{"role only", `{"choices":[{"delta":{"role":"assistant"}}]}`, "", ""},
		{"error object", `{"error":{"message":"too long","code":"context_length_exceeded"}}`, "",
			"context_length_exceeded: too long"},
		{"error string", `{"error":"overloaded"}`, "", "overloaded"},
	}
	for _, test := range tests {
		c := &AnswerChunk{}
		if err := c.Unmarshal([]byte(test.data)); err != nil {
			t.Errorf("%s: Unmarshal = %v", test.name, err)
			continue
		}
		text, err := c.Text()
		if text != test.text {
			t.Errorf("%s: text = %q, want %q", test.name, text, test.text)
		}
		switch {
		case test.wantErr == "" && err != nil:
			t.Errorf("%s: unexpected error %v", test.name, err)
		case test.wantErr != "" && (err == nil || err.Error() != test.wantErr):
			t.Errorf("%s: error = %v, want %q", test.name, err, test.wantErr)
		}
	}

	if err := (&AnswerChunk{}).Unmarshal([]byte("not json")); err == nil {
		t.Error("invalid event should fail to unmarshal")
	}
}

func TestAnswerChunkSetError(t *testing.T) {
	c := &AnswerChunk{}
	c.SetError(errors.New("connection reset"))
	if _, err := c.Text(); err == nil || err.Error() != "connection reset" {
		t.Errorf("Text after SetError = %v", err)
	}
}

func TestIsTokenExceeded(t *testing.T) {
	exceeded := &chat.StatusError{StatusCode: 400, Code: "context_length_exceeded", Message: "too long"}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{exceeded, true},
		{fmt.Errorf("ask: %w", exceeded), true},
		{errors.New("context_length_exceeded: too long"), true},
		{&chat.StatusError{StatusCode: 400, Code: "invalid_request", Message: "see context_length_exceeded docs"}, false},
	}
	for _, test := range tests {
		if got := IsTokenExceeded(test.err); got != test.want {
			t.Errorf("IsTokenExceeded(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{auth.ErrNotLoggedIn, "not logged in"},
		{fmt.Errorf("chat: %w", auth.ErrTokenExpired), "expired"},
		{&chat.StatusError{StatusCode: 401}, "rejected the token"},
		{&chat.StatusError{StatusCode: 500, Message: "oops"}, "unexpected status 500: oops"},
	}
	for _, test := range tests {
		if got := describeError(test.err); !strings.Contains(got, test.want) {
			t.Errorf("describeError(%v) = %q, want it to contain %q", test.err, got, test.want)
		}
	}
}

func TestPrintConversations(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	printConversations(&buf, nil, now)
	if buf.String() != "no conversations\n" {
		t.Errorf("empty list printed %q", buf.String())
	}

	buf.Reset()
	printConversations(&buf, []Conversation{
		{ID: "c1", Title: "Go generics", UpdatedAt: now.Add(-5 * time.Minute)},
		{ID: "c2", UpdatedAt: now.Add(-50 * time.Hour)},
	}, now)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %q", buf.String())
	}
	for i, want := range [][]string{{"c1", "5m ago", "Go generics"}, {"c2", "2d ago", "(untitled)"}} {
		for _, field := range want {
			if !strings.Contains(lines[i], field) {
				t.Errorf("line %d %q misses %q", i, lines[i], field)
			}
		}
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-59 * time.Minute), "59m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
	}
	for _, test := range tests {
		if got := age(now, test.t); got != test.want {
			t.Errorf("age(%v) = %q, want %q", test.t, got, test.want)
		}
	}
}

func TestDescribeToken(t *testing.T) {
	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	lines := describeToken(&auth.Token{AccessToken: "opaque-token", SavedAt: saved}, true)
	if len(lines) != 2 || !strings.Contains(lines[1], "opaque") {
		t.Errorf("opaque token described as %q", lines)
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-42",
		"email": "dev@example.com",
		"exp":   saved.Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	lines = describeToken(&auth.Token{AccessToken: access, SavedAt: saved}, false)
	text := strings.Join(lines, "\n")
	for _, want := range []string{"u-42", "dev@example.com", "(expired)"} {
		if !strings.Contains(text, want) {
			t.Errorf("description %q misses %q", text, want)
		}
	}
}
