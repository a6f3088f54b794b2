package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type testQuestion struct {
	Text   string `json:"text"`
	Stream bool   `json:"stream"`
}

func (q *testQuestion) New() any { return &testQuestion{} }

type testAnswer struct {
	Reply string `json:"reply"`
}

func (a *testAnswer) New() any { return &testAnswer{} }

type testChunk struct {
	raw []byte
	err error
}

func (c *testChunk) New() any { return &testChunk{} }

func (c *testChunk) Unmarshal(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid chunk %q", data)
	}
	c.raw = append([]byte(nil), data...)
	return nil
}

func (c *testChunk) SetError(err error) { c.err = err }

type testClient = Client[*testQuestion, *testAnswer, *testChunk]

func newTestClient(t *testing.T, auth Authorizer, handler http.HandlerFunc) *testClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New[*testQuestion, *testAnswer, *testChunk](srv.Client(), srv.URL, auth)
}

func collect(t *testing.T, ch chan *testChunk) []*testChunk {
	t.Helper()
	var chunks []*testChunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestStreamDeliversDataEvents(t *testing.T) {
	c := newTestClient(t, BearerToken("tok"), func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		var q testQuestion
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Text != "hi" {
			t.Errorf("request body = %+v, %v", q, err)
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "event: message\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`+"\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"ignored"}}]}`+"\n\n")
	})

	ch, err := c.Stream(context.Background(), &testQuestion{Text: "hi", Stream: true})
	if err != nil {
		t.Fatal(err)
	}
	chunks := collect(t, ch)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	var text string
	for _, chunk := range chunks {
		if chunk.err != nil {
			t.Fatal(chunk.err)
		}
		text += DeltaText(chunk.raw)
	}
	if text != "Hello" {
		t.Errorf("streamed text = %q", text)
	}
}

func TestStreamReportsErrorPayload(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"context too long",`+"\n")
		fmt.Fprint(w, `"code":"context_length_exceeded"}}`+"\n")
	})

	ch, err := c.Stream(context.Background(), &testQuestion{})
	if err != nil {
		t.Fatal(err)
	}
	chunks := collect(t, ch)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if msg := ErrorMessage(chunks[0].raw); msg != "context too long" {
		t.Errorf("ErrorMessage = %q", msg)
	}
	if code := ErrorCode(chunks[0].raw); code != "context_length_exceeded" {
		t.Errorf("ErrorCode = %q", code)
	}
}

func TestStreamStatusError(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid token"}}`)
	})

	_, err := c.Stream(context.Background(), &testQuestion{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected a StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized || se.Message != "invalid token" {
		t.Errorf("unexpected status error %+v", se)
	}
}

type failingAuth struct{ err error }

func (a failingAuth) AuthorizationHeader(context.Context) (string, error) { return "", a.err }

func TestAuthorizerErrorStopsRequest(t *testing.T) {
	errNoToken := errors.New("no token")
	called := false
	c := newTestClient(t, failingAuth{errNoToken}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.Ask(context.Background(), &testQuestion{}); !errors.Is(err, errNoToken) {
		t.Errorf("Ask error = %v", err)
	}
	if called {
		t.Error("request was sent without authorization")
	}
}

func TestAskDecodesAnswer(t *testing.T) {
	c := newTestClient(t, BearerToken("tok"), func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"reply":"pong"}`)
	})

	ans, err := c.Ask(context.Background(), &testQuestion{Text: "ping"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Reply != "pong" {
		t.Errorf("Reply = %q", ans.Reply)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{`{"error":{"message":"boom"}}`, "boom"},
		{`{"error":"plain"}`, "plain"},
		{`{"ok":true}`, ""},
		{`not json`, ""},
	}
	for _, test := range tests {
		if got := ErrorMessage([]byte(test.data)); got != test.want {
			t.Errorf("ErrorMessage(%s) = %q, want %q", test.data, got, test.want)
		}
	}
}

// A reader that walks away from the stream cancels the context; the
// sender must stop and the connection must be released.
func TestStreamCancelReleasesConnection(t *testing.T) {
	handlerDone := make(chan struct{})
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		defer close(handlerDone)
		flusher := w.(http.Flusher)
		for {
			fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"x"}}]}`+"\n\n")
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Stream(ctx, &testQuestion{Stream: true})
	if err != nil {
		t.Fatal(err)
	}
	if chunk := <-ch; chunk == nil || chunk.err != nil {
		t.Fatalf("first chunk = %+v", chunk)
	}
	cancel()

	closed := make(chan struct{})
	go func() {
		for range ch {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("stream channel not closed after cancel")
	}
	select {
	case <-handlerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server still streaming after cancel")
	}
}
