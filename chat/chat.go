package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Newer interface {
	New() any
}
type Question interface {
	Newer
}
type Answer interface {
	Newer
}
type AnswerChunk interface {
	New() any
	Unmarshal([]byte) error
	SetError(err error)
}

func newObj[T Newer]() T {
	var t T
	return t.New().(T)
}

// Authorizer supplies the Authorization header value for each request.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// BearerToken is an Authorizer with a fixed token.
type BearerToken string

func (t BearerToken) AuthorizationHeader(context.Context) (string, error) {
	return "Bearer " + string(t), nil
}

// StatusError is returned when the server answers with a non 2xx status.
type StatusError struct {
	StatusCode int
	Code       string // error.code of the reply, if any
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Code != "" {
		return fmt.Sprintf("unexpected status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

type Chat[Q Question, A Answer, AC AnswerChunk] interface {
	Ask(ctx context.Context, q Q) (A, error)
	Stream(ctx context.Context, q Q) (chan AC, error)
}

type Client[Q Question, A Answer, AC AnswerChunk] struct {
	cli  *http.Client
	url  string
	auth Authorizer
}

func New[Q Question, A Answer, AC AnswerChunk](cli *http.Client, url string, auth Authorizer) *Client[Q, A, AC] {
	return &Client[Q, A, AC]{cli: cli, url: url, auth: auth}
}

func (c *Client[Q, _, _]) post(ctx context.Context, q Q, accept string) (*http.Response, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if c.auth != nil {
		header, err := c.auth.AuthorizationHeader(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", header)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func (c *Client[Q, A, _]) Ask(ctx context.Context, q Q) (A, error) {
	ans := newObj[A]()

	resp, err := c.post(ctx, q, "application/json")
	if err != nil {
		return ans, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ans, err
	}
	if err := json.Unmarshal(data, ans); err != nil {
		return ans, err
	}
	return ans, nil
}

// Stream posts q and delivers every "data:" event of the server-sent
// event stream as a chunk until "[DONE]" or the end of the body. Lines
// that are not data events are collected and delivered as one final
// chunk, which is how the server reports errors mid stream.
func (c *Client[Q, _, AC]) Stream(ctx context.Context, q Q) (chan AC, error) {
	resp, err := c.post(ctx, q, "text/event-stream")
	if err != nil {
		return nil, err
	}

	ch := make(chan AC)
	go func() {
		defer resp.Body.Close()
		defer close(ch)

		send := func(ansc AC) bool {
			select {
			case <-ctx.Done():
				return false
			case ch <- ansc:
				return true
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		errbuf := bytes.NewBuffer(nil)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}

			// field lines other than data carry no payload
			if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "id:") ||
				strings.HasPrefix(line, "retry:") {
				continue
			}

			prefix := "data:"
			// it would be an error event if not data: prefixed
			if !strings.HasPrefix(line, prefix) {
				errbuf.WriteString(line)
				continue
			}
			text := strings.TrimSpace(line[len(prefix):])
			if text == "[DONE]" {
				return
			}

			ansc := newObj[AC]()
			if err := ansc.Unmarshal([]byte(text)); err != nil {
				ansc.SetError(err)
			}
			if !send(ansc) {
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			ansc := newObj[AC]()
			ansc.SetError(err)
			send(ansc)
			return
		}

		if errbuf.Len() == 0 {
			return
		}
		// send the error message
		ansc := newObj[AC]()
		if err := ansc.Unmarshal(errbuf.Bytes()); err != nil {
			ansc.SetError(err)
		}
		send(ansc)
	}()
	return ch, nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	msg := ErrorMessage(data)
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	return &StatusError{StatusCode: resp.StatusCode, Code: ErrorCode(data), Message: msg}
}
