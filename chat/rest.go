package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shafreeck/studio/clock"
)

// Retry defaults for REST calls. The delay starts at initialBackoff and
// doubles after every failed attempt, capped at maxBackoff.
const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
	defaultRetries = 3
)

// REST calls a JSON API rooted at a base URL.
type REST struct {
	cli      *http.Client
	base     string
	auth     Authorizer
	clock    clock.Clock
	logger   *slog.Logger
	attempts int
}

type RESTOption func(r *REST)

func WithRESTClock(c clock.Clock) RESTOption {
	return func(r *REST) { r.clock = c }
}

func WithRESTLogger(l *slog.Logger) RESTOption {
	return func(r *REST) { r.logger = l }
}

// WithAttempts sets how many times a request is tried before giving up.
func WithAttempts(n int) RESTOption {
	return func(r *REST) {
		if n > 0 {
			r.attempts = n
		}
	}
}

func NewREST(cli *http.Client, baseURL string, auth Authorizer, opts ...RESTOption) *REST {
	r := &REST{
		cli:      cli,
		base:     strings.TrimRight(baseURL, "/"),
		auth:     auth,
		clock:    clock.Real(),
		logger:   slog.Default(),
		attempts: defaultRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *REST) Get(ctx context.Context, path string, out any) error {
	return r.Do(ctx, http.MethodGet, path, nil, out)
}

func (r *REST) Post(ctx context.Context, path string, in, out any) error {
	return r.Do(ctx, http.MethodPost, path, in, out)
}

func (r *REST) Put(ctx context.Context, path string, in, out any) error {
	return r.Do(ctx, http.MethodPut, path, in, out)
}

func (r *REST) Delete(ctx context.Context, path string) error {
	return r.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one JSON request, retrying transient failures, and decodes
// the reply into out when out is not nil.
func (r *REST) Do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = data
	}

	backoff := initialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		var data []byte
		data, err = r.once(ctx, method, path, body)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(data)) == 0 {
				return nil
			}
			return json.Unmarshal(data, out)
		}
		if !retryable(err) || attempt >= r.attempts || ctx.Err() != nil {
			return err
		}

		r.logger.Debug("retrying request",
			"method", method,
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-r.clock.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (r *REST) once(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, reader)
	if err != nil {
		return nil, err
	}
	if r.auth != nil {
		header, err := r.auth.AuthorizationHeader(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", header)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return !errors.Is(ue.Err, context.Canceled) && !errors.Is(ue.Err, context.DeadlineExceeded)
	}
	return false
}

// Resource is a typed CRUD view over one collection of a REST API.
type Resource[T any] struct {
	rest *REST
	path string
}

func NewResource[T any](rest *REST, path string) *Resource[T] {
	return &Resource[T]{rest: rest, path: "/" + strings.Trim(path, "/")}
}

func (res *Resource[T]) item(id string) string {
	return res.path + "/" + url.PathEscape(id)
}

func (res *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := res.rest.Get(ctx, res.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (res *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	if err := res.rest.Get(ctx, res.item(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (res *Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	var created T
	if err := res.rest.Post(ctx, res.path, v, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (res *Resource[T]) Update(ctx context.Context, id string, v *T) (*T, error) {
	var updated T
	if err := res.rest.Put(ctx, res.item(id), v, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (res *Resource[T]) Delete(ctx context.Context, id string) error {
	return res.rest.Delete(ctx, res.item(id))
}
