package markdown

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shafreeck/studio/clock"
)

// DefaultCopyWindow is how long a code block stays marked as copied.
const DefaultCopyWindow = 2000 * time.Millisecond

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

type CopyOption func(t *CopyTracker)

func WithClock(c clock.Clock) CopyOption {
	return func(t *CopyTracker) {
		t.clock = c
	}
}

// WithCopyWindow sets how long the copied mark lasts. Non-positive
// durations are ignored.
func WithCopyWindow(d time.Duration) CopyOption {
	return func(t *CopyTracker) {
		if d > 0 {
			t.window = d
		}
	}
}

func WithLogger(logger *slog.Logger) CopyOption {
	return func(t *CopyTracker) {
		t.logger = logger
	}
}

// WithOnChange registers a callback invoked whenever a block's copied
// mark is set or cleared. It is called without internal locks held and
// may run on a timer goroutine.
func WithOnChange(f func(index int, copied bool)) CopyOption {
	return func(t *CopyTracker) {
		t.onChange = f
	}
}

// WithRestartOnRecopy controls what copying an already copied block does.
// When true (the default) the pending timer is cancelled and a new full
// window starts. When false the old timer is kept as well, and whichever
// fires first clears the mark.
func WithRestartOnRecopy(restart bool) CopyOption {
	return func(t *CopyTracker) {
		t.restart = restart
	}
}

// CopyTracker copies code blocks to the clipboard and remembers, per
// block index, which ones were copied recently.
type CopyTracker struct {
	clipboard Clipboard
	clock     clock.Clock
	window    time.Duration
	logger    *slog.Logger
	onChange  func(index int, copied bool)
	restart   bool

	mu     sync.Mutex
	copied map[int]bool
	timers map[int][]*pendingClear
}

type pendingClear struct {
	timer *clock.Timer
}

func NewCopyTracker(clipboard Clipboard, opts ...CopyOption) *CopyTracker {
	t := &CopyTracker{
		clipboard: clipboard,
		clock:     clock.Real(),
		window:    DefaultCopyWindow,
		logger:    slog.Default(),
		restart:   true,
		copied:    make(map[int]bool),
		timers:    make(map[int][]*pendingClear),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Copy writes content to the clipboard and marks index as copied for the
// copy window. A failed write is logged and otherwise ignored; the mark
// is simply not set.
func (t *CopyTracker) Copy(ctx context.Context, content string, index int) {
	if err := t.clipboard.WriteText(ctx, content); err != nil {
		t.logger.Warn("copy to clipboard failed", "block", index, "error", err)
		return
	}

	t.mu.Lock()
	if t.restart {
		for _, p := range t.timers[index] {
			p.timer.Stop()
		}
		delete(t.timers, index)
	}
	t.copied[index] = true

	p := &pendingClear{}
	p.timer = t.clock.AfterFunc(t.window, func() { t.expire(index, p) })
	t.timers[index] = append(t.timers[index], p)
	t.mu.Unlock()

	t.notify(index, true)
}

// Copied reports whether index was copied within the copy window.
func (t *CopyTracker) Copied(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copied[index]
}

// Stop cancels all pending timers and clears every mark.
func (t *CopyTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, pending := range t.timers {
		for _, p := range pending {
			p.timer.Stop()
		}
	}
	t.timers = make(map[int][]*pendingClear)
	t.copied = make(map[int]bool)
}

func (t *CopyTracker) expire(index int, p *pendingClear) {
	t.mu.Lock()
	pending := t.timers[index]
	found := -1
	for i := range pending {
		if pending[i] == p {
			found = i
			break
		}
	}
	// cancelled by a re-copy or Stop while already firing
	if found < 0 {
		t.mu.Unlock()
		return
	}
	pending = append(pending[:found], pending[found+1:]...)
	if len(pending) == 0 {
		delete(t.timers, index)
	} else {
		t.timers[index] = pending
	}
	wasCopied := t.copied[index]
	delete(t.copied, index)
	t.mu.Unlock()

	if wasCopied {
		t.notify(index, false)
	}
}

func (t *CopyTracker) notify(index int, copied bool) {
	if t.onChange != nil {
		t.onChange(index, copied)
	}
}
