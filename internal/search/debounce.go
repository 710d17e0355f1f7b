package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task runs one debounced search. still reports whether this task is still
// the newest scheduled one; tasks must check it before committing results so
// a late response from a superseded request never reaches the UI.
type Task func(ctx context.Context, still func() bool)

// Debouncer coalesces rapid keystrokes into one fetch: each Schedule call
// cancels the pending (and any in-flight) task and arms a new one after the
// delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	current string // token of the newest scheduled task
}

// NewDebouncer creates a debouncer with the given delay (300ms is the
// conventional search debounce).
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arms task to run after the debounce delay, superseding any pending
// or in-flight task. It returns the task's token, mainly for tests.
func (d *Debouncer) Schedule(parent context.Context, task Task) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()

	token := uuid.NewString()
	d.current = token

	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel

	d.timer = time.AfterFunc(d.delay, func() {
		still := func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()
			return d.current == token && ctx.Err() == nil
		}
		if !still() {
			return
		}
		task(ctx, still)
	})
	return token
}

// Cancel drops the pending task, if any, without scheduling a replacement.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
	d.current = ""
}

func (d *Debouncer) supersedeLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
