// Package debounce delays a changing value until it stops changing.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer emits the latest pushed value once no new value has arrived
// for the configured delay. Each Push cancels the emission scheduled by the
// previous one; Close cancels whatever is pending and nothing fires after it.
//
// emit runs while the Debouncer's lock is held, so it must not call Push or
// Close and should hand the value off quickly.
type Debouncer[T any] struct {
	delay time.Duration
	emit  func(T)

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// New creates a Debouncer with the given quiet period.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		emit:  emit,
	}
}

// Push records a new value and restarts the quiet period.
func (d *Debouncer[T]) Push(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go d.wait(ctx, value)
}

func (d *Debouncer[T]) wait(ctx context.Context, value T) {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// A Push or Close may have won the race with the timer.
	if ctx.Err() != nil || d.closed {
		return
	}
	d.cancel()
	d.cancel = nil
	d.emit(value)
}

// Cancel drops the pending emission, if any, without closing.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Pending reports whether an emission is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Close cancels any pending emission. Later Pushes are ignored.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
