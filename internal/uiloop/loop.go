// Package uiloop provides the single goroutine that owns the tray registry
// and the popover coordinator. Everything that touches either is posted
// here and runs in order.
package uiloop

import (
	"context"
	"sync"

	"github.com/trayd/trayd/internal/errors"
)

// Loop runs posted functions one at a time on its own goroutine. Post
// never blocks, so OS callback threads and workers can hand work over
// without waiting for the loop.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// New creates a loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn. It reports false when the loop has stopped and fn was dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for its result. It must not be
// called from the loop itself.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return errors.New(errors.ErrUnavailable, "UI loop has stopped", "")
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return errors.New(errors.ErrUnavailable, "UI loop stopped before the call ran", "")
		}
	}
}

// Run processes posted functions until ctx is cancelled or Stop is called.
// Work still queued at that point is discarded.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if len(l.pending) == 0 || l.stopped {
				l.mu.Unlock()
				break
			}
			batch := l.pending
			l.pending = nil
			l.mu.Unlock()

			for _, fn := range batch {
				fn()
			}
		}
	}
}

// Stop ends Run and rejects further posts.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.pending = nil
	close(l.done)
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Inline runs posted functions immediately on the caller's goroutine. Tests
// use it where ordering, not threading, is under test.
type Inline struct{}

// Post runs fn and reports true.
func (Inline) Post(fn func()) bool {
	fn()
	return true
}
