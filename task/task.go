// seehuhn.de/go/pageview - a viewport for paginated documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package task implements cancellable units of background work.
//
// A [Task] wraps a function together with a cancellation token, in the form
// of a [context.Context].  Cancellation is cooperative: the function is
// expected to poll the context and return early, but a task which has been
// cancelled may still complete.  Callers which must not see late results
// check [Task.Cancelled] when the completion arrives.
//
// Tasks are executed by a [Runner], a fixed set of worker goroutines with an
// unbounded queue.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Func is the work performed by a task.  Implementations should return
// promptly with ctx.Err() once ctx is cancelled.
type Func[T any] func(ctx context.Context) (T, error)

type state int

const (
	pending state = iota
	running
	finished
)

// Task is a cancellable unit of work producing a value of type T.
//
// All methods are safe for concurrent use.
type Task[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	mu       sync.Mutex
	st       state
	fn       Func[T]
	onDone   func(T, bool)
	released bool
	deferred bool // Cleanup was called while running
	done     chan struct{}
}

// New returns a task which runs fn with a context derived from parent.
// Failures are reported to log; a nil log discards them.
func New[T any](parent context.Context, log *slog.Logger, fn Func[T]) *Task[T] {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Task[T]{
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		fn:     fn,
		done:   make(chan struct{}),
	}
}

// OnDone registers a function which is called exactly once when the task
// finishes, from the goroutine which ran the task.  The flag reports whether
// a result was produced.  OnDone must be called before the task is
// submitted.  The callback is not invoked if the task was cleaned up before
// it started.
func (t *Task[T]) OnDone(fn func(result T, ok bool)) {
	t.mu.Lock()
	t.onDone = fn
	t.mu.Unlock()
}

// Cancel marks the cancellation token as aborted.
// Calling Cancel more than once has no further effect.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Cancelled reports whether the task has been cancelled.
func (t *Task[T]) Cancelled() bool {
	return t.ctx.Err() != nil
}

// Done returns a channel which is closed once the task has finished, or has
// been cleaned up without running.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Cleanup cancels the task and releases the references it holds.
// If the task is currently running, the release is deferred until the
// function has returned.  Cleanup is idempotent.
func (t *Task[T]) Cleanup() {
	t.cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	if t.st == running {
		t.deferred = true
		return
	}
	t.releaseLocked()
}

func (t *Task[T]) releaseLocked() {
	t.released = true
	t.fn = nil
	t.onDone = nil
	if t.st == pending {
		t.st = finished
		close(t.done)
	}
}

// Run executes the task on the calling goroutine.
//
// A task which was cancelled before it started completes without calling
// its function.  Errors and panics from the function are logged and the
// task completes without a result.  Run has no effect if the task has
// already run or has been cleaned up.
func (t *Task[T]) Run() {
	t.mu.Lock()
	if t.st != pending {
		t.mu.Unlock()
		return
	}
	fn := t.fn
	onDone := t.onDone
	if t.ctx.Err() != nil {
		t.st = finished
		close(t.done)
		t.mu.Unlock()
		if onDone != nil {
			var zero T
			onDone(zero, false)
		}
		return
	}
	t.st = running
	t.mu.Unlock()

	res, err := t.call(fn)
	ok := err == nil
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			t.log.Debug("task cancelled", "err", err)
		} else {
			t.log.Warn("task failed", "err", err)
		}
	}

	t.mu.Lock()
	t.st = finished
	onDone = t.onDone
	if t.deferred {
		t.releaseLocked()
	}
	t.mu.Unlock()

	if onDone != nil {
		onDone(res, ok)
	}
	close(t.done)
}

// call runs fn, converting a panic into an error.
func (t *Task[T]) call(fn Func[T]) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			res = zero
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(t.ctx)
}
