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

package task

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is a unit of work accepted by a [Runner].  *Task[T] implements Job.
type Job interface {
	Run()
}

// Runner executes jobs on a fixed number of worker goroutines.
//
// Jobs are started in submission order.  The queue is unbounded, so that
// Submit never blocks the submitting goroutine.
//
// Runner is safe for concurrent use.
type Runner struct {
	workers int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// busy counts jobs which are currently executing.
	busy atomic.Int32
}

// NewRunner starts a runner with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r := &Runner{workers: workers}
	r.cond = sync.NewCond(&r.mu)

	r.wg.Add(workers)
	for range workers {
		go r.worker()
	}
	return r
}

// Workers returns the number of worker goroutines.
func (r *Runner) Workers() int {
	return r.workers
}

// Submit queues j for execution.  It returns false, without running j,
// if the runner has been closed.
func (r *Runner) Submit(j Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.queue = append(r.queue, j)
	r.cond.Signal()
	return true
}

// Pending returns the number of jobs which are queued or running.
func (r *Runner) Pending() int {
	r.mu.Lock()
	n := len(r.queue)
	r.mu.Unlock()
	return n + int(r.busy.Load())
}

// Close stops accepting new jobs, runs the jobs which are still queued and
// waits for the workers to exit.  Close is idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.wg.Wait()
		return
	}
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()

	r.wg.Wait()
}

// worker is the main loop for each worker goroutine.
func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if len(r.queue) == 0 {
			// closed and drained
			r.mu.Unlock()
			return
		}
		j := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		r.busy.Add(1)
		r.mu.Unlock()

		j.Run()
		r.busy.Add(-1)
	}
}
