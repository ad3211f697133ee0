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
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunResult(t *testing.T) {
	tk := New(context.Background(), nil, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	var got int
	var gotOK bool
	tk.OnDone(func(v int, ok bool) {
		got, gotOK = v, ok
	})
	tk.Run()

	if !gotOK || got != 42 {
		t.Errorf("got (%d, %t), want (42, true)", got, gotOK)
	}
	select {
	case <-tk.Done():
	default:
		t.Error("Done channel not closed")
	}
}

func TestRunFailure(t *testing.T) {
	cases := []struct {
		name string
		fn   Func[string]
	}{
		{"error", func(context.Context) (string, error) {
			return "partial", errors.New("engine failure")
		}},
		{"panic", func(context.Context) (string, error) {
			panic("out of range")
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tk := New(context.Background(), nil, c.fn)
			calls := 0
			tk.OnDone(func(v string, ok bool) {
				calls++
				if ok {
					t.Errorf("unexpected result %q", v)
				}
			})
			tk.Run()
			if calls != 1 {
				t.Errorf("OnDone called %d times", calls)
			}
		})
	}
}

func TestCancelBeforeRun(t *testing.T) {
	ran := false
	tk := New(context.Background(), nil, func(context.Context) (int, error) {
		ran = true
		return 1, nil
	})
	var gotOK = true
	tk.OnDone(func(_ int, ok bool) { gotOK = ok })

	tk.Cancel()
	tk.Cancel() // idempotent
	if !tk.Cancelled() {
		t.Error("task not marked as cancelled")
	}
	tk.Run()

	if ran {
		t.Error("cancelled task ran its function")
	}
	if gotOK {
		t.Error("cancelled task reported a result")
	}
}

func TestCleanupIdempotent(t *testing.T) {
	tk := New(context.Background(), nil, func(context.Context) (int, error) {
		return 1, nil
	})
	called := false
	tk.OnDone(func(int, bool) { called = true })

	tk.Cleanup()
	tk.Cleanup()
	tk.Cancel()
	tk.Run()

	if called {
		t.Error("OnDone called after Cleanup")
	}
	select {
	case <-tk.Done():
	default:
		t.Error("Done channel not closed after Cleanup")
	}
}

// TestCleanupWhileRunning checks that Cleanup on a running task cancels the
// context and defers the release until the function has returned.
func TestCleanupWhileRunning(t *testing.T) {
	started := make(chan struct{})
	tk := New(context.Background(), nil, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	var gotOK atomic.Bool
	gotOK.Store(true)
	tk.OnDone(func(_ int, ok bool) { gotOK.Store(ok) })

	go tk.Run()
	<-started
	tk.Cleanup()

	select {
	case <-tk.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not stop after Cleanup")
	}
	if gotOK.Load() {
		t.Error("cancelled task reported a result")
	}

	tk.mu.Lock()
	released := tk.released
	tk.mu.Unlock()
	if !released {
		t.Error("deferred cleanup did not release the task")
	}
}

func TestRunner(t *testing.T) {
	r := NewRunner(3)
	defer r.Close()

	const n = 50
	var wg sync.WaitGroup
	var sum atomic.Int64
	wg.Add(n)
	for i := range n {
		tk := New(context.Background(), nil, func(context.Context) (int, error) {
			return i, nil
		})
		tk.OnDone(func(v int, ok bool) {
			if ok {
				sum.Add(int64(v))
			}
			wg.Done()
		})
		if !r.Submit(tk) {
			t.Fatal("Submit failed on open runner")
		}
	}
	wg.Wait()

	if got, want := sum.Load(), int64(n*(n-1)/2); got != want {
		t.Errorf("sum = %d, want %d", got, want)
	}
}

// TestRunnerOrder checks that a single worker starts jobs in submission
// order, and that cancelled jobs complete without running.
func TestRunnerOrder(t *testing.T) {
	r := NewRunner(1)

	var mu sync.Mutex
	var order []int
	for i := range 5 {
		tk := New(context.Background(), nil, func(context.Context) (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		})
		if i == 2 {
			tk.Cancel()
		}
		r.Submit(tk)
	}
	r.Close()

	want := []int{0, 1, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ran %v, want %v", order, want)
		}
	}

	if r.Submit(New(context.Background(), nil, func(context.Context) (int, error) { return 0, nil })) {
		t.Error("Submit succeeded on closed runner")
	}
	if p := r.Pending(); p != 0 {
		t.Errorf("%d jobs pending after Close", p)
	}
}
