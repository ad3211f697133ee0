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

package pageview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"testing"
	"time"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview/task"
)

// fakeGray is the colour of all pages rendered by fakeEngine.
const fakeGray = 0xC0

type fakeHandle struct {
	page int
}

// fakeEngine is a scripted document with pages of 600×800 PDF units.
type fakeEngine struct {
	mu sync.Mutex

	pages       int
	unavailable map[int]bool
	failRender  map[int]bool
	exhausted   int           // number of LoadPage calls still to fail
	hqGate      chan struct{} // if set, high-quality renders wait for it
	renderGate  chan struct{} // if set, all renders wait for it

	loads    int
	releases int
	open     map[*fakeHandle]bool
	requests []RenderRequest

	rendering   map[*fakeHandle]int
	lateRelease int // ReleasePage calls during a render of the handle
}

func newFakeEngine(pages int) *fakeEngine {
	return &fakeEngine{
		pages:       pages,
		unavailable: make(map[int]bool),
		failRender:  make(map[int]bool),
		open:        make(map[*fakeHandle]bool),
		rendering:   make(map[*fakeHandle]int),
	}
}

func (e *fakeEngine) NumPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pages
}

func (e *fakeEngine) PageSize(pageNo int) (vec.Vec2, error) {
	if pageNo < 0 || pageNo >= e.NumPages() {
		return vec.Vec2{}, errors.New("page out of range")
	}
	return vec.Vec2{X: 600, Y: 800}, nil
}

func (e *fakeEngine) LoadPage(pageNo int) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.exhausted > 0 {
		e.exhausted--
		return nil, ErrResourceExhausted
	}
	if e.unavailable[pageNo] {
		return nil, ErrPageUnavailable
	}
	e.loads++
	h := &fakeHandle{page: pageNo}
	e.open[h] = true
	return h, nil
}

func (e *fakeEngine) ReleasePage(h Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fh, ok := h.(*fakeHandle)
	if !ok || !e.open[fh] {
		return errors.New("invalid handle")
	}
	if e.rendering[fh] > 0 {
		e.lateRelease++
	}
	delete(e.open, fh)
	e.releases++
	return nil
}

func (e *fakeEngine) RenderRegion(ctx context.Context, h Handle, req RenderRequest) (image.Image, error) {
	fh := h.(*fakeHandle)
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.rendering[fh]++
	gate := e.hqGate
	if req.Quality != HighQuality {
		gate = nil
	}
	if e.renderGate != nil {
		gate = e.renderGate
	}
	fail := e.failRender[req.Page]
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.rendering[fh]--
		e.mu.Unlock()
	}()

	if gate != nil {
		// deliberately ignores ctx, to simulate an engine which
		// completes after cancellation
		<-gate
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, errors.New("render failed")
	}

	img := image.NewGray(req.Region)
	draw.Draw(img, img.Rect, image.NewUniform(color.Gray{Y: fakeGray}), image.Point{}, draw.Src)
	return img, nil
}

func (e *fakeEngine) Reflow(width, height, em float64, oldPage int) (int, error) {
	return oldPage, nil
}

func (e *fakeEngine) openHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}

func (e *fakeEngine) numRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

func (e *fakeEngine) lastRequest(page int, q Quality) (RenderRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.requests) - 1; i >= 0; i-- {
		if r := e.requests[i]; r.Page == page && r.Quality == q {
			return r, true
		}
	}
	return RenderRequest{}, false
}

// newTestViewport returns a 400×600 viewport showing e.  Pages at minimum
// zoom are 400×533 pixels.
func newTestViewport(t *testing.T, e Engine, opts ...Option) (*Viewport, *task.Runner) {
	t.Helper()
	r := newTestRunner(t)
	v := New(append(opts, WithRunner(r))...)
	t.Cleanup(v.Close)
	v.SetEngine(e)
	if err := v.Resize(400, 600); err != nil {
		t.Fatal(err)
	}
	return v, r
}

// newTestRunner returns a runner which is closed at the end of the test.
func newTestRunner(t *testing.T) *task.Runner {
	r := task.NewRunner(2)
	t.Cleanup(r.Close)
	return r
}

func vecPt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// pump runs frames until the viewport is idle and all renders have been
// delivered.
func pump(t *testing.T, v *Viewport, r *task.Runner) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		v.Frame()
		// Jobs post their results before they stop counting as pending.
		if r.Pending() == 0 && !v.NeedsFrame() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("viewport did not become idle")
		}
		if !v.NeedsFrame() {
			select {
			case <-v.Wake():
			case <-time.After(time.Millisecond):
			}
		}
	}
}

// waitRunner waits until all submitted jobs have finished.
func waitRunner(t *testing.T, r *task.Runner) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for r.Pending() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("jobs did not finish")
		}
		time.Sleep(time.Millisecond)
	}
}
