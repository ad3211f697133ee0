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
	"image"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/geom/rect"
)

// window returns the page indices which must be live for the given current
// page.
func window(current, n int) []int {
	var res []int
	for i := current - 1; i <= current+1; i++ {
		if i >= 0 && i < n {
			res = append(res, i)
		}
	}
	return res
}

func TestInitialLayout(t *testing.T) {
	e := newFakeEngine(10)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	if d := cmp.Diff([]int{0, 1}, v.liveIndices()); d != "" {
		t.Errorf("live slots (-want +got):\n%s", d)
	}

	cv := v.Slot(0)
	if want := image.Rect(0, 33, 400, 566); cv.Rect() != want {
		t.Errorf("current page at %v, want %v", cv.Rect(), want)
	}
	if want := image.Rect(420, 33, 820, 566); v.Slot(1).Rect() != want {
		t.Errorf("next page at %v, want %v", v.Slot(1).Rect(), want)
	}
	for _, i := range v.liveIndices() {
		if s := v.Slot(i); s.State() != LowRes {
			t.Errorf("page %d: state %s, want %s", i, s.State(), LowRes)
		}
	}
}

func TestWindowInvariant(t *testing.T) {
	const n = 10
	e := newFakeEngine(n)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	router := NewRouter(v)
	steps := []struct {
		name string
		do   func()
	}{
		{"jump", func() { v.SetCurrentIndex(7) }},
		{"drag forward", func() { router.Handle(Drag{DX: -300}) }},
		{"last page", func() { v.SetCurrentIndex(n - 1) }},
		{"drag back", func() { router.Handle(Drag{DX: 300}) }},
		{"first page", func() { v.SetCurrentIndex(0) }},
		{"out of range", func() { v.SetCurrentIndex(n) }},
		{"refresh", func() { v.Refresh(nil) }},
		{"no pages", func() { v.SetPageCount(0) }},
		{"pages again", func() { v.SetPageCount(n) }},
		{"no engine", func() { v.SetEngine(nil) }},
	}
	for _, step := range steps {
		step.do()
		pump(t, v, r)

		want := window(v.CurrentIndex(), v.PageCount())
		if d := cmp.Diff(want, v.liveIndices()); d != "" {
			t.Errorf("%s: live slots (-want +got):\n%s", step.name, d)
		}
		for _, pooled := range v.pool.slots {
			for i, live := range v.slots {
				if pooled == live {
					t.Errorf("%s: slot for page %d is both live and pooled", step.name, i)
				}
			}
		}
	}
}

func TestSetCurrentIndexOutOfRange(t *testing.T) {
	e := newFakeEngine(3)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	for _, i := range []int{-1, 3, 100} {
		v.SetCurrentIndex(i)
		if v.CurrentIndex() != 0 {
			t.Errorf("SetCurrentIndex(%d) changed the current page to %d", i, v.CurrentIndex())
		}
	}
}

func TestAdvanceByOne(t *testing.T) {
	const n = 6
	e := newFakeEngine(n)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	var selected []int
	v.OnPageSelected(func(page int) {
		selected = append(selected, page)
	})

	router := NewRouter(v)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 200 {
		dx := float64(rng.IntN(12001) - 6000)
		before := v.CurrentIndex()
		router.Handle(Drag{DX: dx})
		v.Frame()
		after := v.CurrentIndex()

		if after < before-1 || after > before+1 {
			t.Fatalf("step %d: drag %g moved from page %d to %d", i, dx, before, after)
		}
		if after < 0 || after >= n {
			t.Fatalf("step %d: current page %d out of range", i, after)
		}
	}
	pump(t, v, r)

	for i := 1; i < len(selected); i++ {
		if d := selected[i] - selected[i-1]; d != 1 && d != -1 {
			t.Errorf("selected pages %v: step %d to %d", selected, selected[i-1], selected[i])
		}
	}
}

func TestDragAdvance(t *testing.T) {
	e := newFakeEngine(3)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	router := NewRouter(v)
	router.Handle(Down{})
	router.Handle(Drag{DX: -300})
	v.Frame()
	if v.CurrentIndex() != 1 {
		t.Fatalf("current page %d, want 1", v.CurrentIndex())
	}
	router.Handle(Up{})
	pump(t, v, r)

	if got := v.Slot(1).Rect().Min; got != image.Pt(0, 33) {
		t.Errorf("page 1 at %v after sliding, want (0,33)", got)
	}
	if d := cmp.Diff([]int{0, 1, 2}, v.liveIndices()); d != "" {
		t.Errorf("live slots (-want +got):\n%s", d)
	}
}

func TestResetScenario(t *testing.T) {
	e := newFakeEngine(10)
	v, r := newTestViewport(t, e)
	pump(t, v, r)
	loads := e.loads

	v.SetPageCount(10)
	v.SetCurrentIndex(5)
	if err := v.runLayout(); err != nil {
		t.Fatal(err)
	}

	if d := cmp.Diff([]int{4, 5, 6}, v.liveIndices()); d != "" {
		t.Errorf("live slots (-want +got):\n%s", d)
	}

	// The two evicted slots have been reused for new pages, so that their
	// resources were released, and only one new slot was allocated.
	if e.releases != 2 {
		t.Errorf("%d resources released, want 2", e.releases)
	}
	if got := e.loads - loads; got != 3 {
		t.Errorf("%d pages loaded, want 3", got)
	}
	if v.Pool().Len() != 0 {
		t.Errorf("pool holds %v", v.Pool().Indices())
	}
	pump(t, v, r)
}

func TestResetKeepsPooledResources(t *testing.T) {
	e := newFakeEngine(10)
	v, r := newTestViewport(t, e)
	v.SetCurrentIndex(5)
	pump(t, v, r)

	// Retire the window without reusing it.
	for _, i := range v.liveIndices() {
		v.retire(i)
	}
	if d := cmp.Diff([]int{4, 5, 6}, v.Pool().Indices()); d != "" {
		t.Errorf("pool (-want +got):\n%s", d)
	}
	if e.openHandles() != 3 {
		t.Errorf("%d open handles, want 3", e.openHandles())
	}
}

func TestSetupReusesHandle(t *testing.T) {
	e := newFakeEngine(3)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	s := v.Slot(1)
	v.retire(1)
	got, err := v.getOrCreate(1)
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Error("pooled slot not reused")
	}
	if e.releases != 0 {
		t.Errorf("%d resources released, want 0", e.releases)
	}
	pump(t, v, r)
}

func TestResourceExhausted(t *testing.T) {
	e := newFakeEngine(3)
	e.exhausted = 1
	v, r := newTestViewport(t, e)

	v.Frame()
	if len(v.liveIndices()) != 0 {
		t.Errorf("live slots %v after failed layout", v.liveIndices())
	}
	if !v.NeedsFrame() {
		t.Error("no retry scheduled after resource exhaustion")
	}

	pump(t, v, r)
	if d := cmp.Diff([]int{0, 1}, v.liveIndices()); d != "" {
		t.Errorf("live slots (-want +got):\n%s", d)
	}
}

func TestUnavailablePage(t *testing.T) {
	e := newFakeEngine(3)
	e.unavailable[0] = true
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	type tap struct {
		page   int
		rx, ry float64
	}
	var taps []tap
	v.OnContentTap(func(page int, rx, ry, x, y float64) {
		taps = append(taps, tap{page, rx, ry})
	})
	router := NewRouter(v)

	s := v.Slot(0)
	if s.Loaded() || s.State() != Empty {
		t.Errorf("unavailable page: loaded=%t state=%s", s.Loaded(), s.State())
	}
	if s.Rect() != image.Rect(0, 0, 400, 600) {
		t.Errorf("unavailable page at %v", s.Rect())
	}
	router.Handle(Tap{Pos: vecPt(200, 300)})
	if len(taps) != 0 {
		t.Errorf("content tap reported for unavailable page: %v", taps)
	}

	v.SetCurrentIndex(1)
	pump(t, v, r)
	router.Handle(Tap{Pos: vecPt(200, 300)})
	if len(taps) != 1 {
		t.Fatalf("got %d content taps, want 1", len(taps))
	}
	got := taps[0]
	if got.page != 1 || !near(got.rx, 0.5, 0.01) || !near(got.ry, 0.5, 0.01) {
		t.Errorf("content tap %+v, want page 1 at (0.5, 0.5)", got)
	}
}

func TestRenderFailure(t *testing.T) {
	e := newFakeEngine(2)
	e.failRender[0] = true
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	if st := v.Slot(0).State(); st != Empty {
		t.Errorf("page 0: state %s after failed render", st)
	}
	if st := v.Slot(1).State(); st != LowRes {
		t.Errorf("page 1: state %s", st)
	}

	// Once the viewport settles again, the preview is retried.
	e.mu.Lock()
	delete(e.failRender, 0)
	e.mu.Unlock()
	router := NewRouter(v)
	router.Handle(Down{})
	router.Handle(Up{})
	pump(t, v, r)
	if st := v.Slot(0).State(); st != LowRes {
		t.Errorf("page 0: state %s after settling", st)
	}
}

func TestReleaseWaitsForRender(t *testing.T) {
	e := newFakeEngine(3)
	gate := make(chan struct{})
	e.renderGate = gate
	v, r := newTestViewport(t, e)
	v.Frame()

	// wait until both workers are inside RenderRegion
	deadline := time.Now().Add(5 * time.Second)
	for e.numRequests() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("renders did not start")
		}
		time.Sleep(time.Millisecond)
	}

	v.SetEngine(nil)
	if e.releases != 0 {
		t.Errorf("%d resources released while rendering", e.releases)
	}
	if e.openHandles() != 2 {
		t.Errorf("%d open handles, want 2", e.openHandles())
	}

	close(gate)
	pump(t, v, r)
	if e.openHandles() != 0 {
		t.Errorf("%d open handles after renders returned", e.openHandles())
	}
	if e.lateRelease != 0 {
		t.Errorf("%d resources released during a render", e.lateRelease)
	}
}

func TestRefreshChanged(t *testing.T) {
	e := newFakeEngine(4)
	v, r := newTestViewport(t, e)
	pump(t, v, r)
	loads := e.loads

	v.Refresh([]bool{false, true})
	if v.Slot(1) != nil {
		t.Error("changed page still live")
	}
	if e.releases != 1 {
		t.Errorf("%d resources released, want 1", e.releases)
	}
	pump(t, v, r)
	if e.loads-loads != 1 {
		t.Errorf("%d pages loaded, want 1", e.loads-loads)
	}
	if v.Slot(0).State() != LowRes || v.Slot(1).State() != LowRes {
		t.Error("pages not rendered after refresh")
	}
}

func TestRefreshAll(t *testing.T) {
	e := newFakeEngine(4)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	v.Refresh([]bool{true})
	if len(v.liveIndices()) != 0 || v.Pool().Len() != 0 {
		t.Error("slots survived a full refresh")
	}
	if e.openHandles() != 0 {
		t.Errorf("%d handles still open", e.openHandles())
	}
	pump(t, v, r)
	if d := cmp.Diff([]int{0, 1}, v.liveIndices()); d != "" {
		t.Errorf("live slots (-want +got):\n%s", d)
	}
}

func TestHighlights(t *testing.T) {
	e := newFakeEngine(3)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	boxes := []rect.Rect{{LLx: 10, LLy: 10, URx: 100, URy: 30}}
	v.SetHighlights(0, boxes)
	pump(t, v, r)

	req, ok := e.lastRequest(0, Preview)
	if !ok {
		t.Fatal("no preview request")
	}
	if d := cmp.Diff(boxes, req.Highlights); d != "" {
		t.Errorf("highlights (-want +got):\n%s", d)
	}
	if d := cmp.Diff(boxes, v.Slot(0).Config().Highlights); d != "" {
		t.Errorf("slot config (-want +got):\n%s", d)
	}

	// Moving to another page clears the highlights.
	v.SetCurrentIndex(1)
	pump(t, v, r)
	if len(v.Slot(0).Config().Highlights) != 0 {
		t.Error("highlights survived a page change")
	}
}

func TestHistory(t *testing.T) {
	e := newFakeEngine(10)
	v, r := newTestViewport(t, e)
	pump(t, v, r)

	v.SetCurrentIndex(2)
	v.PushHistory()
	v.SetCurrentIndex(8)
	pump(t, v, r)

	if !v.PopHistory() {
		t.Fatal("history empty")
	}
	pump(t, v, r)
	if v.CurrentIndex() != 2 {
		t.Errorf("current page %d, want 2", v.CurrentIndex())
	}
	if v.PopHistory() {
		t.Error("history not empty")
	}
}

func TestNoEngine(t *testing.T) {
	v := New(WithWorkers(1))
	defer v.Close()

	if err := v.Resize(400, 600); err != nil {
		t.Fatal(err)
	}
	v.Frame()
	if len(v.liveIndices()) != 0 {
		t.Error("slots without an engine")
	}
	if v.Frame() {
		t.Error("redraw requested without an engine")
	}
}

func TestClose(t *testing.T) {
	e := newFakeEngine(5)
	r := newTestRunner(t)
	v := New(WithRunner(r))
	v.SetEngine(e)
	if err := v.Resize(400, 600); err != nil {
		t.Fatal(err)
	}
	pump(t, v, r)

	v.Close()
	v.Close()
	if e.openHandles() != 0 {
		t.Errorf("%d handles still open after Close", e.openHandles())
	}
	if v.Frame() {
		t.Error("closed viewport requested a redraw")
	}
}

func TestVertical(t *testing.T) {
	e := newFakeEngine(3)
	v, r := newTestViewport(t, e, WithVertical())
	pump(t, v, r)

	if want := image.Rect(0, 33, 400, 566); v.Slot(0).Rect() != want {
		t.Errorf("page 0 at %v, want %v", v.Slot(0).Rect(), want)
	}
	// neighbours are separated by the gap plus both centring offsets
	if want := image.Rect(0, 566+33+Gap+33, 400, 566+33+Gap+33+533); v.Slot(1).Rect() != want {
		t.Errorf("page 1 at %v, want %v", v.Slot(1).Rect(), want)
	}

	NewRouter(v).Handle(Drag{DY: -400})
	pump(t, v, r)
	if v.CurrentIndex() != 1 {
		t.Errorf("current page %d, want 1", v.CurrentIndex())
	}
}
