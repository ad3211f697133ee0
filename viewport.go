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
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview/scroller"
	"seehuhn.de/go/pageview/task"
)

// Viewport shows a window of document pages and tracks scrolling and
// zooming.
//
// A Viewport must only be used from a single goroutine.
type Viewport struct {
	cfg    config
	log    *slog.Logger
	engine Engine

	pageCount     int
	width, height int
	tapMargin     int
	em            float64

	current          int
	scrollX, scrollY int // pending scroll, applied by the next layout pass
	slots            map[int]*Slot
	pool             *Pool
	sizes            map[int]vec.Vec2
	highlights       map[int][]rect.Rect
	history          []int

	lastFocus       vec.Vec2 // negative coordinates mean unset
	userInteracting bool
	scaling         bool
	tapDisabled     bool

	resetLayout     bool
	layoutRequested bool
	stepRequested   bool
	redraw          bool

	anim      *scroller.Animator
	runner    *task.Runner
	ownRunner bool
	box       *mailbox
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool

	pendingReleases int // page resources waiting for renders to return
	releasing       sync.WaitGroup

	onPageSelected func(page int)
	onContentTap   func(page int, rx, ry, x, y float64)
	onDocMotion    func()
}

// New returns a viewport without a document.  Call [Viewport.SetEngine]
// and [Viewport.Resize] before the first frame.
func New(opts ...Option) *Viewport {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Viewport{
		cfg:        cfg,
		log:        cfg.logger,
		em:         cfg.em,
		slots:      make(map[int]*Slot),
		pool:       NewPool(cfg.poolCapacity),
		sizes:      make(map[int]vec.Vec2),
		highlights: make(map[int][]rect.Rect),
		lastFocus:  vec.Vec2{X: -1, Y: -1},
		anim:       scroller.NewAnimator(cfg.ticksPerSecond),
		runner:     cfg.runner,
		box:        newMailbox(),
	}
	if v.log == nil {
		v.log = Logger()
	}
	if v.runner == nil {
		v.runner = task.NewRunner(cfg.workers)
		v.ownRunner = true
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v
}

// SetEngine sets the document to display.  All slots of the previous
// document are destroyed.  The current index is kept if it is valid for
// the new document.
func (v *Viewport) SetEngine(e Engine) {
	v.destroyAll()
	clear(v.sizes)
	v.engine = e
	v.pageCount = 0
	if e != nil {
		v.pageCount = e.NumPages()
	}
	v.current = clampIndex(v.current, v.pageCount)
	v.resetLayout = true
	v.requestLayout()
}

// Engine returns the current document engine.
func (v *Viewport) Engine() Engine {
	return v.engine
}

// PageCount returns the number of pages.
func (v *Viewport) PageCount() int {
	return v.pageCount
}

// SetPageCount changes the number of pages, for example after more pages
// have become available.  The current index is clamped to the new range.
func (v *Viewport) SetPageCount(n int) {
	v.pageCount = max(n, 0)
	v.current = clampIndex(v.current, v.pageCount)
	v.resetLayout = true
	v.requestLayout()
}

// CurrentIndex returns the index of the current page.
func (v *Viewport) CurrentIndex() int {
	return v.current
}

// SetCurrentIndex makes page i the current page and lays out the viewport
// from scratch.  Indices outside the document are ignored.
func (v *Viewport) SetCurrentIndex(i int) {
	if i < 0 || i >= v.pageCount {
		return
	}
	v.current = i
	v.moveTo(i)
	v.resetLayout = true
	v.requestLayout()
}

// Size returns the size of the viewport in pixels.
func (v *Viewport) Size() (width, height int) {
	return v.width, v.height
}

// Resize sets the size of the viewport.  The document is reflowed for the
// new size and all slots are rebuilt.
func (v *Viewport) Resize(width, height int) error {
	if width == v.width && height == v.height {
		return nil
	}
	v.width, v.height = width, height

	// one inch, but at least 100 pixels and at most a fifth of the width
	m := max(v.cfg.dpi, 100)
	if m > width/5 {
		m = width / 5
	}
	v.tapMargin = m

	return v.reflow()
}

// Reflow lays out a reflowable document with a new font size.
func (v *Viewport) Reflow(em float64) error {
	if em <= 0 || em == v.em {
		return nil
	}
	v.em = em
	return v.reflow()
}

func (v *Viewport) reflow() error {
	if v.engine == nil || v.width <= 0 || v.height <= 0 {
		v.Refresh(nil)
		return nil
	}
	page, err := v.engine.Reflow(float64(v.width), float64(v.height), v.em, v.current)
	if err != nil {
		v.Refresh(nil)
		return fmt.Errorf("reflow: %w", err)
	}
	v.pageCount = v.engine.NumPages()
	if c := clampIndex(page, v.pageCount); c != v.current {
		v.current = c
		v.moveTo(c)
	}
	v.Refresh(nil)
	return nil
}

// Refresh discards slots whose pages have changed.
//
// If changed is nil, or if the current page has changed, all slots and all
// pooled resources are destroyed and the viewport is laid out from scratch.
// Otherwise only the live slots for changed pages are retired, and are
// re-rendered when they are needed next.
func (v *Viewport) Refresh(changed []bool) {
	if changed == nil || (v.current < len(changed) && changed[v.current]) {
		v.resetLayout = true
		v.scrollX, v.scrollY = 0, 0
		clear(v.sizes)
		v.destroyAll()
		v.requestLayout()
		return
	}

	for i, c := range changed {
		if !c {
			continue
		}
		delete(v.sizes, i)
		if s := v.slots[i]; s != nil {
			v.retire(i)
			v.clearSlot(s)
		}
	}
	v.requestLayout()
}

// ApplyToSlots calls fn for every live slot, in page order.
func (v *Viewport) ApplyToSlots(fn func(*Slot)) {
	for _, i := range v.liveIndices() {
		fn(v.slots[i])
	}
}

// Slot returns the live slot for page i, or nil if page i is not in the
// window.
func (v *Viewport) Slot(i int) *Slot {
	return v.slots[i]
}

// Pool returns the pool of retired slots.
func (v *Viewport) Pool() *Pool {
	return v.pool
}

// OnPageSelected registers a function which is called whenever a page
// becomes the current page.
func (v *Viewport) OnPageSelected(fn func(page int)) {
	v.onPageSelected = fn
}

// OnContentTap registers a function which is called for taps inside the
// content area of a loaded page.  The arguments give the page index, the
// tap position relative to the page size, and the tap position in viewport
// coordinates.
func (v *Viewport) OnContentTap(fn func(page int, rx, ry, x, y float64)) {
	v.onContentTap = fn
}

// OnDocMotion registers a function which is called when the user drags
// the document.
func (v *Viewport) OnDocMotion(fn func()) {
	v.onDocMotion = fn
}

// SetHighlights sets the boxes to highlight on a page, in page
// coordinates.  Highlights are cleared when another page becomes the
// current page.
func (v *Viewport) SetHighlights(page int, boxes []rect.Rect) {
	if len(boxes) == 0 {
		if _, ok := v.highlights[page]; !ok {
			return
		}
		delete(v.highlights, page)
	} else {
		v.highlights[page] = slices.Clone(boxes)
	}

	if s := v.slots[page]; s != nil {
		s.config.Highlights = v.highlights[page]
		if s.handle != nil {
			s.removeHQ()
			v.startPreview(s)
			v.postSettleIfCurrent(s)
		}
	}
}

// PushHistory records the current page index.
func (v *Viewport) PushHistory() {
	v.history = append(v.history, v.current)
}

// PopHistory returns to the most recently recorded page.  It returns false
// if the history is empty.
func (v *Viewport) PopHistory() bool {
	n := len(v.history)
	if n == 0 {
		return false
	}
	i := v.history[n-1]
	v.history = v.history[:n-1]
	v.SetCurrentIndex(i)
	return true
}

// Wake returns a channel which receives a value when background work has
// completed and [Viewport.Frame] should be called.
func (v *Viewport) Wake() <-chan struct{} {
	return v.box.wake
}

// NeedsFrame reports whether [Viewport.Frame] has work to do.
func (v *Viewport) NeedsFrame() bool {
	return v.stepRequested || v.layoutRequested || v.box.len() > 0 ||
		v.pendingReleases > 0
}

// Frame advances the animation by one tick, performs a layout pass if one
// was requested, and then runs the actions which were posted for the
// viewport goroutine.  It returns true if the viewport needs to be redrawn.
func (v *Viewport) Frame() bool {
	if v.closed {
		return false
	}

	if v.stepRequested {
		v.stepRequested = false
		v.step()
	}

	if v.layoutRequested {
		v.layoutRequested = false
		err := v.runLayout()
		switch {
		case errors.Is(err, ErrResourceExhausted):
			v.log.Warn("skipping frame", "err", err)
			v.layoutRequested = true
		case err != nil:
			v.log.Warn("layout failed", "err", err)
		default:
			v.redraw = true
		}
	}

	for _, fn := range v.box.take() {
		fn()
	}

	redraw := v.redraw
	v.redraw = false
	return redraw
}

// Close cancels all renders and releases all page resources.
// The engine itself is not closed.
func (v *Viewport) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.cancel()
	v.destroyAll()
	if v.ownRunner {
		v.runner.Close()
	}
	v.releasing.Wait()
	for _, fn := range v.box.take() {
		fn()
	}
}

func (v *Viewport) requestLayout() {
	v.layoutRequested = true
}

// prod requests an animation step on the next frame.
func (v *Viewport) prod() {
	v.stepRequested = true
}

// post queues fn to run after the next layout pass.
func (v *Viewport) post(fn func()) {
	v.box.post(fn)
}

func (v *Viewport) postSettle(s *Slot) {
	v.post(func() { v.settle(s) })
}

func (v *Viewport) postUnsettle(s *Slot) {
	v.post(func() { v.unsettle(s) })
}

func (v *Viewport) postSettleIfCurrent(s *Slot) {
	if s.index == v.current && !v.userInteracting && !v.anim.Running() {
		v.postSettle(s)
	}
}

// moveTo is called after page i has become the current page.
func (v *Viewport) moveTo(i int) {
	for _, page := range slices.Sorted(maps.Keys(v.highlights)) {
		if page != i {
			v.SetHighlights(page, nil)
		}
	}
	if v.onPageSelected != nil {
		v.onPageSelected(i)
	}
}

// liveIndices returns the page indices of the live slots, in order.
func (v *Viewport) liveIndices() []int {
	return slices.Sorted(maps.Keys(v.slots))
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
