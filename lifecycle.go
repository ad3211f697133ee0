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
	"image"
	"slices"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview/task"
)

// getOrCreate returns the live slot for page i.  If there is none, a slot
// is taken from the pool, or a new one is allocated, and set up for page i.
func (v *Viewport) getOrCreate(i int) (*Slot, error) {
	if s, ok := v.slots[i]; ok {
		return s, nil
	}

	s := v.pool.Get()
	if s == nil {
		s = &Slot{index: -1, scale: 1}
	}
	if err := v.setup(s, i); err != nil {
		v.clearSlot(s)
		return nil, err
	}
	v.slots[i] = s
	return s, nil
}

// setup prepares s to show page i.  If s already holds page i, the page
// resource is reused.
func (v *Viewport) setup(s *Slot, i int) error {
	s.scale = 1
	oldHighlights := s.config.Highlights
	s.config = SlotConfig{Highlights: v.highlights[i]}

	if s.index == i && s.handle != nil {
		if s.previewImg == nil || !slices.Equal(oldHighlights, s.config.Highlights) {
			v.startPreview(s)
		}
		return nil
	}

	v.clearSlot(s)
	s.index = i

	size, err := v.pageSize(i)
	var h Handle
	if err == nil {
		h, err = v.engine.LoadPage(i)
	}
	switch {
	case errors.Is(err, ErrResourceExhausted):
		return fmt.Errorf("page %d: %w", i, err)
	case errors.Is(err, ErrPageUnavailable):
		v.log.Debug("page unavailable", "page", i)
		s.base = image.Pt(v.width, v.height)
		return nil
	case err != nil:
		v.log.Warn("cannot load page", "page", i, "err", err)
		s.base = image.Pt(v.width, v.height)
		return nil
	}

	s.handle = h
	s.pageSize = size
	s.base = fitSize(size, v.width, v.height)
	v.log.Debug("slot set up", "page", i, "width", s.base.X, "height", s.base.Y)
	v.startPreview(s)
	return nil
}

// retire moves the live slot for page i into the pool.  Outstanding renders
// for the slot are cancelled, but the page resource is kept.
func (v *Viewport) retire(i int) {
	s := v.slots[i]
	delete(v.slots, i)
	s.cancelPreview()
	s.removeHQ()
	if old := v.pool.Put(s); old != nil {
		v.log.Debug("pool full, destroying slot", "page", old.index)
		v.clearSlot(old)
	}
}

// clearSlot cancels all renders of s, drops its images and releases its
// page resource.  If renders for the resource are still running, the
// release happens once they have returned.
func (v *Viewport) clearSlot(s *Slot) {
	s.cancelPreview()
	s.removeHQ()
	s.previewImg = nil
	s.pageSize = vec.Vec2{}
	s.index = -1
	if s.handle != nil && v.engine != nil {
		v.releaseWhenIdle(v.engine, s.handle, s.busy)
	}
	s.handle = nil
	s.busy = nil
	s.updateState()
}

// releaseWhenIdle releases h once all channels in busy are closed.  After
// [Viewport.Close] this blocks until then.
func (v *Viewport) releaseWhenIdle(e Engine, h Handle, busy []<-chan struct{}) {
	busy = slices.DeleteFunc(slices.Clone(busy), isClosed)
	if len(busy) == 0 || v.closed {
		for _, c := range busy {
			<-c
		}
		v.release(e, h)
		return
	}

	v.pendingReleases++
	v.releasing.Add(1)
	go func() {
		defer v.releasing.Done()
		for _, c := range busy {
			<-c
		}
		v.box.post(func() {
			v.pendingReleases--
			v.release(e, h)
		})
	}()
}

// release returns h to e.  Failures are logged and otherwise ignored.
func (v *Viewport) release(e Engine, h Handle) {
	if err := e.ReleasePage(h); err != nil {
		v.log.Warn("cannot release page resource", "err", err)
	}
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

// destroyAll destroys all live and pooled slots.
func (v *Viewport) destroyAll() {
	for _, i := range v.liveIndices() {
		v.clearSlot(v.slots[i])
		delete(v.slots, i)
	}
	for _, s := range v.pool.Drain() {
		v.clearSlot(s)
	}
}

// pageSize returns the size of page i, in PDF units.
func (v *Viewport) pageSize(i int) (vec.Vec2, error) {
	if size, ok := v.sizes[i]; ok {
		return size, nil
	}
	size, err := v.engine.PageSize(i)
	if err != nil {
		return vec.Vec2{}, err
	}
	v.sizes[i] = size
	return size, nil
}

// fitSize returns the largest size with the aspect ratio of page which fits
// into width × height.
func fitSize(page vec.Vec2, width, height int) image.Point {
	if page.X <= 0 || page.Y <= 0 {
		return image.Pt(width, height)
	}
	scale := min(float64(width)/page.X, float64(height)/page.Y)
	return image.Pt(int(page.X*scale), int(page.Y*scale))
}

// startPreview renders the complete page of s at its base size.
func (v *Viewport) startPreview(s *Slot) {
	s.cancelPreview()
	if s.handle == nil || s.base.X <= 0 || s.base.Y <= 0 {
		return
	}
	req := RenderRequest{
		Page:       s.index,
		Size:       s.base,
		Region:     image.Rectangle{Max: s.base},
		Scale:      float64(s.base.X) / s.pageSize.X,
		Quality:    Preview,
		Highlights: s.config.Highlights,
	}
	s.preview = v.render(s, req)
}

// updateHQ renders the visible part of s at its current size.  Nothing is
// done if s is shown unzoomed, or if the existing image already covers the
// visible area.
func (v *Viewport) updateHQ(s *Slot) {
	if s.handle == nil {
		return
	}

	r := s.rect
	if r.Dx() == s.base.X || r.Dy() == s.base.Y {
		s.removeHQ()
		return
	}

	area := r.Intersect(image.Rect(0, 0, v.width, v.height))
	if area.Empty() {
		return
	}
	area = area.Sub(r.Min)
	if s.hqImg != nil && area == s.hqArea && r.Size() == s.hqSize {
		return
	}

	if s.hq != nil {
		s.hq.Cleanup()
		s.hq = nil
	}
	req := RenderRequest{
		Page:       s.index,
		Size:       r.Size(),
		Region:     area,
		Scale:      float64(r.Dx()) / s.pageSize.X,
		Quality:    HighQuality,
		Highlights: s.config.Highlights,
	}
	s.hq = v.render(s, req)
}

// render submits a render task for s.  The result is delivered to the
// viewport goroutine through the mailbox.
func (v *Viewport) render(s *Slot, req RenderRequest) *task.Task[image.Image] {
	e, h := v.engine, s.handle
	t := task.New(v.ctx, v.log, func(ctx context.Context) (image.Image, error) {
		return e.RenderRegion(ctx, h, req)
	})
	s.busy = append(slices.DeleteFunc(s.busy, isClosed), t.Done())
	t.OnDone(func(img image.Image, ok bool) {
		v.box.post(func() {
			v.renderDone(s, t, req, img, ok)
		})
	})
	v.log.Debug("render", "page", req.Page, "quality", req.Quality, "region", req.Region)
	if !v.runner.Submit(t) {
		t.Cleanup()
	}
	return t
}

// renderDone applies the result of a render to s.  Results of cancelled
// tasks, of superseded tasks, and for slots which have left the window are
// discarded.
func (v *Viewport) renderDone(s *Slot, t *task.Task[image.Image], req RenderRequest, img image.Image, ok bool) {
	var owner **task.Task[image.Image]
	switch req.Quality {
	case Preview:
		owner = &s.preview
	case HighQuality:
		owner = &s.hq
	}
	if t.Cancelled() || *owner != t || s.index != req.Page || v.slots[req.Page] != s {
		v.log.Debug("discarding render", "page", req.Page, "quality", req.Quality)
		return
	}
	*owner = nil
	t.Cleanup()
	if !ok || img == nil {
		return
	}

	switch req.Quality {
	case Preview:
		s.previewImg = img
		if s.state != Stale {
			s.updateState()
		}
	case HighQuality:
		if req.Size != s.rect.Size() {
			// zoomed while rendering
			s.state = Stale
			return
		}
		s.hqImg = img
		s.hqArea = req.Region
		s.hqSize = req.Size
		s.updateState()
	}
	v.redraw = true
}

// settle is called once the layout has become stable.  The current page is
// rendered in high quality and all other pages are reset to minimum zoom.
func (v *Viewport) settle(s *Slot) {
	if v.slots[s.index] != s {
		return
	}
	if s.previewImg == nil && s.preview == nil {
		// an earlier preview render failed
		v.startPreview(s)
	}
	v.updateHQ(s)

	for i, o := range v.slots {
		if i != v.current && o.scale != 1 {
			o.scale = 1
			v.requestLayout()
		}
	}
}

// unsettle is called when the settled layout is no longer valid.  The
// high-quality image of s is discarded.
func (v *Viewport) unsettle(s *Slot) {
	s.removeHQ()
	v.redraw = true
}
