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
	"fmt"
	"image"
)

// runLayout performs a layout pass.  A panic inside the engine is converted
// into an error.
func (v *Viewport) runLayout() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout: %v", r)
		}
	}()
	return v.layout()
}

// layout positions the current page and its neighbours.
//
// Pending scroll offsets are applied to the current page, the current page
// changes if it has moved far enough off centre, and slots outside the
// window of the current page and its two neighbours are retired.
func (v *Viewport) layout() error {
	if v.engine == nil || v.pageCount == 0 {
		v.resetLayout = false
		for _, i := range v.liveIndices() {
			v.retire(i)
		}
		return nil
	}
	if v.width <= 0 || v.height <= 0 {
		return nil
	}

	if !v.resetLayout {
		if cv := v.slots[v.current]; cv != nil {
			v.advanceIfNeeded(cv)
			v.retreatIfNeeded(cv)
		}
		for _, i := range v.liveIndices() {
			if i < v.current-1 || i > v.current+1 {
				v.retire(i)
			}
		}
	} else {
		v.resetLayout = false
		v.scrollX, v.scrollY = 0, 0
		for _, i := range v.liveIndices() {
			v.retire(i)
		}
		v.prod()
	}

	_, present := v.slots[v.current]
	cv, err := v.getOrCreate(v.current)
	if err != nil {
		return err
	}
	cvOffset := v.subScreenOffset(cv)

	// New slots are placed at the centring offset, existing ones move by
	// the pending scroll amount.
	pos := cvOffset
	if present {
		pos = cv.rect.Min.Add(image.Pt(v.scrollX, v.scrollY))
	}
	v.scrollX, v.scrollY = 0, 0
	r := image.Rectangle{Min: pos, Max: pos.Add(cv.size())}

	switch {
	case !v.userInteracting && !v.anim.Running():
		r = r.Add(correction(v.scrollBounds(r)))
	case !v.cfg.vertical && r.Dy() <= v.height:
		// a page which fits vertically stays centred while dragging
		r = r.Add(image.Pt(0, correction(v.scrollBounds(r)).Y))
	case v.cfg.vertical && r.Dx() <= v.width:
		r = r.Add(image.Pt(correction(v.scrollBounds(r)).X, 0))
	}
	v.place(cv, r)

	if v.current > 0 {
		pv, err := v.getOrCreate(v.current - 1)
		if err != nil {
			return err
		}
		off := v.subScreenOffset(pv)
		size := pv.size()
		var pos image.Point
		if !v.cfg.vertical {
			gap := off.X + Gap + cvOffset.X
			pos = image.Pt(r.Min.X-size.X-gap, (r.Min.Y+r.Max.Y-size.Y)/2)
		} else {
			gap := off.Y + Gap + cvOffset.Y
			pos = image.Pt((r.Min.X+r.Max.X-size.X)/2, r.Min.Y-size.Y-gap)
		}
		v.place(pv, image.Rectangle{Min: pos, Max: pos.Add(size)})
	}

	if v.current+1 < v.pageCount {
		nv, err := v.getOrCreate(v.current + 1)
		if err != nil {
			return err
		}
		off := v.subScreenOffset(nv)
		size := nv.size()
		var pos image.Point
		if !v.cfg.vertical {
			gap := cvOffset.X + Gap + off.X
			pos = image.Pt(r.Max.X+gap, (r.Min.Y+r.Max.Y-size.Y)/2)
		} else {
			gap := cvOffset.Y + Gap + off.Y
			pos = image.Pt((r.Min.X+r.Max.X-size.X)/2, r.Max.Y+gap)
		}
		v.place(nv, image.Rectangle{Min: pos, Max: pos.Add(size)})
	}

	return nil
}

// advanceIfNeeded makes the next page current, once the trailing edge of
// the current page has moved past the centre of the viewport.
func (v *Viewport) advanceIfNeeded(cv *Slot) {
	off := v.subScreenOffset(cv)
	size := cv.size()

	// The slot rectangle may be out of date with the current scale, so the
	// trailing edge is computed from the measured size.
	var move bool
	if !v.cfg.vertical {
		move = cv.rect.Min.X+size.X+off.X+Gap/2+v.scrollX < v.width/2
	} else {
		move = cv.rect.Min.Y+size.Y+off.Y+Gap/2+v.scrollY < v.height/2
	}
	if move && v.current+1 < v.pageCount {
		v.moveCurrent(cv, v.current+1)
	}
}

// retreatIfNeeded makes the previous page current, once the leading edge
// of the current page has moved past the centre of the viewport.
func (v *Viewport) retreatIfNeeded(cv *Slot) {
	off := v.subScreenOffset(cv)

	var move bool
	if !v.cfg.vertical {
		move = cv.rect.Min.X-off.X-Gap/2+v.scrollX >= v.width/2
	} else {
		move = cv.rect.Min.Y-off.Y-Gap/2+v.scrollY >= v.height/2
	}
	if move && v.current > 0 {
		v.moveCurrent(cv, v.current-1)
	}
}

// moveCurrent changes the current page to the neighbour i of the page
// shown by cv.
func (v *Viewport) moveCurrent(cv *Slot, i int) {
	v.postUnsettle(cv)
	// a step is needed to detect the end of the animation, where the new
	// current page gets its high-quality image
	v.prod()
	v.current = i
	v.moveTo(i)
}

// place moves s to r.  A high-quality image rendered for a different size
// is discarded.
func (v *Viewport) place(s *Slot, r image.Rectangle) {
	s.rect = r
	if s.hqImg != nil && s.hqSize != r.Size() {
		s.removeHQ()
		s.state = Stale
	}
}

// subScreenOffset returns the offset which centres s in each direction in
// which s is smaller than the viewport.
func (v *Viewport) subScreenOffset(s *Slot) image.Point {
	size := s.size()
	return image.Point{
		X: max((v.width-size.X)/2, 0),
		Y: max((v.height-size.Y)/2, 0),
	}
}

// scrollBounds returns the range of translations which keep a page at r
// covering the viewport.  In directions where the page is smaller than the
// viewport, the range shrinks to the translation which centres the page.
// Min and Max are both inclusive.
func (v *Viewport) scrollBounds(r image.Rectangle) image.Rectangle {
	xMin := v.width - r.Max.X
	xMax := -r.Min.X
	yMin := v.height - r.Max.Y
	yMax := -r.Min.Y

	if xMin > xMax {
		xMin = (xMin + xMax) / 2
		xMax = xMin
	}
	if yMin > yMax {
		yMin = (yMin + yMax) / 2
		yMax = yMin
	}
	return image.Rectangle{Min: image.Pt(xMin, yMin), Max: image.Pt(xMax, yMax)}
}

// slotBounds returns the scroll bounds of s, taking pending scroll offsets
// into account.
func (v *Viewport) slotBounds(s *Slot) image.Rectangle {
	pos := s.rect.Min.Add(image.Pt(v.scrollX, v.scrollY))
	return v.scrollBounds(image.Rectangle{Min: pos, Max: pos.Add(s.size())})
}

// correction returns the smallest translation which moves the origin into
// the bounds b.
func correction(b image.Rectangle) image.Point {
	return image.Point{
		X: min(max(0, b.Min.X), b.Max.X),
		Y: min(max(0, b.Min.Y), b.Max.Y),
	}
}
