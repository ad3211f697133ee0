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
	"math"

	"seehuhn.de/go/geom/vec"
)

// Direction classifies the direction of a fling.
type Direction int

// These are the possible directions of travel.
const (
	Diagonal Direction = iota
	Left
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Diagonal:
		return "diagonal"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "invalid"
	}
}

// DirectionOfTravel classifies the velocity (vx, vy).  A velocity counts as
// horizontal if its horizontal component is more than twice as large as the
// vertical one, and vice versa.  Everything else is Diagonal.
func DirectionOfTravel(vx, vy float64) Direction {
	switch {
	case math.Abs(vx) > 2*math.Abs(vy):
		if vx > 0 {
			return Right
		}
		return Left
	case math.Abs(vy) > 2*math.Abs(vx):
		if vy > 0 {
			return Down
		}
		return Up
	default:
		return Diagonal
	}
}

// withinBoundsInDirectionOfTravel reports whether the origin lies inside
// the scroll bounds b, as far as the direction of travel is concerned.
func withinBoundsInDirectionOfTravel(b image.Rectangle, vx, vy float64) bool {
	switch DirectionOfTravel(vx, vy) {
	case Left:
		return b.Min.X <= 0
	case Right:
		return b.Max.X >= 0
	case Up:
		return b.Min.Y <= 0
	case Down:
		return b.Max.Y >= 0
	default:
		return image.Point{}.In(b)
	}
}

// SmartAdvanceAmount returns the distance to scroll for a page turn within
// a page, given the screen extent and the remaining extent of the page.
//
// The basic step is 90% of the screen.  The step is then adjusted, so that
// the remaining extent is covered by steps of nearly equal length.  The
// result never exceeds remaining, and is zero if remaining is not positive.
func SmartAdvanceAmount(screen, remaining int) int {
	if remaining <= 0 {
		return 0
	}
	advance := int(float64(screen)*0.9 + 0.5)
	if advance <= 0 {
		return max(min(screen, remaining), 0)
	}
	leftOver := remaining % advance
	steps := remaining / advance
	if leftOver != 0 {
		// With steps == 0 the per-step amounts are infinite and no
		// adjustment is made.
		perStep := float64(leftOver) / float64(steps)
		if perStep <= float64(screen)*0.05 {
			advance += int(perStep + 0.5)
		} else {
			overshoot := advance - leftOver
			perStep = float64(overshoot) / float64(steps)
			if perStep <= float64(screen)*0.1 {
				advance -= int(perStep + 0.5)
			}
		}
	}
	return min(advance, remaining)
}

// step advances the scroll animation by one tick.  Once the animation has
// finished and the user is not interacting, the current page is settled.
func (v *Viewport) step() {
	if dx, dy, ok := v.anim.Tick(); ok {
		v.scrollX += dx
		v.scrollY += dy
		v.requestLayout()
		v.prod()
		return
	}
	if !v.userInteracting {
		if cv := v.slots[v.current]; cv != nil {
			v.postSettle(cv)
		}
	}
}

// fling handles a fling gesture with velocity (vx, vy).
func (v *Viewport) fling(vx, vy float64) {
	if v.scaling {
		return
	}
	cv := v.slots[v.current]
	if cv == nil {
		return
	}

	b := v.slotBounds(cv)
	var neighbour *Slot
	switch DirectionOfTravel(vx, vy) {
	case Left:
		if !v.cfg.vertical && b.Min.X >= 0 {
			neighbour = v.slots[v.current+1]
		}
	case Right:
		if !v.cfg.vertical && b.Max.X <= 0 {
			neighbour = v.slots[v.current-1]
		}
	case Up:
		if v.cfg.vertical && b.Min.Y >= 0 {
			neighbour = v.slots[v.current+1]
		}
	case Down:
		if v.cfg.vertical && b.Max.Y <= 0 {
			neighbour = v.slots[v.current-1]
		}
	}
	if neighbour != nil {
		v.slideOntoScreen(neighbour)
		return
	}

	expanded := b.Inset(-FlingMargin)
	if withinBoundsInDirectionOfTravel(b, vx, vy) && (image.Point{}).In(expanded) {
		v.anim.Fling(vx, vy, b)
		v.prod()
	}
}

// slideOntoScreen starts an animation which moves s into a position where
// it covers the viewport.
func (v *Viewport) slideOntoScreen(s *Slot) {
	corr := correction(v.slotBounds(s))
	if corr == (image.Point{}) {
		return
	}
	v.anim.StartScroll(corr.X, corr.Y, v.anim.Ticks(ScrollDuration))
	v.prod()
}

// clampScale limits a zoom level to [MinScale, MaxScale].
func clampScale(scale float64) float64 {
	return min(max(scale, MinScale), MaxScale)
}

// scaleBy zooms the current page by factor, keeping the point focus fixed
// on screen.  Movement of the focus point between consecutive calls during
// one pinch gesture scrolls the page.
func (v *Viewport) scaleBy(focus vec.Vec2, factor float64) {
	cv := v.slots[v.current]
	if cv == nil {
		return
	}

	prev := cv.scale
	scale := clampScale(prev * factor)
	f := scale / prev

	// focus point relative to the page
	vfx := int(focus.X) - (cv.rect.Min.X + v.scrollX)
	vfy := int(focus.Y) - (cv.rect.Min.Y + v.scrollY)
	v.scrollX = int(float64(v.scrollX) + float64(vfx) - float64(vfx)*f)
	v.scrollY = int(float64(v.scrollY) + float64(vfy) - float64(vfy)*f)

	if v.lastFocus.X >= 0 {
		v.scrollX = int(float64(v.scrollX) + focus.X - v.lastFocus.X)
	}
	if v.lastFocus.Y >= 0 {
		v.scrollY = int(float64(v.scrollY) + focus.Y - v.lastFocus.Y)
	}
	v.lastFocus = focus

	cv.scale = scale
	v.requestLayout()
}

// nextZoom returns the zoom level which a double tap switches to.
func nextZoom(scale float64) float64 {
	switch {
	case scale == 1:
		return 2
	case scale > 2:
		return 1
	default:
		return 4
	}
}

// doubleTap cycles the zoom level of the current page.  Taps outside the
// page are ignored.
func (v *Viewport) doubleTap(p vec.Vec2) {
	if v.tapDisabled {
		return
	}
	cv := v.slots[v.current]
	if cv == nil {
		return
	}
	doc := p.Sub(vec.Vec2{X: float64(cv.rect.Min.X), Y: float64(cv.rect.Min.Y)})
	if doc.X < 0 || doc.Y < 0 {
		return
	}
	v.zoomTo(cv, nextZoom(cv.scale), doc)
}

// zoomTo sets the zoom level of the current page cv.  The point doc, given
// relative to the page, stays fixed on screen.  Once the new layout is in
// place, a high-quality image is requested for the page.
func (v *Viewport) zoomTo(cv *Slot, scale float64, doc vec.Vec2) {
	f := scale / cv.scale
	cv.scale = scale
	if doc.X != 0 || doc.Y != 0 {
		v.scrollX = int(float64(v.scrollX) + doc.X - doc.X*f)
		v.scrollY = int(float64(v.scrollY) + doc.Y - doc.Y*f)
	}
	v.requestLayout()

	v.post(func() {
		if v.slots[v.current] == cv {
			v.updateHQ(cv)
		}
	})
}

// MoveNext slides the next page onto the screen.
func (v *Viewport) MoveNext() {
	if s := v.slots[v.current+1]; s != nil {
		v.slideOntoScreen(s)
	}
}

// MovePrevious slides the previous page onto the screen.
func (v *Viewport) MovePrevious() {
	if s := v.slots[v.current-1]; s != nil {
		v.slideOntoScreen(s)
	}
}

// ScrollHorizontallyBy starts an animated horizontal scroll by n pixels.
func (v *Viewport) ScrollHorizontallyBy(n int) {
	v.anim.StartScroll(n, 0, v.anim.Ticks(ScrollDuration))
	v.prod()
}

// ScrollToLeftSide scrolls a zoomed page so that its left edge is shown.
func (v *Viewport) ScrollToLeftSide() {
	if cv := v.slots[v.current]; cv != nil {
		v.ScrollHorizontallyBy(cv.rect.Dx() - v.width)
	}
}

// ScrollToRightSide scrolls a zoomed page so that its right edge is shown.
func (v *Viewport) ScrollToRightSide() {
	if cv := v.slots[v.current]; cv != nil {
		v.ScrollHorizontallyBy(-(cv.rect.Dx() - v.width))
	}
}

// SmartMoveForwards turns the page forward by one screen.  Within a tall
// page this scrolls down; at the bottom of the page it moves right, and
// at the bottom right corner it moves to the top left of the next page.
func (v *Viewport) SmartMoveForwards() {
	cv := v.slots[v.current]
	if cv == nil {
		return
	}
	sw, sh := v.width, v.height
	remX, remY := v.anim.Remaining()

	top := -(cv.rect.Min.Y + v.scrollY + remY)
	right := sw - (cv.rect.Min.X + v.scrollX + remX)
	bottom := sh + top
	docW, docH := cv.rect.Dx(), cv.rect.Dy()

	var xOff, yOff int
	switch {
	case bottom < docH:
		yOff = SmartAdvanceAmount(sh, docH-bottom)
	case right+sw <= docW:
		xOff = sw
		yOff = sh - bottom
	default:
		nv := v.slots[v.current+1]
		if nv == nil {
			return
		}
		nextTop := -(nv.rect.Min.Y + v.scrollY + remY)
		nextLeft := -(nv.rect.Min.X + v.scrollX + remX)
		nw, nh := nv.rect.Dx(), nv.rect.Dy()
		if nh < sh {
			yOff = (nh - sh) >> 1
		}
		if nw < sw {
			xOff = (nw - sw) >> 1
		} else {
			xOff = right % sw
			if xOff+sw > nw {
				xOff = nw - sw
			}
		}
		xOff -= nextLeft
		yOff -= nextTop
	}

	v.anim.StartScroll(remX-xOff, remY-yOff, v.anim.Ticks(ScrollDuration))
	v.prod()
}

// SmartMoveBackwards turns the page backward by one screen.  It reverses
// the movement of [Viewport.SmartMoveForwards].
func (v *Viewport) SmartMoveBackwards() {
	cv := v.slots[v.current]
	if cv == nil {
		return
	}
	sw, sh := v.width, v.height
	remX, remY := v.anim.Remaining()

	left := -(cv.rect.Min.X + v.scrollX + remX)
	top := -(cv.rect.Min.Y + v.scrollY + remY)
	docH := cv.rect.Dy()

	var xOff, yOff int
	switch {
	case top > 0:
		yOff = -SmartAdvanceAmount(sh, top)
	case left >= sw:
		xOff = -sw
		yOff = docH - sh + top
	default:
		pv := v.slots[v.current-1]
		if pv == nil {
			return
		}
		pw, ph := pv.rect.Dx(), pv.rect.Dy()
		if ph < sh {
			yOff = (ph - sh) >> 1
		}
		prevLeft := -(pv.rect.Min.X + v.scrollX)
		prevTop := -(pv.rect.Min.Y + v.scrollY)
		if pw < sw {
			xOff = (pw - sw) >> 1
		} else {
			if left > 0 {
				xOff = left % sw
			}
			if xOff+sw > pw {
				xOff = pw - sw
			}
			for xOff+2*sw < pw {
				xOff += sw
			}
		}
		xOff -= prevLeft
		yOff -= prevTop - ph + sh
	}

	v.anim.StartScroll(remX-xOff, remY-yOff, v.anim.Ticks(ScrollDuration))
	v.prod()
}

// tap handles a single tap.  Taps near the edges of the viewport turn the
// page, other taps are reported to the host.
func (v *Viewport) tap(p vec.Vec2) {
	if v.tapDisabled {
		return
	}
	m := float64(v.tapMargin)
	switch {
	case p.X < m:
		v.SmartMoveBackwards()
	case p.X > float64(v.width)-m:
		v.SmartMoveForwards()
	case p.Y < m:
		v.SmartMoveBackwards()
	case p.Y > float64(v.height)-m:
		v.SmartMoveForwards()
	default:
		v.contentTap(p)
	}
}

// contentTap reports a tap inside the content area to the host.  Nothing
// is reported for pages which are not loaded.
func (v *Viewport) contentTap(p vec.Vec2) {
	cv := v.slots[v.current]
	if cv == nil || cv.handle == nil || v.onContentTap == nil {
		return
	}
	r := cv.rect
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	rx := (p.X - float64(r.Min.X)) / float64(r.Dx())
	ry := (p.Y - float64(r.Min.Y)) / float64(r.Dy())
	v.onContentTap(cv.index, rx, ry, p.X, p.Y)
}
