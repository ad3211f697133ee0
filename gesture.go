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

	"seehuhn.de/go/geom/vec"
)

// Event is a classified input event.  Gesture recognition is done by the
// host; the viewport only receives the result.
type Event interface {
	isEvent()
}

// Down is sent when the first pointer touches the screen.
type Down struct{}

// Up is sent when the last pointer leaves the screen.
type Up struct{}

// Drag moves the document by (DX, DY) pixels.
type Drag struct {
	DX, DY float64
}

// Fling is sent at the end of a fast drag.  The velocity is in pixels per
// second.
type Fling struct {
	VX, VY float64
}

// ScaleBegin starts a pinch gesture.
type ScaleBegin struct{}

// Scale zooms by Factor around the point Focus, in viewport coordinates.
type Scale struct {
	Focus  vec.Vec2
	Factor float64
}

// ScaleEnd ends a pinch gesture.
type ScaleEnd struct{}

// Tap is a single tap at Pos.
type Tap struct {
	Pos vec.Vec2
}

// DoubleTap is a double tap at Pos.
type DoubleTap struct {
	Pos vec.Vec2
}

func (Down) isEvent()       {}
func (Up) isEvent()         {}
func (Drag) isEvent()       {}
func (Fling) isEvent()      {}
func (ScaleBegin) isEvent() {}
func (Scale) isEvent()      {}
func (ScaleEnd) isEvent()   {}
func (Tap) isEvent()        {}
func (DoubleTap) isEvent()  {}

// Router passes input events to a viewport.
type Router struct {
	v *Viewport
}

// NewRouter returns a router which controls v.
func NewRouter(v *Viewport) *Router {
	return &Router{v: v}
}

// Handle applies ev to the viewport.  It must be called from the goroutine
// which owns the viewport.
func (r *Router) Handle(ev Event) error {
	v := r.v
	switch ev := ev.(type) {
	case Down:
		v.tapDisabled = false
		v.userInteracting = true
		v.anim.Stop()
		v.requestLayout()

	case Up:
		v.userInteracting = false
		if cv := v.slots[v.current]; cv != nil {
			if !v.anim.Running() {
				v.slideOntoScreen(cv)
			}
			if !v.anim.Running() {
				v.postSettle(cv)
			}
		}
		v.requestLayout()

	case Drag:
		if !v.tapDisabled && v.onDocMotion != nil {
			v.onDocMotion()
		}
		if !v.scaling {
			v.scrollX = int(float64(v.scrollX) + ev.DX)
			v.scrollY = int(float64(v.scrollY) + ev.DY)
			v.requestLayout()
		}

	case Fling:
		v.fling(ev.VX, ev.VY)

	case ScaleBegin:
		v.tapDisabled = true
		v.scaling = true
		v.scrollX, v.scrollY = 0, 0
		v.lastFocus = vec.Vec2{X: -1, Y: -1}

	case Scale:
		v.scaleBy(ev.Focus, ev.Factor)

	case ScaleEnd:
		v.scaling = false

	case Tap:
		v.tap(ev.Pos)

	case DoubleTap:
		v.doubleTap(ev.Pos)

	default:
		return fmt.Errorf("unsupported event type %T", ev)
	}
	return nil
}
