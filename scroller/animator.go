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

package scroller

import (
	"image"
	"time"
)

// Animator converts the absolute positions of a [Scroller] into deltas.
//
// Every animation starts at the origin; the deltas returned by [Animator.Tick]
// add up to the total distance of the animation.
type Animator struct {
	s            *Scroller
	lastX, lastY int
}

// NewAnimator returns an idle animator which advances at the given tick rate.
func NewAnimator(ticksPerSecond int) *Animator {
	return &Animator{s: New(ticksPerSecond)}
}

// Ticks converts a duration to a whole number of ticks, at least one.
func (a *Animator) Ticks(d time.Duration) int {
	n := int(d.Seconds()*float64(a.s.TicksPerSecond()) + 0.5)
	return max(n, 1)
}

// StartScroll starts moving by (dx, dy) over the given number of ticks.
func (a *Animator) StartScroll(dx, dy, ticks int) {
	a.lastX, a.lastY = 0, 0
	a.s.StartScroll(0, 0, dx, dy, ticks)
}

// Fling starts a fling with velocity (vx, vy) in pixels per second.  The
// total travel is clamped to bounds, interpreted as the inclusive ranges
// [Min.X, Max.X] and [Min.Y, Max.Y].
func (a *Animator) Fling(vx, vy float64, bounds image.Rectangle) {
	a.lastX, a.lastY = 0, 0
	a.s.Fling(0, 0, vx, vy, bounds.Min.X, bounds.Max.X, bounds.Min.Y, bounds.Max.Y)
}

// Tick advances the animation by one tick and returns the movement since
// the previous tick.  Once the animation has finished, Tick returns
// ok == false.
func (a *Animator) Tick() (dx, dy int, ok bool) {
	if !a.s.Step() {
		return 0, 0, false
	}
	x, y := a.s.Curr()
	dx, dy = x-a.lastX, y-a.lastY
	a.lastX, a.lastY = x, y
	return dx, dy, true
}

// Stop ends the animation at its current position.
func (a *Animator) Stop() {
	a.s.ForceFinished()
}

// Running reports whether an animation is in progress.
func (a *Animator) Running() bool {
	return !a.s.IsFinished()
}

// Remaining returns the distance still to be travelled.
func (a *Animator) Remaining() (dx, dy int) {
	if a.s.IsFinished() {
		return 0, 0
	}
	fx, fy := a.s.Final()
	return fx - a.lastX, fy - a.lastY
}
