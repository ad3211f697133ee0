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

// Package scroller implements scroll and fling animations.
//
// A [Scroller] computes absolute positions over time, advancing in discrete
// ticks.  An [Animator] turns these positions into the per-tick deltas which
// a viewport adds to its pending scroll offsets.
package scroller

import (
	"math"
)

// DefaultTicksPerSecond is the tick rate used by [New] when given a
// non-positive rate.
const DefaultTicksPerSecond = 60

// Deceleration is the fling deceleration in pixels per second squared.
// The value corresponds to a friction coefficient of 0.015 under earth
// gravity, on a 160 dpi screen.
const Deceleration = 9.80665 * 39.37 * 160 * 0.015

// viscousFluidScale controls the steepness of the scroll interpolation.
const viscousFluidScale = 8.0

var viscousFluidNormalize = 1 / viscousFluid(1, 1)

type mode int

const (
	scrollMode mode = iota
	flingMode
)

// Scroller animates a position along a straight line.
// The zero value is not usable; use [New].
type Scroller struct {
	ticksPerSecond float64

	mode     mode
	finished bool

	startX, startY int
	finalX, finalY int
	currX, currY   int

	minX, maxX int
	minY, maxY int

	tick     int
	duration int // in ticks

	deltaX, deltaY float64 // scroll mode

	coeffX, coeffY float64 // fling mode, direction of travel
	velocity       float64 // fling mode, initial speed in pixels/second
	distance       float64 // fling mode, total unclamped distance
}

// New returns a finished Scroller which advances at the given tick rate.
func New(ticksPerSecond int) *Scroller {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return &Scroller{
		ticksPerSecond: float64(ticksPerSecond),
		finished:       true,
	}
}

// TicksPerSecond returns the tick rate of the scroller.
func (s *Scroller) TicksPerSecond() int {
	return int(s.ticksPerSecond)
}

// StartScroll starts moving from (x, y) by (dx, dy) over the given number
// of ticks.
func (s *Scroller) StartScroll(x, y, dx, dy, ticks int) {
	s.mode = scrollMode
	s.finished = false
	s.tick = 0
	s.duration = max(ticks, 1)
	s.startX, s.startY = x, y
	s.currX, s.currY = x, y
	s.finalX, s.finalY = x+dx, y+dy
	s.deltaX, s.deltaY = float64(dx), float64(dy)
}

// Fling starts a fling from (x, y) with initial velocity (vx, vy), given
// in pixels per second.  The motion decelerates at a constant rate.
// The final position is clamped to [minX, maxX] × [minY, maxY].
func (s *Scroller) Fling(x, y int, vx, vy float64, minX, maxX, minY, maxY int) {
	s.mode = flingMode
	s.tick = 0
	s.startX, s.startY = x, y
	s.currX, s.currY = x, y
	s.minX, s.maxX = minX, maxX
	s.minY, s.maxY = minY, maxY

	v := math.Hypot(vx, vy)
	s.velocity = v
	if v == 0 {
		s.coeffX, s.coeffY = 0, 0
		s.duration = 0
	} else {
		s.coeffX, s.coeffY = vx/v, vy/v
		seconds := v / Deceleration
		s.duration = max(int(math.Ceil(seconds*s.ticksPerSecond)), 1)
	}
	s.distance = v * v / (2 * Deceleration)

	fx := x + int(math.Round(s.distance*s.coeffX))
	fy := y + int(math.Round(s.distance*s.coeffY))
	s.finalX = clampInt(fx, minX, maxX)
	s.finalY = clampInt(fy, minY, maxY)
	s.finished = s.duration == 0
	if s.finished {
		s.currX, s.currY = s.finalX, s.finalY
	}
}

// Step advances the animation by one tick.  It returns false if the
// animation had already finished before the call.  The tick on which the
// final position is reached returns true.
func (s *Scroller) Step() bool {
	if s.finished {
		return false
	}

	s.tick++
	if s.tick >= s.duration {
		s.currX, s.currY = s.finalX, s.finalY
		s.finished = true
		return true
	}

	switch s.mode {
	case scrollMode:
		f := viscousFluid(float64(s.tick)/float64(s.duration), viscousFluidNormalize)
		s.currX = s.startX + int(math.Round(f*s.deltaX))
		s.currY = s.startY + int(math.Round(f*s.deltaY))
	case flingMode:
		t := float64(s.tick) / s.ticksPerSecond
		d := s.velocity*t - Deceleration*t*t/2
		s.currX = clampInt(s.startX+int(math.Round(d*s.coeffX)), s.minX, s.maxX)
		s.currY = clampInt(s.startY+int(math.Round(d*s.coeffY)), s.minY, s.maxY)
		if s.currX == s.finalX && s.currY == s.finalY {
			s.finished = true
		}
	}
	return true
}

// Curr returns the current position.
func (s *Scroller) Curr() (x, y int) {
	return s.currX, s.currY
}

// Final returns the position where the animation will end.
func (s *Scroller) Final() (x, y int) {
	return s.finalX, s.finalY
}

// IsFinished reports whether the animation has ended.
func (s *Scroller) IsFinished() bool {
	return s.finished
}

// ForceFinished stops the animation at the current position.
func (s *Scroller) ForceFinished() {
	s.finished = true
}

// viscousFluid maps x ∈ [0, 1] to the fraction of the distance covered.
// The curve accelerates like an exponential, then decelerates like a body
// moving through a viscous fluid.
func viscousFluid(x, normalize float64) float64 {
	x *= viscousFluidScale
	if x < 1 {
		x -= 1 - math.Exp(-x)
	} else {
		const start = 0.36787944117 // 1/e
		x = 1 - math.Exp(1-x)
		x = start + x*(1-start)
	}
	return x * normalize
}

func clampInt(x, lo, hi int) int {
	if lo > hi {
		return x
	}
	return min(max(x, lo), hi)
}
