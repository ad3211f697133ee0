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
	"math"
	"testing"
	"time"
)

func TestViscousFluid(t *testing.T) {
	if got := viscousFluid(0, viscousFluidNormalize); got != 0 {
		t.Errorf("f(0) = %g, want 0", got)
	}
	if got := viscousFluid(1, viscousFluidNormalize); math.Abs(got-1) > 1e-12 {
		t.Errorf("f(1) = %g, want 1", got)
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		f := viscousFluid(float64(i)/100, viscousFluidNormalize)
		if f < prev {
			t.Fatalf("not monotonic at %d: %g < %g", i, f, prev)
		}
		prev = f
	}
}

func TestStartScroll(t *testing.T) {
	s := New(60)
	s.StartScroll(10, 20, 300, -120, 24)

	ticks := 0
	for s.Step() {
		ticks++
		if ticks > 100 {
			t.Fatal("scroll did not finish")
		}
	}
	if ticks != 24 {
		t.Errorf("finished after %d ticks, want 24", ticks)
	}
	if x, y := s.Curr(); x != 310 || y != -100 {
		t.Errorf("final position (%d,%d), want (310,-100)", x, y)
	}
	if !s.IsFinished() {
		t.Error("scroller not finished")
	}
}

func TestFlingClamped(t *testing.T) {
	s := New(60)
	s.Fling(0, 0, -5000, 0, -200, 0, 0, 0)

	if x, y := s.Final(); x != -200 || y != 0 {
		t.Errorf("final position (%d,%d), want (-200,0)", x, y)
	}
	lastX := 0
	for s.Step() {
		x, y := s.Curr()
		if x > lastX {
			t.Fatalf("fling reversed direction: %d > %d", x, lastX)
		}
		if x < -200 || y != 0 {
			t.Fatalf("fling left bounds: (%d,%d)", x, y)
		}
		lastX = x
	}
	if lastX != -200 {
		t.Errorf("fling stopped at %d, want -200", lastX)
	}
}

func TestFlingUnclamped(t *testing.T) {
	s := New(60)
	const v = 1000.0
	s.Fling(0, 0, 0, v, -100000, 100000, -100000, 100000)

	want := int(math.Round(v * v / (2 * Deceleration)))
	if _, y := s.Final(); y != want {
		t.Errorf("fling distance %d, want %d", y, want)
	}
}

func TestForceFinished(t *testing.T) {
	s := New(60)
	s.StartScroll(0, 0, 100, 100, 10)
	s.Step()
	s.ForceFinished()
	if s.Step() {
		t.Error("Step returned true after ForceFinished")
	}
}

// TestAnimatorDeltas checks that the per-tick deltas add up to the total
// distance of the animation.
func TestAnimatorDeltas(t *testing.T) {
	a := NewAnimator(60)
	ticks := a.Ticks(400 * time.Millisecond)
	if ticks != 24 {
		t.Errorf("400ms = %d ticks, want 24", ticks)
	}
	a.StartScroll(-731, 17, ticks)

	if !a.Running() {
		t.Fatal("animator not running")
	}
	if dx, dy := a.Remaining(); dx != -731 || dy != 17 {
		t.Errorf("remaining (%d,%d), want (-731,17)", dx, dy)
	}

	sumX, sumY := 0, 0
	for {
		dx, dy, ok := a.Tick()
		if !ok {
			break
		}
		sumX += dx
		sumY += dy
	}
	if sumX != -731 || sumY != 17 {
		t.Errorf("total (%d,%d), want (-731,17)", sumX, sumY)
	}
	if a.Running() {
		t.Error("animator still running")
	}
}

func TestAnimatorFling(t *testing.T) {
	a := NewAnimator(60)
	a.Fling(2000, 2000, image.Rect(-50, -50, 80, 30))

	sumX, sumY := 0, 0
	for {
		dx, dy, ok := a.Tick()
		if !ok {
			break
		}
		sumX += dx
		sumY += dy
	}
	if sumX != 80 || sumY != 30 {
		t.Errorf("total (%d,%d), want (80,30)", sumX, sumY)
	}

	a.Stop()
	if _, _, ok := a.Tick(); ok {
		t.Error("Tick after Stop reported movement")
	}
}
