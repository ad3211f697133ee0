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

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview/task"
)

// RenderState describes which images a slot currently holds.
type RenderState int

const (
	// Empty means that no image is available yet.
	Empty RenderState = iota

	// LowRes means that the preview image is available.
	LowRes

	// HighRes means that a high-quality image of the visible area is
	// available in addition to the preview.
	HighRes

	// Stale means that the high-quality image was discarded because the
	// page has been zoomed since it was rendered.  The preview is shown
	// until the next settle.
	Stale
)

func (s RenderState) String() string {
	switch s {
	case Empty:
		return "empty"
	case LowRes:
		return "low res"
	case HighRes:
		return "high res"
	case Stale:
		return "stale"
	default:
		return "invalid"
	}
}

// SlotConfig holds per-page settings which are applied when a slot is set
// up for a page.
type SlotConfig struct {
	// Highlights lists boxes to be highlighted, in page coordinates.
	Highlights []rect.Rect
}

// Slot is the laid-out representation of one page in the viewport window.
//
// Slots are owned by the viewport.  The accessor methods may be used from
// the viewport goroutine, for example inside [Viewport.ApplyToSlots].
type Slot struct {
	index    int
	handle   Handle
	pageSize vec.Vec2    // in PDF units, zero for blank pages
	base     image.Point // size at minimum zoom
	scale    float64
	rect     image.Rectangle
	state    RenderState
	config   SlotConfig

	preview    *task.Task[image.Image]
	previewImg image.Image

	hq     *task.Task[image.Image]
	hqImg  image.Image
	hqArea image.Rectangle // relative to the slot
	hqSize image.Point     // slot size the image was rendered for

	busy []<-chan struct{} // Done channels of renders using handle
}

// Index returns the page index of the slot.
func (s *Slot) Index() int {
	return s.index
}

// Loaded reports whether the engine has a page resource for the slot.
func (s *Slot) Loaded() bool {
	return s.handle != nil
}

// Scale returns the zoom level of the slot.
func (s *Slot) Scale() float64 {
	return s.scale
}

// Rect returns the placement of the slot in viewport coordinates, as set by
// the last layout pass.
func (s *Slot) Rect() image.Rectangle {
	return s.rect
}

// State returns the render state of the slot.
func (s *Slot) State() RenderState {
	return s.state
}

// Config returns the per-page configuration of the slot.
func (s *Slot) Config() SlotConfig {
	return s.config
}

// size returns the measured size of the slot at its current scale.
func (s *Slot) size() image.Point {
	return image.Point{
		X: int(float64(s.base.X) * s.scale),
		Y: int(float64(s.base.Y) * s.scale),
	}
}

// cancelPreview cancels the preview render, if any.
func (s *Slot) cancelPreview() {
	if s.preview != nil {
		s.preview.Cleanup()
		s.preview = nil
	}
}

// removeHQ cancels the high-quality render and drops its image.
func (s *Slot) removeHQ() {
	if s.hq != nil {
		s.hq.Cleanup()
		s.hq = nil
	}
	s.hqImg = nil
	s.hqArea = image.Rectangle{}
	s.hqSize = image.Point{}
	s.updateState()
}

// updateState recomputes the render state from the images held.
func (s *Slot) updateState() {
	switch {
	case s.hqImg != nil:
		s.state = HighRes
	case s.previewImg != nil:
		s.state = LowRes
	default:
		s.state = Empty
	}
}
