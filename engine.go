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
	"image"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

var (
	// ErrPageUnavailable is returned by an [Engine] for a page which
	// cannot be shown yet, for example because it has not been downloaded.
	// The viewport shows such pages blank.
	ErrPageUnavailable = errors.New("page unavailable")

	// ErrResourceExhausted is returned by an [Engine] when it has run out
	// of memory or other resources.  The viewport skips the current frame
	// and retries on the next one.
	ErrResourceExhausted = errors.New("resources exhausted")
)

// Handle refers to a loaded page, as returned by [Engine.LoadPage].
type Handle any

// Quality distinguishes the two kinds of render requests.
type Quality int

const (
	// Preview renders the whole page at the size where it fits the
	// viewport.
	Preview Quality = iota

	// HighQuality renders the visible part of a zoomed page at full
	// resolution.
	HighQuality
)

func (q Quality) String() string {
	switch q {
	case Preview:
		return "preview"
	case HighQuality:
		return "high quality"
	default:
		return "invalid"
	}
}

// RenderRequest describes a part of a page to be rendered.
type RenderRequest struct {
	// Page is the page index.
	Page int

	// Size is the size in pixels of the complete page at the requested
	// resolution.
	Size image.Point

	// Region is the part of the page to render, in the pixel coordinates
	// given by Size, with (0, 0) at the top left corner.  The returned image
	// must have bounds Region.
	Region image.Rectangle

	// Scale is the number of pixels per PDF unit.
	Scale float64

	// Quality is the kind of request.
	Quality Quality

	// Highlights lists boxes to be highlighted, in page coordinates.
	Highlights []rect.Rect
}

// Engine loads and renders document pages.
//
// NumPages, PageSize, LoadPage, ReleasePage and Reflow are called from the
// viewport goroutine.  RenderRegion is called from worker goroutines and
// may run concurrently with the other methods.  ReleasePage is never called
// for a handle while a RenderRegion call for that handle is still running,
// even if the render has been cancelled.  RenderRegion should poll ctx and
// return ctx.Err() promptly once it is cancelled.
type Engine interface {
	// NumPages returns the number of pages in the document.
	NumPages() int

	// PageSize returns the size of a page, in PDF units.
	PageSize(pageNo int) (vec.Vec2, error)

	// LoadPage returns a handle for rendering the given page.
	LoadPage(pageNo int) (Handle, error)

	// ReleasePage frees the resources associated with a handle.
	ReleasePage(h Handle) error

	// RenderRegion renders a part of the page.
	RenderRegion(ctx context.Context, h Handle, req RenderRequest) (image.Image, error)

	// Reflow lays out the document for a new viewport size and font size,
	// and returns the index of the page which now contains the start of
	// oldPage.  Fixed-layout documents return oldPage.
	Reflow(width, height, em float64, oldPage int) (int, error)
}
