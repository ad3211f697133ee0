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

// Package pageview presents a paginated document inside a fixed-size
// viewport.
//
// A [Viewport] shows one page at a time, the current page, together with
// its two neighbours.  The user can drag, fling, pinch-zoom and double-tap
// to zoom; the viewport decides when the neighbouring page has moved far
// enough to become the current page.  Only a window of at most three pages
// is materialised at any time.  Slots for pages which leave the window are
// kept in a [Pool] and re-targeted when a new page enters the window.
//
// Page images are produced by an [Engine] on background goroutines.
// Package seehuhn.de/go/pageview/pdfengine implements Engine for PDF files.
// Every page first gets a preview image at the size where it fits the
// viewport.  Once the viewport has settled, that is once no animation is
// running and the user is not touching the screen, the visible part of the
// current page is rendered again at the current zoom level.  Any change
// before that point cancels the high-quality render.
//
// # Threading
//
// A Viewport is confined to a single goroutine, which must call all of its
// methods.  Background renders report back through a queue which is
// processed by [Viewport.Frame].  Hosts typically call Frame from a ticker
// while [Viewport.NeedsFrame] reports true, and otherwise wait on the
// channel returned by [Viewport.Wake].
//
// # Events
//
// Input reaches the viewport through a [Router], which maps classified
// gesture events ([Down], [Drag], [Fling], [Scale], [Tap], ...) to
// viewport operations.
package pageview
