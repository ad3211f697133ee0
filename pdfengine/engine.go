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

// Package pdfengine implements [pageview.Engine] for PDF files.
//
// Several files can be shown as one document.  A file which does not
// exist yet contributes a single placeholder page, which reports
// [pageview.ErrPageUnavailable] until the file appears.
//
// Page content is reduced to a gray-level display list of filled and
// stroked paths.  Text is shown as bars ("greeked"), images and shadings
// are skipped.
package pdfengine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"log/slog"
	"math"
	"sync"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"seehuhn.de/go/pageview"
	"seehuhn.de/go/pageview/raster"
)

// Gray levels used for decorations.
const (
	annotGray     = 0x80
	highlightGray = 0xD8
)

// previewFlatness is the curve tolerance for preview renders, in pixels.
const previewFlatness = 1

// letter is the media box used when a page does not specify one.
var letter = rect.Rect{URx: 612, URy: 792}

// Engine shows a sequence of PDF files as one document.
//
// All methods are safe for concurrent use.
type Engine struct {
	log *slog.Logger

	mu      sync.Mutex
	sources []*source
	pages   []pageRef
	info    map[int]*pageInfo
	open    map[*handle]bool
	closed  bool
}

// source is one input file.  r is nil while the file is missing.
type source struct {
	name string
	r    *pdf.Reader
}

type pageRef struct {
	src    int
	pageNo int // page number within the file
}

// pageInfo holds the geometry of a page.
type pageInfo struct {
	box    rect.Rect // crop box, in default user space
	rotate int       // 0, 90, 180 or 270
	annots []rect.Rect
}

// size returns the displayed size of the page, in PDF units.
func (p *pageInfo) size() vec.Vec2 {
	w, h := p.box.URx-p.box.LLx, p.box.URy-p.box.LLy
	if p.rotate%180 != 0 {
		w, h = h, w
	}
	return vec.Vec2{X: w, Y: h}
}

type handle struct {
	page int
	info *pageInfo
	ops  []paintOp
}

// Open opens the named PDF files.  Files which do not exist are shown as a
// single unavailable page each.
func Open(names ...string) (*Engine, error) {
	e := &Engine{
		log:  pageview.Logger().With("component", "pdfengine"),
		info: make(map[int]*pageInfo),
		open: make(map[*handle]bool),
	}

	for i, name := range names {
		src := &source{name: name}
		r, err := pdf.Open(name, nil)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			e.log.Info("file not available", "file", name)
			e.sources = append(e.sources, src)
			e.pages = append(e.pages, pageRef{src: i})
			continue
		case err != nil:
			e.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		src.r = r
		e.sources = append(e.sources, src)

		n, err := pagetree.NumPages(r)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for j := range n {
			e.pages = append(e.pages, pageRef{src: i, pageNo: j})
		}
	}
	return e, nil
}

// Close closes all open files.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for _, src := range e.sources {
		if src.r != nil {
			errs = append(errs, src.r.Close())
			src.r = nil
		}
	}
	return errors.Join(errs...)
}

// NumPages implements [pageview.Engine].
func (e *Engine) NumPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// PageSize implements [pageview.Engine].
func (e *Engine) PageSize(pageNo int) (vec.Vec2, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := e.getInfo(pageNo)
	if err != nil {
		return vec.Vec2{}, err
	}
	return info.size(), nil
}

// LoadPage implements [pageview.Engine].  The content stream is parsed
// into a display list; a damaged stream gives a partial page.
func (e *Engine) LoadPage(pageNo int) (pageview.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := e.getInfo(pageNo)
	if err != nil {
		return nil, err
	}

	ref := e.pages[pageNo]
	r := e.sources[ref.src].r
	_, dict, err := pagetree.GetPage(r, ref.pageNo)
	if err != nil {
		return nil, err
	}

	h := &handle{page: pageNo, info: info}
	if dict["Contents"] != nil {
		content, err := pagetree.ContentStream(r, dict)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNo, err)
		}
		h.ops, err = readContent(content)
		if err != nil {
			e.log.Warn("damaged content stream",
				"page", pageNo,
				"ops", len(h.ops),
				"error", err)
		}
	}
	e.open[h] = true

	e.log.Debug("page loaded", "page", pageNo, "ops", len(h.ops))
	return h, nil
}

// ReleasePage implements [pageview.Engine].
func (e *Engine) ReleasePage(h pageview.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ph, ok := h.(*handle)
	if !ok || !e.open[ph] {
		return errors.New("invalid page handle")
	}
	delete(e.open, ph)
	return nil
}

// Reflow implements [pageview.Engine].  PDF files have a fixed layout.
func (e *Engine) Reflow(width, height, em float64, oldPage int) (int, error) {
	return oldPage, nil
}

// RenderRegion implements [pageview.Engine].
//
// The page is drawn in gray on a white background.  Annotations are shown
// as thin frames and highlights as rounded boxes behind the page content.
func (e *Engine) RenderRegion(ctx context.Context, h pageview.Handle, req pageview.RenderRequest) (image.Image, error) {
	ph, ok := h.(*handle)
	if !ok {
		return nil, errors.New("invalid page handle")
	}
	if req.Scale <= 0 || req.Region.Empty() {
		return nil, fmt.Errorf("invalid render request for page %d", req.Page)
	}

	img := image.NewGray(req.Region)
	draw.Draw(img, img.Rect, image.White, image.Point{}, draw.Src)

	ras := raster.NewRasteriser(rect.Rect{
		URx: float64(req.Region.Dx()),
		URy: float64(req.Region.Dy()),
	})
	if req.Quality == pageview.Preview {
		ras.Flatness = previewFlatness
	}
	base := pageMatrix(ph.info, req.Scale, req.Region.Min)

	// one device pixel, in page units
	hair := 1 / req.Scale

	ras.CTM = base
	for _, hl := range req.Highlights {
		p := raster.RoundedRect(hl, 2*hair)
		err := ras.Fill(ctx, p, raster.NonZero, raster.Paint(img, highlightGray))
		if err != nil {
			return nil, err
		}
	}

	for i := range ph.ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op := &ph.ops[i]
		ras.CTM = op.ctm.Mul(base)
		if math.Abs(ras.CTM[0]*ras.CTM[3]-ras.CTM[1]*ras.CTM[2]) < 1e-12 {
			continue
		}
		paint := raster.Paint(img, op.gray)
		var err error
		if op.kind == stroke {
			err = ras.Stroke(ctx, op.path, op.width, paint)
		} else {
			err = ras.Fill(ctx, op.path, op.rule(), paint)
		}
		if err != nil {
			return nil, err
		}
	}

	ras.CTM = base
	for _, a := range ph.info.annots {
		p := raster.Frame(a, hair)
		err := ras.Fill(ctx, p, raster.EvenOdd, raster.Paint(img, annotGray))
		if err != nil {
			return nil, err
		}
	}

	return img, nil
}

// getInfo returns the geometry of a page, reading it from the file on
// first use.  Missing files are retried on every call.
// The caller must hold e.mu.
func (e *Engine) getInfo(pageNo int) (*pageInfo, error) {
	if e.closed {
		return nil, errors.New("engine closed")
	}
	if pageNo < 0 || pageNo >= len(e.pages) {
		return nil, fmt.Errorf("page %d out of range", pageNo)
	}
	if info, ok := e.info[pageNo]; ok {
		return info, nil
	}

	ref := e.pages[pageNo]
	src := e.sources[ref.src]
	if src.r == nil {
		r, err := pdf.Open(src.name, nil)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pageview.ErrPageUnavailable
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", src.name, err)
		}
		src.r = r
		e.log.Info("file became available", "file", src.name)
	}

	_, dict, err := pagetree.GetPage(src.r, ref.pageNo)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNo, err)
	}
	info, err := readPageInfo(src.r, dict)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNo, err)
	}
	e.info[pageNo] = info
	return info, nil
}

// readPageInfo extracts the page geometry from a page dictionary.
// Malformed annotations are ignored.
func readPageInfo(r pdf.Getter, dict pdf.Dict) (*pageInfo, error) {
	info := &pageInfo{box: letter}

	media, err := pdf.GetRectangle(r, dict["MediaBox"])
	if err != nil {
		return nil, err
	}
	if media != nil {
		info.box = toRect(media)
	}
	crop, err := pdf.GetRectangle(r, dict["CropBox"])
	if err == nil && crop != nil {
		info.box = toRect(crop)
	}
	if info.box.URx-info.box.LLx <= 0 || info.box.URy-info.box.LLy <= 0 {
		return nil, errors.New("empty page box")
	}

	if dict["Rotate"] != nil {
		rot, err := pdf.GetNumber(r, dict["Rotate"])
		if err == nil {
			info.rotate = normaliseRotation(int(rot))
		}
	}

	annots, _ := pdf.GetArray(r, dict["Annots"])
	for _, obj := range annots {
		a, err := pdf.GetDict(r, obj)
		if err != nil || a == nil {
			continue
		}
		box, err := pdf.GetRectangle(r, a["Rect"])
		if err != nil || box == nil {
			continue
		}
		info.annots = append(info.annots, toRect(box))
	}

	return info, nil
}

func toRect(r *pdf.Rectangle) rect.Rect {
	return rect.Rect{
		LLx: min(r.LLx, r.URx),
		LLy: min(r.LLy, r.URy),
		URx: max(r.LLx, r.URx),
		URy: max(r.LLy, r.URy),
	}
}

// normaliseRotation maps rot to 0, 90, 180 or 270.  Values which are not
// multiples of 90 are treated as 0.
func normaliseRotation(rot int) int {
	if rot%90 != 0 {
		return 0
	}
	return (rot%360 + 360) % 360
}

// pageMatrix maps default user space to the pixel grid of a render
// request, where origin is the top-left corner of the rendered region.
// The page is turned clockwise by info.rotate degrees.
func pageMatrix(info *pageInfo, s float64, origin image.Point) matrix.Matrix {
	b := info.box
	var m matrix.Matrix
	switch info.rotate {
	case 90:
		m = matrix.Matrix{0, s, s, 0, -b.LLy * s, -b.LLx * s}
	case 180:
		m = matrix.Matrix{-s, 0, 0, s, b.URx * s, -b.LLy * s}
	case 270:
		m = matrix.Matrix{0, -s, -s, 0, b.URy * s, b.URx * s}
	default:
		m = matrix.Matrix{s, 0, 0, -s, -b.LLx * s, b.URy * s}
	}
	m[4] -= float64(origin.X)
	m[5] -= float64(origin.Y)
	return m
}
