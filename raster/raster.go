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

// Package raster fills page geometry into grayscale images.
//
// The rasteriser computes exact area coverage per pixel using a scanline
// sweep over an active edge list.  Rendering is cancellable: the context
// passed to [Rasteriser.Fill] is polled between scanlines, so that a page
// which has scrolled out of view stops consuming CPU soon after its render
// request was cancelled.
package raster

import (
	"cmp"
	"context"
	"image"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Rule selects how the interior of a path is determined.
type Rule int

const (
	// NonZero is the nonzero winding rule.
	NonZero Rule = iota

	// EvenOdd is the even-odd rule.
	EvenOdd
)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0     float64 // start point
	dxdy       float64 // (x1-x0)/(y1-y0)
	yMin, yMax float64
	dir        float32 // +1 for downward edges, -1 for upward edges
}

func (e *edge) xAt(y float64) float64 {
	return e.x0 + e.dxdy*(y-e.y0)
}

func (e *edge) yAt(x float64) float64 {
	return e.y0 + (x-e.x0)/e.dxdy
}

// Rasteriser converts paths to pixel coverage values in [0, 1].
// Create one instance and reuse it; internal buffers grow as needed and are
// kept between calls.
//
// A Rasteriser is not safe for concurrent use.
type Rasteriser struct {
	// CTM maps user space to device space.  Must be non-singular.
	CTM matrix.Matrix

	// Clip bounds the output, in device coordinates.
	// Coordinates must be integer-aligned.
	Clip rect.Rect

	// Flatness is the curve approximation tolerance in device pixels.
	Flatness float64

	cover  []float32
	area   []float32
	edges  []edge
	active []int

	bboxEmpty    bool
	bxMin, bxMax float64
	byMin, byMax float64
}

// NewRasteriser returns a Rasteriser with the given clip rectangle and an
// identity transformation.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	return &Rasteriser{
		CTM:      matrix.Identity,
		Clip:     clip,
		Flatness: defaultFlatness,
	}
}

// Reset restores the default parameters for a new clip rectangle,
// keeping the internal buffers.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.edges = r.edges[:0]
	r.active = r.active[:0]
}

// Fill rasterises the path p using the given fill rule.
// Coverage is delivered row by row through emit; the coverage slice is only
// valid during the call.
//
// Fill checks ctx between scanlines and returns ctx.Err() if the context
// was cancelled.  Rows emitted before the cancellation stay painted.
func (r *Rasteriser) Fill(ctx context.Context, p *path.Data, rule Rule, emit func(y, xMin int, coverage []float32)) error {
	xMin, xMax, yMin, yMax, ok := r.collectEdges(p)
	if !ok {
		return nil
	}

	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yMin, b.yMin)
	})

	r.active = r.active[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		if (y-yMin)%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		yf, yfNext := float64(y), float64(y+1)
		for next < len(r.edges) && r.edges[next].yMin < yfNext {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.yMax <= yf {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			if r.accumulate(e, y, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area, rule)
		if trimmed, offset := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+offset, trimmed)
		}
	}
	return nil
}

// collectEdges flattens p into device-space edges and returns the bounding
// box of the edges, clamped to the clip rectangle.
func (r *Rasteriser) collectEdges(p *path.Data) (xMin, xMax, yMin, yMax int, ok bool) {
	r.edges = r.edges[:0]
	r.bboxEmpty = true

	var current, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = p.Coords[k]
			start = current
			k++
		case path.CmdLineTo:
			r.addEdge(current, p.Coords[k])
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			// elevate to a cubic with the same shape
			c1 := current.Add(p.Coords[k].Sub(current).Mul(2.0 / 3.0))
			c2 := p.Coords[k+1].Add(p.Coords[k].Sub(p.Coords[k+1]).Mul(2.0 / 3.0))
			r.flattenCubic(current, c1, c2, p.Coords[k+1])
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2])
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if current != start {
				r.addEdge(current, start)
			}
			current = start
		}
	}
	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(r.bxMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bxMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.byMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.byMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// addEdge appends the user-space segment p0-p1 to the edge list.
func (r *Rasteriser) addEdge(p0, p1 vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p0.X + m[2]*p0.Y + m[4]
	y0 := m[1]*p0.X + m[3]*p0.Y + m[5]
	x1 := m[0]*p1.X + m[2]*p1.Y + m[4]
	y1 := m[1]*p1.X + m[3]*p1.Y + m[5]

	if r.bboxEmpty {
		r.bxMin, r.bxMax = x0, x0
		r.byMin, r.byMax = y0, y0
		r.bboxEmpty = false
	}
	r.bxMin = min(r.bxMin, x0, x1)
	r.bxMax = max(r.bxMax, x0, x1)
	r.byMin = min(r.byMin, y0, y1)
	r.byMax = max(r.byMax, y0, y1)

	dy := y1 - y0
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	e := edge{
		x0:   x0,
		y0:   y0,
		dxdy: (x1 - x0) / dy,
		yMin: min(y0, y1),
		yMax: max(y0, y1),
		dir:  1,
	}
	if dy < 0 {
		e.dir = -1
	}
	r.edges = append(r.edges, e)
}

// flattenCubic approximates a cubic Bézier curve by line segments.
// The number of segments follows Wang's formula, measured in device space.
func (r *Rasteriser) flattenCubic(p0, p1, p2, p3 vec.Vec2) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2))
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3))

	n := 1
	if m := max(d1.Length(), d2.Length()); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		r.addEdge(prev, pt)
		prev = pt
	}
}

// linear applies the linear part of the CTM, ignoring the translation.
func (r *Rasteriser) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// accumulate adds the contribution of e within scanline y to the cover and
// area buffers, which are indexed by x-xMin.  Pixels left of xMin collect
// into the first cell, so that the winding number carries over correctly.
// The return value reports whether the edge touched the scanline.
func (r *Rasteriser) accumulate(e *edge, y, xMin, xMax int) bool {
	yTop := max(float64(y), e.yMin)
	yBot := min(float64(y+1), e.yMax)
	if yBot <= yTop {
		return false
	}

	xa, ya := e.xAt(yTop), yTop
	xb, yb := e.xAt(yBot), yBot
	if xa > xb {
		xa, xb = xb, xa
		ya, yb = yb, ya
	}

	// walk left to right, splitting the segment at pixel boundaries
	col := int(math.Floor(xa))
	last := int(math.Floor(xb))
	for col < last {
		xn := float64(col + 1)
		yn := e.yAt(xn)
		r.deposit(col, e.dir*float32(math.Abs(yn-ya)), (xa+xn)/2, xMin, xMax)
		xa, ya = xn, yn
		col++
	}
	r.deposit(col, e.dir*float32(math.Abs(yb-ya)), (xa+xb)/2, xMin, xMax)
	return true
}

// deposit records a signed vertical extent c, crossing pixel column pix at
// horizontal position xMid.
func (r *Rasteriser) deposit(pix int, c float32, xMid float64, xMin, xMax int) {
	switch {
	case pix < xMin:
		r.cover[0] += c
		r.area[0] += c
	case pix < xMax:
		i := pix - xMin
		r.cover[i] += c
		r.area[i] += c * float32(1-(xMid-float64(pix)))
	}
}

// integrate turns the accumulated cover and area values of one scanline
// into coverage values, in place in cover.
func integrate(cover, area []float32, rule Rule) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		if raw < 0 {
			raw = -raw
		}
		if rule == EvenOdd {
			raw -= 2 * float32(int(raw/2))
			if raw > 1 {
				raw = 2 - raw
			}
		} else if raw > 1 {
			raw = 1
		}
		cover[i] = raw
	}
}

// trimZeros returns the non-zero part of coverage and its offset.
func trimZeros(coverage []float32) ([]float32, int) {
	lo, hi := 0, len(coverage)
	for lo < hi && coverage[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for coverage[hi-1] == 0 {
		hi--
	}
	return coverage[lo:hi], lo
}

// Paint returns an emit function for [Rasteriser.Fill] which blends the
// gray level into img, weighted by coverage.  Device coordinates are
// interpreted relative to img.Rect.Min.
func Paint(img *image.Gray, level uint8) func(y, xMin int, coverage []float32) {
	b := img.Rect
	return func(y, xMin int, coverage []float32) {
		if y < 0 || y >= b.Dy() {
			return
		}
		row := img.Pix[y*img.Stride:]
		for i, c := range coverage {
			x := xMin + i
			if x < 0 || x >= b.Dx() {
				continue
			}
			old := float32(row[x])
			row[x] = uint8(old + (float32(level)-old)*c + 0.5)
		}
	}
}

const (
	// defaultFlatness is below the threshold of visual perception.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent for an edge to
	// contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// cancelCheckRows is the number of scanlines between context checks.
	cancelCheckRows = 8
)
