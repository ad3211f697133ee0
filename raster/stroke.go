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

package raster

import (
	"context"
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Stroke rasterises the outline of p, using the given line width in user
// space.  Lines have butt caps and square joins.  Lines thinner than one
// device pixel are widened to one pixel.
//
// The outline is built from one rectangle per flattened segment, plus a
// square at every interior vertex, and is filled with the [NonZero] rule.
func (r *Rasteriser) Stroke(ctx context.Context, p *path.Data, width float64, emit func(y, xMin int, coverage []float32)) error {
	scale := math.Sqrt(math.Abs(r.CTM[0]*r.CTM[3] - r.CTM[1]*r.CTM[2]))
	if scale == 0 {
		return nil
	}
	if width*scale < 1 {
		width = 1 / scale
	}
	d := width / 2

	outline := &path.Data{}
	for _, sub := range r.flattenSubpaths(p) {
		pts := sub.pts
		if sub.closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		for i := 1; i < len(pts); i++ {
			addSegment(outline, pts[i-1], pts[i], d)
		}

		last := len(pts) - 1
		for i := 1; i < last; i++ {
			addSquare(outline, pts[i], pts[i+1].Sub(pts[i]), d)
		}
		if sub.closed && last > 1 {
			addSquare(outline, pts[0], pts[1].Sub(pts[0]), d)
		}
	}
	return r.Fill(ctx, outline, NonZero, emit)
}

type polyline struct {
	pts    []vec.Vec2
	closed bool
}

// flattenSubpaths converts p into polylines in user space.  The curve
// tolerance is measured in device space.
func (r *Rasteriser) flattenSubpaths(p *path.Data) []polyline {
	var res []polyline
	k := 0
	for _, cmd := range p.Cmds {
		cur := len(res) - 1
		switch cmd {
		case path.CmdMoveTo:
			res = append(res, polyline{pts: []vec.Vec2{p.Coords[k]}})
			k++
		case path.CmdLineTo:
			if cur >= 0 {
				res[cur].pts = append(res[cur].pts, p.Coords[k])
			}
			k++
		case path.CmdQuadTo:
			if cur >= 0 {
				pts := res[cur].pts
				p0 := pts[len(pts)-1]
				c1 := p0.Add(p.Coords[k].Sub(p0).Mul(2.0 / 3.0))
				c2 := p.Coords[k+1].Add(p.Coords[k].Sub(p.Coords[k+1]).Mul(2.0 / 3.0))
				res[cur].pts = r.appendCubic(pts, p0, c1, c2, p.Coords[k+1])
			}
			k += 2
		case path.CmdCubeTo:
			if cur >= 0 {
				pts := res[cur].pts
				p0 := pts[len(pts)-1]
				res[cur].pts = r.appendCubic(pts, p0, p.Coords[k], p.Coords[k+1], p.Coords[k+2])
			}
			k += 3
		case path.CmdClose:
			if cur >= 0 {
				res[cur].closed = true
				// a new segment after closepath starts at the same point
				res = append(res, polyline{pts: []vec.Vec2{res[cur].pts[0]}})
			}
		}
	}
	return res
}

// appendCubic appends the flattened cubic curve, excluding p0, to pts.
func (r *Rasteriser) appendCubic(pts []vec.Vec2, p0, p1, p2, p3 vec.Vec2) []vec.Vec2 {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2))
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3))

	n := 1
	if m := max(d1.Length(), d2.Length()); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pts = append(pts, p0.Mul(s*s*s).
			Add(p1.Mul(3*s*s*t)).
			Add(p2.Mul(3*s*t*t)).
			Add(p3.Mul(t*t*t)))
	}
	return pts
}

// addSegment adds the rectangle of half-width d around the segment a-b.
// All rectangles turn in the same direction, so that overlaps do not cancel
// under the nonzero rule.
func addSegment(outline *path.Data, a, b vec.Vec2, d float64) {
	t := b.Sub(a)
	l := t.Length()
	if l == 0 {
		return
	}
	n := vec.Vec2{X: -t.Y, Y: t.X}.Mul(d / l)
	outline.MoveTo(a.Sub(n)).LineTo(b.Sub(n)).LineTo(b.Add(n)).LineTo(a.Add(n)).Close()
}

// addSquare adds a square of half-width d around p, aligned with dir.
func addSquare(outline *path.Data, p, dir vec.Vec2, d float64) {
	l := dir.Length()
	if l == 0 {
		return
	}
	t := dir.Mul(d / l)
	n := vec.Vec2{X: -t.Y, Y: t.X}
	outline.MoveTo(p.Sub(t).Sub(n)).
		LineTo(p.Add(t).Sub(n)).
		LineTo(p.Add(t).Add(n)).
		LineTo(p.Sub(t).Add(n)).
		Close()
}
