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
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// circleK places the control points of a cubic Bézier quarter circle.
const circleK = 0.5522847498

// Rect returns a closed path along the boundary of r.
func Rect(r rect.Rect) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: r.LLx, Y: r.LLy}).
		LineTo(vec.Vec2{X: r.URx, Y: r.LLy}).
		LineTo(vec.Vec2{X: r.URx, Y: r.URy}).
		LineTo(vec.Vec2{X: r.LLx, Y: r.URy}).
		Close()
}

// Frame returns the outline of r with the given line width, drawn inside r.
// The result must be filled with the [EvenOdd] rule.
func Frame(r rect.Rect, width float64) *path.Data {
	p := Rect(r)
	inner := rect.Rect{
		LLx: r.LLx + width,
		LLy: r.LLy + width,
		URx: r.URx - width,
		URy: r.URy - width,
	}
	if inner.LLx >= inner.URx || inner.LLy >= inner.URy {
		return p
	}
	q := Rect(inner)
	p.Cmds = append(p.Cmds, q.Cmds...)
	p.Coords = append(p.Coords, q.Coords...)
	return p
}

// RoundedRect returns a closed path along the boundary of r, with the
// corners replaced by quarter circles of the given radius.
func RoundedRect(r rect.Rect, radius float64) *path.Data {
	radius = min(radius, (r.URx-r.LLx)/2, (r.URy-r.LLy)/2)
	if radius <= 0 {
		return Rect(r)
	}
	k := circleK * radius

	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: r.LLx + radius, Y: r.LLy})
	p.LineTo(vec.Vec2{X: r.URx - radius, Y: r.LLy})
	cubeTo(p,
		vec.Vec2{X: r.URx - radius + k, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.LLy + radius - k},
		vec.Vec2{X: r.URx, Y: r.LLy + radius})
	p.LineTo(vec.Vec2{X: r.URx, Y: r.URy - radius})
	cubeTo(p,
		vec.Vec2{X: r.URx, Y: r.URy - radius + k},
		vec.Vec2{X: r.URx - radius + k, Y: r.URy},
		vec.Vec2{X: r.URx - radius, Y: r.URy})
	p.LineTo(vec.Vec2{X: r.LLx + radius, Y: r.URy})
	cubeTo(p,
		vec.Vec2{X: r.LLx + radius - k, Y: r.URy},
		vec.Vec2{X: r.LLx, Y: r.URy - radius + k},
		vec.Vec2{X: r.LLx, Y: r.URy - radius})
	p.LineTo(vec.Vec2{X: r.LLx, Y: r.LLy + radius})
	cubeTo(p,
		vec.Vec2{X: r.LLx, Y: r.LLy + radius - k},
		vec.Vec2{X: r.LLx + radius - k, Y: r.LLy},
		vec.Vec2{X: r.LLx + radius, Y: r.LLy})
	p.Close()
	return p
}

func cubeTo(p *path.Data, c1, c2, end vec.Vec2) {
	p.Cmds = append(p.Cmds, path.CmdCubeTo)
	p.Coords = append(p.Coords, c1, c2, end)
}
