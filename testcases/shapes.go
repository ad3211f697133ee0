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

package testcases

import "seehuhn.de/go/geom/path"

var shapePages = []Page{
	{
		Name:   "circles",
		Width:  400,
		Height: 400,
		Shapes: []Shape{
			filled(circle(100, 300, 60), 0),
			filled(circle(300, 300, 60), 0.3),
			filled(circle(100, 100, 60), 0.6),
			{Path: circle(300, 100, 60), Gray: 0, Op: Stroke{Width: 4}},
		},
	},
	{
		Name:   "ring",
		Width:  400,
		Height: 400,
		Shapes: []Shape{
			{
				Path: ring(200, 200, 150, 80),
				Gray: 0.2,
				Op:   Fill{Rule: EvenOdd},
			},
		},
	},
	{
		Name:   "grid_lines",
		Width:  400,
		Height: 400,
		Shapes: []Shape{
			{Path: grid(20, 20, 380, 380, 36), Gray: 0, Op: Stroke{Width: 0.5}},
		},
	},
}

// ring returns two nested squares; the inner one is cut out under the
// even-odd rule only.
func ring(cx, cy, outer, inner float64) *path.Data {
	p := rectangle(cx-outer, cy-outer, cx+outer, cy+outer)
	p.MoveTo(pt(cx-inner, cy-inner)).
		LineTo(pt(cx+inner, cy-inner)).
		LineTo(pt(cx+inner, cy+inner)).
		LineTo(pt(cx-inner, cy+inner)).
		Close()
	return p
}

// grid returns the horizontal and vertical lines of a square grid.
func grid(x1, y1, x2, y2, step float64) *path.Data {
	p := &path.Data{}
	for x := x1; x <= x2; x += step {
		p.MoveTo(pt(x, y1)).LineTo(pt(x, y2))
	}
	for y := y1; y <= y2; y += step {
		p.MoveTo(pt(x1, y)).LineTo(pt(x2, y))
	}
	return p
}
