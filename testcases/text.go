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

// lineWidths gives the relative lengths of successive text lines.  Every
// sixth line ends a paragraph.
var lineWidths = []float64{1, 0.94, 0.98, 0.9, 1, 0.55}

var textPages = []Page{
	{
		Name:   "single_column",
		Width:  612,
		Height: 792,
		Shapes: []Shape{
			filled(rectangle(72, 702, 400, 720), 0),
			textColumn(72, 680, 468, 44, 14),
		},
	},
	{
		Name:   "two_columns",
		Width:  612,
		Height: 792,
		Shapes: []Shape{
			filled(rectangle(72, 702, 540, 720), 0),
			textColumn(72, 680, 222, 44, 14),
			textColumn(318, 680, 222, 44, 14),
		},
	},
	{
		Name:   "figure",
		Width:  612,
		Height: 792,
		Shapes: []Shape{
			textColumn(72, 720, 468, 16, 14),
			filled(circle(306, 380, 90), 0.6),
			{Path: rectangle(190, 264, 422, 496), Gray: 0, Op: Stroke{Width: 1.5}},
			textColumn(190, 240, 232, 2, 12),
			textColumn(72, 200, 468, 10, 14),
		},
	},
}

// textColumn returns a block of greeked text lines.  The baseline of the
// first line is at y = top.
func textColumn(x, top, width float64, lines int, leading float64) Shape {
	p := &path.Data{}
	for i := range lines {
		y := top - float64(i)*leading
		w := width * lineWidths[i%len(lineWidths)]
		p.MoveTo(pt(x, y)).
			LineTo(pt(x+w, y)).
			LineTo(pt(x+w, y+0.5*leading)).
			LineTo(pt(x, y+0.5*leading)).
			Close()
	}
	return filled(p, 0.25)
}
