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

var sizePages = []Page{
	{
		Name:   "a4",
		Width:  595,
		Height: 842,
		Shapes: []Shape{textColumn(72, 760, 451, 48, 14)},
	},
	{
		Name:   "landscape",
		Width:  842,
		Height: 595,
		Shapes: []Shape{
			textColumn(60, 520, 350, 32, 14),
			textColumn(432, 520, 350, 32, 14),
		},
	},
	{
		Name:   "rotated",
		Width:  612,
		Height: 792,
		Rotate: 90,
		Shapes: []Shape{
			filled(rectangle(0, 0, 100, 100), 0),
			textColumn(144, 680, 396, 40, 14),
		},
	},
	{
		Name:   "receipt",
		Width:  226,
		Height: 800,
		Shapes: []Shape{textColumn(16, 760, 194, 52, 14)},
	},
}
