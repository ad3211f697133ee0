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

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Page describes one page of a test document.
// All coordinates are in PDF units, with the origin in the bottom-left
// corner of the media box.
type Page struct {
	Name   string  // lowercase a-z and _ only
	Width  float64 // media box width
	Height float64 // media box height
	Rotate int     // clockwise rotation in degrees, a multiple of 90
	Shapes []Shape
}

// Shape is a single painted path.
type Shape struct {
	Path *path.Data
	Gray float64 // 0 is black, 1 is white
	Op   Operation
}

// Operation is the painting operation applied to a shape.
type Operation interface {
	isOperation()
}

// FillRule specifies the rule for determining interior points.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Fill specifies a fill operation.
type Fill struct {
	Rule FillRule
}

func (Fill) isOperation() {}

// Stroke specifies a stroke operation.
type Stroke struct {
	Width float64 // line width (>0)
}

func (Stroke) isOperation() {}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// rectangle returns the closed path around the given corners.
func rectangle(x1, y1, x2, y2 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x1, y1)).
		LineTo(pt(x2, y1)).
		LineTo(pt(x2, y2)).
		LineTo(pt(x1, y2)).
		Close()
}

// kappa for cubic Bezier approximation of a quarter circle
const kappa = 0.5522847498307936

// circle builds an approximate circle using four cubic Bezier curves.
func circle(cx, cy, r float64) *path.Data {
	k := r * kappa

	return (&path.Data{}).
		MoveTo(pt(cx+r, cy)).
		CubeTo(pt(cx+r, cy+k), pt(cx+k, cy+r), pt(cx, cy+r)).
		CubeTo(pt(cx-k, cy+r), pt(cx-r, cy+k), pt(cx-r, cy)).
		CubeTo(pt(cx-r, cy-k), pt(cx-k, cy-r), pt(cx, cy-r)).
		CubeTo(pt(cx+k, cy-r), pt(cx+r, cy-k), pt(cx+r, cy)).
		Close()
}

func filled(p *path.Data, gray float64) Shape {
	return Shape{Path: p, Gray: gray, Op: Fill{Rule: NonZero}}
}
