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

package pdfengine

import (
	"io"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics/scanner"

	"seehuhn.de/go/pageview/raster"
)

type paintKind int

const (
	fillNonZero paintKind = iota
	fillEvenOdd
	stroke
)

// paintOp is one entry of a page display list.
type paintOp struct {
	kind  paintKind
	path  *path.Data    // in user space
	ctm   matrix.Matrix // user space to default page space
	gray  uint8
	width float64 // line width for strokes, in user space
}

func (op *paintOp) rule() raster.Rule {
	if op.kind == fillEvenOdd {
		return raster.EvenOdd
	}
	return raster.NonZero
}

// graphicsState holds the parts of the PDF graphics state which affect
// the display list.
type graphicsState struct {
	ctm        matrix.Matrix
	fillGray   uint8
	strokeGray uint8
	lineWidth  float64
}

// textState holds the text parameters needed to place greeked text.
type textState struct {
	tm, tlm matrix.Matrix
	size    float64
	leading float64
	scale   float64 // horizontal scaling, 1 = 100%
}

// interpreter builds a display list from a content stream.
//
// Colours are converted to gray levels, clipping is ignored and text is
// drawn as bars covering the approximate extent of each string.
type interpreter struct {
	state graphicsState
	stack []graphicsState
	text  textState

	cur     *path.Data
	started bool // cur has a current point

	ops []paintOp
}

func newInterpreter() *interpreter {
	return &interpreter{
		state: graphicsState{
			ctm:       matrix.Identity,
			lineWidth: 1,
		},
		text: textState{
			tm:    matrix.Identity,
			tlm:   matrix.Identity,
			scale: 1,
		},
		cur: &path.Data{},
	}
}

// readContent interprets the content stream r.  If the stream is
// malformed, the operations read so far are returned together with the
// error.
func readContent(r io.Reader) ([]paintOp, error) {
	in := newInterpreter()
	err := scanner.NewScanner().Scan(r)(in.do)
	return in.ops, err
}

// do executes a single operator.  Operators with missing or malformed
// operands are skipped.
func (in *interpreter) do(op string, args []pdf.Object) error {
	a, ok := numbers(args)

	switch op {
	// graphics state
	case "q":
		in.stack = append(in.stack, in.state)
	case "Q":
		if n := len(in.stack); n > 0 {
			in.state = in.stack[n-1]
			in.stack = in.stack[:n-1]
		}
	case "cm":
		if ok && len(a) == 6 {
			m := matrix.Matrix{a[0], a[1], a[2], a[3], a[4], a[5]}
			in.state.ctm = m.Mul(in.state.ctm)
		}
	case "w":
		if ok && len(a) == 1 {
			in.state.lineWidth = math.Abs(a[0])
		}

	// colour
	case "g", "sc", "scn", "rg", "k":
		if g, valid := toGray(args); valid {
			in.state.fillGray = g
		}
	case "G", "SC", "SCN", "RG", "K":
		if g, valid := toGray(args); valid {
			in.state.strokeGray = g
		}
	case "cs":
		in.state.fillGray = 0
	case "CS":
		in.state.strokeGray = 0

	// path construction
	case "m":
		if ok && len(a) == 2 {
			in.cur.MoveTo(pt(a[0], a[1]))
			in.started = true
		}
	case "l":
		if ok && len(a) == 2 && in.started {
			in.cur.LineTo(pt(a[0], a[1]))
		}
	case "c":
		if ok && len(a) == 6 && in.started {
			in.cur.CubeTo(pt(a[0], a[1]), pt(a[2], a[3]), pt(a[4], a[5]))
		}
	case "v":
		if ok && len(a) == 4 && in.started {
			in.cur.CubeTo(in.currentPoint(), pt(a[0], a[1]), pt(a[2], a[3]))
		}
	case "y":
		if ok && len(a) == 4 && in.started {
			in.cur.CubeTo(pt(a[0], a[1]), pt(a[2], a[3]), pt(a[2], a[3]))
		}
	case "h":
		if in.started {
			in.cur.Close()
		}
	case "re":
		if ok && len(a) == 4 {
			x, y, w, h := a[0], a[1], a[2], a[3]
			in.cur.MoveTo(pt(x, y)).
				LineTo(pt(x+w, y)).
				LineTo(pt(x+w, y+h)).
				LineTo(pt(x, y+h)).
				Close()
			in.started = true
		}

	// path painting
	case "f", "F":
		in.paint(fillNonZero)
	case "f*":
		in.paint(fillEvenOdd)
	case "S":
		in.paint(stroke)
	case "s":
		in.closePath()
		in.paint(stroke)
	case "B":
		in.paint(fillNonZero, stroke)
	case "B*":
		in.paint(fillEvenOdd, stroke)
	case "b":
		in.closePath()
		in.paint(fillNonZero, stroke)
	case "b*":
		in.closePath()
		in.paint(fillEvenOdd, stroke)
	case "n":
		in.paint()

	// text
	case "BT":
		in.text.tm = matrix.Identity
		in.text.tlm = matrix.Identity
	case "Tf":
		if len(args) == 2 {
			if size, valid := number(args[1]); valid {
				in.text.size = size
			}
		}
	case "TL":
		if ok && len(a) == 1 {
			in.text.leading = a[0]
		}
	case "Tz":
		if ok && len(a) == 1 {
			in.text.scale = a[0] / 100
		}
	case "Td":
		if ok && len(a) == 2 {
			in.moveText(a[0], a[1])
		}
	case "TD":
		if ok && len(a) == 2 {
			in.text.leading = -a[1]
			in.moveText(a[0], a[1])
		}
	case "Tm":
		if ok && len(a) == 6 {
			in.text.tlm = matrix.Matrix{a[0], a[1], a[2], a[3], a[4], a[5]}
			in.text.tm = in.text.tlm
		}
	case "T*":
		in.moveText(0, -in.text.leading)
	case "Tj":
		if len(args) == 1 {
			in.showText(args[0])
		}
	case "'":
		if len(args) == 1 {
			in.moveText(0, -in.text.leading)
			in.showText(args[0])
		}
	case "\"":
		if len(args) == 3 {
			in.moveText(0, -in.text.leading)
			in.showText(args[2])
		}
	case "TJ":
		if len(args) == 1 {
			if arr, isArray := args[0].(pdf.Array); isArray {
				for _, obj := range arr {
					if x, isNum := number(obj); isNum {
						in.advance(-x / 1000 * in.text.size)
					} else {
						in.showText(obj)
					}
				}
			}
		}
	}
	return nil
}

func (in *interpreter) currentPoint() vec.Vec2 {
	return in.cur.Coords[len(in.cur.Coords)-1]
}

func (in *interpreter) closePath() {
	if in.started {
		in.cur.Close()
	}
}

// paint appends the current path to the display list, once for each
// kind, and starts a new path.
func (in *interpreter) paint(kinds ...paintKind) {
	p := in.cur
	in.cur = &path.Data{}
	in.started = false
	if len(p.Cmds) == 0 {
		return
	}

	for _, kind := range kinds {
		op := paintOp{
			kind: kind,
			path: p,
			ctm:  in.state.ctm,
			gray: in.state.fillGray,
		}
		if kind == stroke {
			op.gray = in.state.strokeGray
			op.width = in.state.lineWidth
		}
		in.ops = append(in.ops, op)
	}
}

func (in *interpreter) moveText(tx, ty float64) {
	in.text.tlm = matrix.Translate(tx, ty).Mul(in.text.tlm)
	in.text.tm = in.text.tlm
}

func (in *interpreter) advance(dx float64) {
	in.text.tm = matrix.Translate(dx*in.text.scale, 0).Mul(in.text.tm)
}

// showText adds a bar for the string s and advances the text position.
// Glyphs are assumed to be half an em wide and half an em high.
func (in *interpreter) showText(s pdf.Object) {
	str, isString := s.(pdf.String)
	if !isString || len(str) == 0 {
		return
	}
	size := in.text.size
	w := float64(len(str)) * size / 2

	if size != 0 {
		bar := (&path.Data{}).
			MoveTo(pt(0, 0)).
			LineTo(pt(w*in.text.scale, 0)).
			LineTo(pt(w*in.text.scale, size/2)).
			LineTo(pt(0, size/2)).
			Close()
		in.ops = append(in.ops, paintOp{
			kind: fillNonZero,
			path: bar,
			ctm:  in.text.tm.Mul(in.state.ctm),
			gray: in.state.fillGray,
		})
	}
	in.advance(w)
}

// toGray converts the operands of a colour operator to a gray level.
// One operand is gray, three are RGB and four are CMYK.
func toGray(args []pdf.Object) (uint8, bool) {
	// scn may have a trailing pattern name
	if n := len(args); n > 0 {
		if _, isName := args[n-1].(pdf.Name); isName {
			args = args[:n-1]
		}
	}
	a, ok := numbers(args)
	if !ok {
		return 0, false
	}

	var g float64
	switch len(a) {
	case 1:
		g = a[0]
	case 3:
		g = 0.299*a[0] + 0.587*a[1] + 0.114*a[2]
	case 4:
		g = 1 - min(1, 0.3*a[0]+0.59*a[1]+0.11*a[2]+a[3])
	default:
		return 0, false
	}
	g = min(max(g, 0), 1)
	return uint8(math.Round(g * 255)), true
}

// numbers converts all operands to float64.  The result is false if any
// operand is not a number.
func numbers(args []pdf.Object) ([]float64, bool) {
	a := make([]float64, len(args))
	for i, obj := range args {
		x, ok := number(obj)
		if !ok {
			return nil, false
		}
		a[i] = x
	}
	return a, true
}

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

func number(obj pdf.Object) (float64, bool) {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	case pdf.Number:
		return float64(x), true
	default:
		return 0, false
	}
}
