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
	"fmt"
	"path/filepath"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"
)

// WritePDF writes p as a single-page PDF file.
func WritePDF(fileName string, p Page) error {
	paper := &pdf.Rectangle{
		URx: p.Width,
		URy: p.Height,
	}

	page, err := document.CreateSinglePage(fileName, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}
	page.Page.Rotate = p.Rotate

	for _, s := range p.Shapes {
		// stroke parameters must be set before path construction
		switch op := s.Op.(type) {
		case Fill:
			page.SetFillColor(color.DeviceGray(s.Gray))
		case Stroke:
			page.SetStrokeColor(color.DeviceGray(s.Gray))
			page.SetLineWidth(op.Width)
		}

		// PDF has no quadratic curves
		for cmd, pts := range s.Path.Iter().ToCubic() {
			switch cmd {
			case path.CmdMoveTo:
				page.MoveTo(pts[0].X, pts[0].Y)
			case path.CmdLineTo:
				page.LineTo(pts[0].X, pts[0].Y)
			case path.CmdCubeTo:
				page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
			case path.CmdClose:
				page.ClosePath()
			}
		}

		switch op := s.Op.(type) {
		case Fill:
			if op.Rule == EvenOdd {
				page.FillEvenOdd()
			} else {
				page.Fill()
			}
		case Stroke:
			page.Stroke()
		}
	}

	return page.Close()
}

// WriteAll writes every page to its own file in dir and returns the file
// names, in page order.
func WriteAll(dir string, pages []Page) ([]string, error) {
	names := make([]string, 0, len(pages))
	for i, p := range pages {
		fileName := filepath.Join(dir, fmt.Sprintf("%02d_%s.pdf", i, p.Name))
		if err := WritePDF(fileName, p); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		names = append(names, fileName)
	}
	return names, nil
}
