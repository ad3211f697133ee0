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

package pageview

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

var (
	background  = image.NewUniform(color.Gray{Y: 0x40})
	placeholder = image.NewUniform(color.White)
)

// Draw composes the live slots into dst.  The bounds of dst are
// interpreted in viewport coordinates.
//
// Preview images are scaled to the current size of their slot.  A
// high-quality image, where available, is drawn on top of the preview.
func (v *Viewport) Draw(dst xdraw.Image) {
	xdraw.Draw(dst, dst.Bounds(), background, image.Point{}, xdraw.Src)

	for _, i := range v.liveIndices() {
		s := v.slots[i]
		r := s.rect.Intersect(dst.Bounds())
		if r.Empty() {
			continue
		}

		if s.previewImg == nil {
			xdraw.Draw(dst, r, placeholder, image.Point{}, xdraw.Src)
		} else {
			xdraw.ApproxBiLinear.Scale(dst, s.rect, s.previewImg, s.previewImg.Bounds(), xdraw.Src, nil)
		}

		if s.hqImg != nil && s.hqSize == s.rect.Size() {
			area := s.hqArea.Add(s.rect.Min)
			xdraw.Copy(dst, area.Min, s.hqImg, s.hqImg.Bounds(), xdraw.Src, nil)
		}
	}
}
