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

package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview"
	"seehuhn.de/go/pageview/testcases"
)

const (
	frameInterval   = 16 * time.Millisecond // ~60 FPS
	doubleClickTime = 300 * time.Millisecond
	flingSpeed      = 200 // pixels per second
	wheelStep       = 8   // pixels
	zoomStep        = 1.25
)

type app struct {
	screen tcell.Screen
	v      *pageview.Viewport
	router *pageview.Router
	img    *image.Gray

	status string

	// mouse state
	pressed   bool
	moved     bool
	last      vec.Vec2
	lastMove  time.Time
	velocity  vec.Vec2
	lastClick time.Time

	// demo file which is written on reload
	later     string
	laterPage testcases.Page
}

func newApp(screen tcell.Screen, v *pageview.Viewport) *app {
	a := &app{
		screen: screen,
		v:      v,
		router: pageview.NewRouter(v),
	}
	v.OnPageSelected(func(page int) {
		a.status = fmt.Sprintf("page %d of %d", page+1, v.PageCount())
	})
	v.OnContentTap(func(page int, rx, ry, x, y float64) {
		a.status = fmt.Sprintf("page %d at (%.2f, %.2f)", page+1, rx, ry)
	})
	return a
}

func (a *app) run() error {
	if err := a.resize(); err != nil {
		return err
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			quit, err := a.handleEvent(ev)
			if quit || err != nil {
				return err
			}
		case <-a.v.Wake():
		case <-ticker.C:
		}

		if a.v.Frame() {
			a.draw()
		}
	}
}

// resize adapts the viewport to the terminal size.  The bottom line is
// used for the status.
func (a *app) resize() error {
	w, h := a.screen.Size()
	height := 2 * max(h-1, 0)
	a.img = image.NewGray(image.Rect(0, 0, w, height))
	return a.v.Resize(w, height)
}

func (a *app) handleEvent(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev), nil
	case *tcell.EventMouse:
		return false, a.handleMouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
		return false, a.resize()
	}
	return false, nil
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	w, h := a.v.Size()
	centre := vec.Vec2{X: float64(w) / 2, Y: float64(h) / 2}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight, tcell.KeyPgDn:
		a.v.SmartMoveForwards()
	case tcell.KeyLeft, tcell.KeyPgUp, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.v.SmartMoveBackwards()
	case tcell.KeyUp:
		a.scroll(0, wheelStep)
	case tcell.KeyDown:
		a.scroll(0, -wheelStep)
	case tcell.KeyHome:
		a.v.ScrollToLeftSide()
	case tcell.KeyEnd:
		a.v.ScrollToRightSide()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			a.v.SmartMoveForwards()
		case 'n':
			a.v.MoveNext()
		case 'p':
			a.v.MovePrevious()
		case '+', '=':
			a.zoom(centre, zoomStep)
		case '-':
			a.zoom(centre, 1/zoomStep)
		case 'g':
			a.v.PushHistory()
			a.v.SetCurrentIndex(0)
		case 'G':
			a.v.PushHistory()
			a.v.SetCurrentIndex(a.v.PageCount() - 1)
		case 'b':
			a.v.PopHistory()
		case 'r':
			a.reload()
		}
	}
	return false
}

func (a *app) handleMouse(ev *tcell.EventMouse) error {
	x, y := ev.Position()
	pos := vec.Vec2{X: float64(x), Y: float64(2 * y)}
	now := time.Now()
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			a.zoom(pos, zoomStep)
		} else {
			a.scroll(0, wheelStep)
		}
	case buttons&tcell.WheelDown != 0:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			a.zoom(pos, 1/zoomStep)
		} else {
			a.scroll(0, -wheelStep)
		}

	case buttons&tcell.Button1 != 0 && !a.pressed:
		a.pressed = true
		a.moved = false
		a.last = pos
		a.lastMove = now
		a.velocity = vec.Vec2{}
		return a.router.Handle(pageview.Down{})

	case buttons&tcell.Button1 != 0:
		d := pos.Sub(a.last)
		if d == (vec.Vec2{}) {
			return nil
		}
		if dt := now.Sub(a.lastMove).Seconds(); dt > 0 {
			a.velocity = d.Mul(1 / dt)
		}
		a.moved = true
		a.last = pos
		a.lastMove = now
		return a.router.Handle(pageview.Drag{DX: d.X, DY: d.Y})

	case a.pressed:
		a.pressed = false
		var err error
		switch {
		case !a.moved && now.Sub(a.lastClick) < doubleClickTime:
			a.lastClick = time.Time{}
			err = a.router.Handle(pageview.DoubleTap{Pos: pos})
		case !a.moved:
			a.lastClick = now
			err = a.router.Handle(pageview.Tap{Pos: pos})
		case now.Sub(a.lastMove) < 2*frameInterval && a.velocity.Length() > flingSpeed:
			err = a.router.Handle(pageview.Fling{VX: a.velocity.X, VY: a.velocity.Y})
		}
		if err != nil {
			return err
		}
		return a.router.Handle(pageview.Up{})
	}
	return nil
}

// scroll moves the document as if it had been dragged by (dx, dy).
func (a *app) scroll(dx, dy float64) {
	for _, ev := range []pageview.Event{
		pageview.Down{},
		pageview.Drag{DX: dx, DY: dy},
		pageview.Up{},
	} {
		a.router.Handle(ev)
	}
}

func (a *app) zoom(focus vec.Vec2, factor float64) {
	for _, ev := range []pageview.Event{
		pageview.ScaleBegin{},
		pageview.Scale{Focus: focus, Factor: factor},
		pageview.ScaleEnd{},
	} {
		a.router.Handle(ev)
	}
}

// reload re-reads all pages.  In demo mode, the missing file is written
// first.
func (a *app) reload() {
	if a.later != "" {
		if err := testcases.WritePDF(a.later, a.laterPage); err != nil {
			a.status = err.Error()
		}
		a.later = ""
	}
	a.v.Refresh(nil)
}

func (a *app) draw() {
	a.v.Draw(a.img)

	b := a.img.Rect
	for y := 0; 2*y+1 < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			top := grayColor(a.img.GrayAt(x, 2*y))
			bottom := grayColor(a.img.GrayAt(x, 2*y+1))
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			a.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	_, h := a.screen.Size()
	w := b.Dx()
	status := []rune(a.status)
	for x := range w {
		r := ' '
		if x < len(status) {
			r = status[x]
		}
		a.screen.SetContent(x, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	a.screen.Show()
}

func grayColor(c color.Gray) tcell.Color {
	y := int32(c.Y)
	return tcell.NewRGBColor(y, y, y)
}
