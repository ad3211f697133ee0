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
	"log/slog"
	"time"

	"seehuhn.de/go/pageview/scroller"
	"seehuhn.de/go/pageview/task"
)

const (
	// Gap is the space between neighbouring pages, in pixels.
	Gap = 20

	// FlingMargin is how far, in pixels, a page may be out of bounds for a
	// fling to start.
	FlingMargin = 100

	// MinScale and MaxScale bound the zoom level of a page.
	MinScale = 1.0
	MaxScale = 64.0

	// ScrollDuration is the duration of programmatic scroll animations.
	ScrollDuration = 400 * time.Millisecond

	// DefaultDPI is the screen resolution assumed when computing tap
	// margins.
	DefaultDPI = 160

	// DefaultPoolCapacity is the default number of retired slots kept for
	// reuse.  Zero means that the pool is unbounded.
	DefaultPoolCapacity = 0

	// DefaultEm is the default font size passed to [Engine.Reflow].
	DefaultEm = 9.0
)

// Option configures a [Viewport].
type Option func(*config)

type config struct {
	vertical       bool
	poolCapacity   int
	workers        int
	runner         *task.Runner
	logger         *slog.Logger
	dpi            int
	ticksPerSecond int
	em             float64
}

func defaultConfig() config {
	return config{
		poolCapacity:   DefaultPoolCapacity,
		dpi:            DefaultDPI,
		ticksPerSecond: scroller.DefaultTicksPerSecond,
		em:             DefaultEm,
	}
}

// WithVertical makes pages follow each other from top to bottom, instead
// of from left to right.
func WithVertical() Option {
	return func(c *config) {
		c.vertical = true
	}
}

// WithPoolCapacity sets how many retired slots are kept for reuse.
// Slots beyond this number are destroyed, oldest first.
// Zero means no limit.
func WithPoolCapacity(n int) Option {
	return func(c *config) {
		c.poolCapacity = max(n, 0)
	}
}

// WithWorkers sets the number of goroutines used for rendering.
// The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithRunner makes the viewport submit its render tasks to r, instead of
// starting its own workers.  The runner is not closed by [Viewport.Close].
func WithRunner(r *task.Runner) Option {
	return func(c *config) {
		c.runner = r
	}
}

// WithLogger sets the logger for this viewport, overriding the package
// logger set by [SetLogger].
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithDPI sets the screen resolution.  A tap closer than one inch to the
// edge of the viewport turns the page.
func WithDPI(dpi int) Option {
	return func(c *config) {
		c.dpi = dpi
	}
}

// WithTicksPerSecond sets the frame rate assumed by the animations.
func WithTicksPerSecond(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.ticksPerSecond = n
		}
	}
}

// WithEm sets the initial font size for reflowable documents.
func WithEm(em float64) Option {
	return func(c *config) {
		if em > 0 {
			c.em = em
		}
	}
}
