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

// Command pageview shows PDF files in a terminal.
//
// Every terminal cell shows two pixels, using the upper half block
// character.  Pages can be moved with the mouse or the keyboard:
//
//	drag, wheel        scroll
//	ctrl+wheel, + -    zoom
//	click, double click  turn page at the edges, zoom
//	space, backspace   read forwards, backwards
//	n, p               next, previous page
//	home, end          left, right side of the page
//	g, G, b            first page, last page, back
//	r                  reload
//	q, esc             quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"seehuhn.de/go/pageview"
	"seehuhn.de/go/pageview/pdfengine"
	"seehuhn.de/go/pageview/testcases"
)

func main() {
	demo := flag.Bool("demo", false, "show the built-in test document")
	vertical := flag.Bool("vertical", false, "arrange pages vertically")
	workers := flag.Int("workers", 2, "number of render workers")
	logFile := flag.String("log", "", "write log messages to `file`")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	if err := run(*demo, *vertical, *workers, *logFile, *debug, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "pageview:", err)
		os.Exit(1)
	}
}

func run(demo, vertical bool, workers int, logFile string, debug bool, names []string) error {
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	pageview.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	if demo {
		dir, err := os.MkdirTemp("", "pageview-demo-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		names, err = testcases.WriteAll(dir, testcases.Document())
		if err != nil {
			return err
		}
		// shown as unavailable until "r" is pressed
		names = append(names, filepath.Join(dir, "later.pdf"))
	}
	if len(names) == 0 {
		return fmt.Errorf("no files given (try -demo)")
	}

	e, err := pdfengine.Open(names...)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := []pageview.Option{pageview.WithWorkers(workers)}
	if vertical {
		opts = append(opts, pageview.WithVertical())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	a := newApp(screen, pageview.New(opts...))
	defer a.v.Close()
	a.v.SetEngine(e)
	if demo {
		a.later = names[len(names)-1]
		a.laterPage = testcases.Document()[0]
	}
	return a.run()
}
