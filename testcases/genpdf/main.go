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

// Command genpdf writes the test documents to disk.
// With -png, every page is also rendered with Ghostscript, for visual
// comparison with the pdfengine output.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"seehuhn.de/go/pageview/testcases"
)

func main() {
	outDir := flag.String("o", "testdata/documents", "output directory")
	png := flag.Bool("png", false, "also render PNG images using Ghostscript")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	names, err := testcases.WriteAll(*outDir, testcases.Document())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, pdfPath := range names {
		fmt.Println(pdfPath)
		if !*png {
			continue
		}
		pngPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
		if err := renderPNG(pdfPath, pngPath); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", pdfPath, err)
			os.Exit(1)
		}
	}
}

func renderPNG(pdfPath, pngPath string) error {
	// -sDEVICE=pnggray: 8-bit grayscale, like the pdfengine output
	// -r72: 72 DPI (1 point = 1 pixel)
	// -dGraphicsAlphaBits=4: 4x supersampling for anti-aliasing
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=pnggray",
		"-r72",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
