// seehuhn.de/go/pdfmerge - merge pages from PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
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

// Pdfmerge combines pages from PDF files into a new file.
//
// Usage:
//
//	pdfmerge [-o out.pdf] input.pdf[=pages] ...
//
// Every input file contributes all of its pages, unless a page selection
// is appended to the file name, e.g. "doc.pdf=1-3,7".
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"seehuhn.de/go/pdfmerge"
	"seehuhn.de/go/pdfmerge/pagetree"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pdfmerge: ")

	outName := flag.String("o", "merged.pdf", "name of the output file")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(),
			"usage: pdfmerge [-o out.pdf] input.pdf[=pages] ...")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var selections []pagetree.Selection
	for _, arg := range flag.Args() {
		name, rangeSpec, hasRange := strings.Cut(arg, "=")

		doc, err := pdfmerge.ReadFile(name)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		var pages []int
		if hasRange {
			numPages, err := doc.NumPages()
			if err != nil {
				log.Fatalf("%s: %v", name, err)
			}
			pages, err = parseRanges(rangeSpec, numPages)
			if err != nil {
				log.Fatalf("%s: %v", name, err)
			}
		}
		selections = append(selections, pagetree.Selection{Doc: doc, Pages: pages})
	}

	fd, err := os.Create(*outName)
	if err != nil {
		log.Fatal(err)
	}
	err = pagetree.MergeSelected(fd, selections)
	if err != nil {
		fd.Close()
		os.Remove(*outName)
		log.Fatal(err)
	}
	err = fd.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// parseRanges converts a page selection like "1-3,7" into a list of page
// numbers.  An open range like "5-" extends to the last page.
func parseRanges(spec string, numPages int) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(spec, ",") {
		from, to, isRange := strings.Cut(part, "-")

		a, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		b := a
		if isRange {
			if to == "" {
				b = numPages
			} else {
				b, err = strconv.Atoi(to)
				if err != nil {
					return nil, fmt.Errorf("invalid page range %q", part)
				}
			}
		}
		if a < 1 || b > numPages || a > b {
			return nil, fmt.Errorf("page range %q outside 1-%d", part, numPages)
		}
		for i := a; i <= b; i++ {
			pages = append(pages, i)
		}
	}
	return pages, nil
}
