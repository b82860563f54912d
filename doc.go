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

// Package pdfmerge combines pages from PDF documents into a new file.
//
// The package keeps three layers apart: PDF objects and their byte
// representation ([Object] and the types implementing it), a deduplicating
// [Writer] which assigns object numbers and emits a complete file with a
// cross-reference table, and a [Copier] which transplants object graphs
// between documents while rewriting indirect references.  The
// [seehuhn.de/go/pdfmerge/pagetree] package uses these to build the merged
// page tree.
package pdfmerge
