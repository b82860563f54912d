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

package pdfmerge

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// writeXRefTable writes the cross-reference table, the trailer dictionary
// and the startxref line.  The object numbers in offsets must form the
// contiguous range 1, ..., len(offsets); each entry gives the byte
// position of the corresponding "N G obj" line.  The info reference is
// optional, a zero Reference omits the trailer entry.
func writeXRefTable(w *posWriter, offsets map[Reference]int64, root, info Reference) error {
	refs := maps.Keys(offsets)
	slices.SortFunc(refs, func(a, b Reference) int {
		switch {
		case a.Number() < b.Number():
			return -1
		case a.Number() > b.Number():
			return 1
		}
		return 0
	})
	for i, ref := range refs {
		if ref.Number() != uint32(i)+1 {
			return fmt.Errorf("%w: missing object %d", ErrObjectGap, i+1)
		}
	}

	_, err := io.WriteString(w, "\n")
	if err != nil {
		return err
	}
	xRefPos := w.pos

	_, err = fmt.Fprintf(w, "xref\n0 %d\n", len(refs)+1)
	if err != nil {
		return err
	}
	// Every entry is exactly 20 bytes, including the trailing "space,
	// line feed" pair.
	_, err = io.WriteString(w, "0000000000 65535 f \n")
	if err != nil {
		return err
	}
	for _, ref := range refs {
		_, err = fmt.Fprintf(w, "%010d %05d n \n", offsets[ref], ref.Generation())
		if err != nil {
			return err
		}
	}

	trailer := NewDict()
	trailer.Set("Size", Integer(len(refs)+1))
	trailer.Set("Root", root)
	trailer.Set("ID", Array{newFileID(), newFileID()})
	if info != 0 {
		trailer.Set("Info", info)
	}

	_, err = io.WriteString(w, "trailer\n")
	if err != nil {
		return err
	}
	err = trailer.PDF(w)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nstartxref\n%d\n%%%%EOF", xRefPos)
	return err
}

// newFileID returns a fresh 16-byte file identifier.
func newFileID() HexString {
	id := make([]byte, 16)
	rand.Read(id)
	return HexString(id)
}
