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
	"errors"
	"strconv"
)

var (
	// ErrEncrypted is returned when a source document uses encryption.
	// Encrypted documents cannot be merged.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrNoPages is returned when a merge would produce a document
	// without any pages.
	ErrNoPages = errors.New("no pages in document")

	// ErrNoCatalog is returned by [Writer.Close] if the given catalog
	// reference does not belong to any written object.
	ErrNoCatalog = errors.New("catalog object was never written")

	// ErrNotReserved is returned by [Writer.Put] if the object number of
	// the given reference has not been handed out by [Writer.Alloc], or
	// has already been bound to an object.
	ErrNotReserved = errors.New("object number is not reserved")

	// ErrOpenReservations is returned by [Writer.Close] if object numbers
	// allocated with [Writer.Alloc] have not been bound via [Writer.Put].
	ErrOpenReservations = errors.New("allocated object numbers are still unbound")

	// ErrObjectGap is returned when the object numbers of the written
	// objects do not form a contiguous range starting at 1, so that no
	// single-section cross-reference table can describe them.
	ErrObjectGap = errors.New("gap in object numbers")

	// ErrIndirectObject is returned by [Copier.Copy] and [Writer.Write]
	// when given a top-level object record instead of a direct object.
	ErrIndirectObject = errors.New("unexpected top-level object record")

	// ErrReferenceChain is returned when resolving a reference yields
	// another reference.  Parsers are expected to collapse such chains.
	ErrReferenceChain = errors.New("reference resolves to another reference")

	// ErrShortRead is returned when a read from a source file returns
	// fewer bytes than the file promised.
	ErrShortRead = errors.New("unexpected short read")

	errVersion = errors.New("unsupported PDF version")
)

// MalformedFileError indicates that a PDF file could not be parsed.
type MalformedFileError struct {
	Pos int64
	Err error
}

func (err *MalformedFileError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "not a valid PDF file" + middle + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}
