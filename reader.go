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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/exp/maps"
)

// Reader reads objects from a PDF file with a classic cross-reference
// table.  Objects are parsed lazily and cached.
type Reader struct {
	r    io.ReaderAt
	size int64

	version Version
	xref    map[uint32]xrefEntry
	trailer *Dict

	cache   map[Reference]Object
	loading map[Reference]bool
}

type xrefEntry struct {
	pos        int64
	generation uint16
}

// NewReader opens a PDF file for reading.  Only files using classic
// cross-reference tables are supported; files with cross-reference
// streams are rejected.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	res := &Reader{
		r:       r,
		size:    size,
		xref:    map[uint32]xrefEntry{},
		trailer: NewDict(),
		cache:   map[Reference]Object{},
		loading: map[Reference]bool{},
	}

	version, err := res.scannerAt(0).readHeaderVersion()
	if err != nil {
		return nil, err
	}
	res.version = version

	err = res.readXRef()
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Version returns the PDF version from the file header.
func (r *Reader) Version() Version {
	return r.version
}

// Trailer returns the trailer dictionary, restricted to the entries
// which describe the document rather than the cross-reference table.
func (r *Reader) Trailer() *Dict {
	return r.trailer
}

func (r *Reader) scannerAt(pos int64) *scanner {
	section := io.NewSectionReader(r.r, pos, r.size-pos)
	return newScanner(section, func(obj Object) (Integer, error) {
		return GetInt(r, obj)
	})
}

// Get implements the [Getter] interface.  References without a matching
// cross-reference entry resolve to null.  Chains of indirect references
// are collapsed, so that the returned object is never a [Reference].
func (r *Reader) Get(ref Reference) (Object, error) {
	if obj, ok := r.cache[ref]; ok {
		return obj, nil
	}

	entry, ok := r.xref[ref.Number()]
	if !ok || entry.generation != ref.Generation() {
		return nil, nil
	}

	if r.loading[ref] {
		return nil, &MalformedFileError{
			Pos: entry.pos,
			Err: errors.New("loop in indirect references"),
		}
	}
	r.loading[ref] = true
	defer delete(r.loading, ref)

	ind, err := r.scannerAt(entry.pos).ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	if ind.Reference != ref {
		return nil, &MalformedFileError{
			Pos: entry.pos,
			Err: fmt.Errorf("expected object %s but found %s", ref, ind.Reference),
		}
	}

	obj := ind.Obj
	if next, isReference := obj.(Reference); isReference {
		obj, err = r.Get(next)
		if err != nil {
			return nil, err
		}
	}

	r.cache[ref] = obj
	return obj, nil
}

// findXRef locates the cross-reference table position stored in the
// startxref line near the end of the file.
func (r *Reader) findXRef() (int64, error) {
	pos, err := r.lastOccurrence("startxref")
	if err != nil {
		return 0, err
	}
	s := r.scannerAt(pos + int64(len("startxref")))
	err = s.SkipWhiteSpace()
	if err != nil {
		return 0, err
	}

	xRefPos, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}
	if xRefPos <= 0 || int64(xRefPos) >= r.size {
		return 0, &MalformedFileError{
			Pos: pos,
			Err: errors.New("invalid xref position"),
		}
	}
	return int64(xRefPos), nil
}

func (r *Reader) lastOccurrence(pat string) (int64, error) {
	const chunkSize = 1024

	buf := make([]byte, chunkSize)
	k := int64(len(pat))
	pos := r.size
	for pos >= k {
		start := pos - chunkSize
		if start < 0 {
			start = 0
		}
		n, err := r.r.ReadAt(buf[:pos-start], start)
		if err != nil && err != io.EOF {
			return 0, err
		}

		idx := bytes.LastIndex(buf[:n], []byte(pat))
		if idx >= 0 {
			return start + int64(idx), nil
		}

		pos = start + k - 1
	}
	return 0, &MalformedFileError{
		Pos: 0,
		Err: errors.New(pat + " not found"),
	}
}

// readXRef reads the chain of cross-reference tables, following Prev
// entries, and fills in r.xref and r.trailer.
func (r *Reader) readXRef() error {
	start, err := r.findXRef()
	if err != nil {
		return err
	}

	first := true
	seen := map[int64]bool{}
	for {
		// avoid xref loops
		if seen[start] {
			break
		}
		seen[start] = true

		s := r.scannerAt(start)
		buf, err := s.Peek(4)
		if err != nil {
			return err
		}
		if !bytes.Equal(buf, []byte("xref")) {
			return &MalformedFileError{
				Pos: start,
				Err: errors.New("cross-reference streams are not supported"),
			}
		}

		dict, err := r.readXRefTable(s)
		if err != nil {
			return err
		}

		if first {
			for _, key := range []Name{"Root", "Encrypt", "Info", "ID"} {
				if val := dict.Get(key); val != nil {
					r.trailer.Set(key, val)
				}
			}
			first = false
		}

		prev := dict.Get("Prev")
		if prev == nil {
			break
		}
		prevStart, ok := prev.(Integer)
		if !ok || prevStart <= 0 || int64(prevStart) >= r.size {
			return &MalformedFileError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %s", format(prev)),
			}
		}
		start = int64(prevStart)
	}

	return nil
}

func (r *Reader) readXRefTable(s *scanner) (*Dict, error) {
	err := s.SkipString("xref")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}

	for {
		buf, err := s.Peek(1)
		if err != nil {
			return nil, err
		}
		if len(buf) == 0 || buf[0] < '0' || buf[0] > '9' {
			break
		}

		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
		count, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}

		err = r.readXRefSection(s, uint32(start), uint32(start+count))
		if err != nil {
			return nil, err
		}
		err = s.SkipWhiteSpace()
		if err != nil {
			return nil, err
		}
	}

	err = s.SkipString("trailer")
	if err != nil {
		return nil, err
	}
	err = s.SkipWhiteSpace()
	if err != nil {
		return nil, err
	}
	return s.ReadDict()
}

// readXRefSection reads the 20-byte records of one cross-reference
// subsection.  Entries from newer tables win over entries in tables
// reached via Prev.
func (r *Reader) readXRefSection(s *scanner, start, end uint32) error {
	for number := start; number < end; number++ {
		buf, err := s.Peek(20)
		if err != nil {
			return err
		}
		if len(buf) < 20 {
			return &MalformedFileError{
				Pos: s.filePos(),
				Err: io.ErrUnexpectedEOF,
			}
		}

		offset, err := strconv.ParseInt(string(buf[:10]), 10, 64)
		if err != nil {
			return err
		}
		generation, err := strconv.ParseUint(string(buf[11:16]), 10, 16)
		if err != nil {
			return err
		}

		var used bool
		switch buf[17] {
		case 'f':
			used = false
		case 'n':
			used = true
		default:
			return &MalformedFileError{
				Pos: s.filePos(),
				Err: errors.New("malformed xref entry"),
			}
		}
		s.pos += 20

		if _, ok := r.xref[number]; ok {
			continue
		}
		if used && number > 0 {
			r.xref[number] = xrefEntry{
				pos:        offset,
				generation: uint16(generation),
			}
		}
	}
	return nil
}

// ReadDocument reads a complete PDF document into memory.
func ReadDocument(r io.ReaderAt, size int64) (*Document, error) {
	pdf, err := NewReader(r, size)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(pdf.version)
	numbers := maps.Keys(pdf.xref)
	for _, number := range numbers {
		ref := NewReference(number, pdf.xref[number].generation)
		obj, err := pdf.Get(ref)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			doc.SetObject(ref, obj)
		}
	}
	for _, key := range pdf.trailer.Names() {
		doc.trailer.Set(key, pdf.trailer.Get(key))
	}

	return doc, nil
}

// ReadFile reads the named PDF file into memory.
func ReadFile(name string) (*Document, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	fi, err := fd.Stat()
	if err != nil {
		return nil, err
	}
	return ReadDocument(fd, fi.Size())
}
