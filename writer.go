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
	"fmt"
	"hash/fnv"
	"io"
	"os"
)

// Writer collects indirect objects for a new PDF file and writes the
// complete file when it is closed.
//
// Objects are stored in serialized form as soon as they are added.
// Adding an object which serializes to the same bytes as an earlier
// object returns the earlier object's reference instead of storing a
// second copy.  Object numbers can also be allocated before the object
// is known, using [Writer.Alloc], so that a parent object can refer to a
// child which is written later.
type Writer struct {
	w         *posWriter
	closeSink bool

	nextNumber uint32
	reserved   map[uint32]bool

	bodies    []writerBody
	index     map[Reference]int
	byContent map[uint32][]int

	scratch bytes.Buffer
}

// writerBody is the serialized form of one stored object, i.e. the bytes
// between "obj" and "endobj" in the final file.
type writerBody struct {
	ref  Reference
	data []byte
}

// NewWriter prepares a new PDF file for writing.  The file contents are
// produced on w when [Writer.Close] is called.  The caller remains
// responsible for closing w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:          &posWriter{w: w},
		nextNumber: 1,
		reserved:   map[uint32]bool{},
		index:      map[Reference]int{},
		byContent:  map[uint32][]int{},
	}
}

// Create creates the named PDF file and prepares it for writing.  If a
// previous file with the same name exists, it is overwritten.  The file
// is closed by [Writer.Close].
func Create(name string) (*Writer, error) {
	fd, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	res := NewWriter(fd)
	res.closeSink = true
	return res, nil
}

// Alloc allocates an object number for an indirect object which will be
// written later.  The returned reference can be stored inside other
// objects right away; the object itself must be supplied via
// [Writer.Put] before the writer is closed.
func (w *Writer) Alloc() Reference {
	number := w.nextNumber
	w.nextNumber++
	w.reserved[number] = true
	return NewReference(number, 0)
}

// Write stores obj as an indirect object and returns a reference to it.
// If an object with the same byte representation has been stored before,
// no new object is created and the existing reference is returned.
func (w *Writer) Write(obj Object) (Reference, error) {
	if _, isIndirect := obj.(*Indirect); isIndirect {
		return 0, ErrIndirectObject
	}

	body, err := w.serialize(obj)
	if err != nil {
		return 0, err
	}

	hash := contentHash(body)
	for _, idx := range w.byContent[hash] {
		if bytes.Equal(w.bodies[idx].data, body) {
			return w.bodies[idx].ref, nil
		}
	}

	ref := NewReference(w.nextNumber, 0)
	w.nextNumber++
	w.store(ref, body, hash)
	return ref, nil
}

// Put stores obj under a reference previously allocated with
// [Writer.Alloc].  The object keeps the allocated number even if an
// identical object has been stored before, so that references captured
// before the object was known stay valid.  Later calls to [Writer.Write]
// may still deduplicate against the stored bytes.
func (w *Writer) Put(ref Reference, obj Object) error {
	number := ref.Number()
	if ref.Generation() != 0 || !w.reserved[number] {
		return fmt.Errorf("object %s: %w", ref, ErrNotReserved)
	}
	if _, isIndirect := obj.(*Indirect); isIndirect {
		return ErrIndirectObject
	}

	body, err := w.serialize(obj)
	if err != nil {
		return err
	}

	delete(w.reserved, number)
	w.store(ref, body, contentHash(body))
	return nil
}

// serialize writes obj into the scratch buffer and returns a copy of the
// resulting bytes.  The scratch buffer is reused between calls.
func (w *Writer) serialize(obj Object) ([]byte, error) {
	w.scratch.Reset()
	err := writeObject(&w.scratch, obj)
	if err != nil {
		return nil, err
	}
	body := make([]byte, w.scratch.Len())
	copy(body, w.scratch.Bytes())
	return body, nil
}

func (w *Writer) store(ref Reference, body []byte, hash uint32) {
	idx := len(w.bodies)
	w.bodies = append(w.bodies, writerBody{ref: ref, data: body})
	w.index[ref] = idx
	w.byContent[hash] = append(w.byContent[hash], idx)
}

// Close writes the complete PDF file: the header, all stored objects,
// and the cross-reference table with the trailer.  The catalog reference
// must belong to an object stored in this writer.
//
// If the writer owns the output sink (see [Create]), the sink is closed
// as well, even if writing fails.  The writer cannot be used afterwards.
func (w *Writer) Close(ver Version, catalog Reference) error {
	err := w.flush(ver, catalog)
	if w.closeSink {
		if closer, ok := w.w.w.(io.Closer); ok {
			closeErr := closer.Close()
			if err == nil {
				err = closeErr
			}
		}
	}
	w.w = nil
	return err
}

func (w *Writer) flush(ver Version, catalog Reference) error {
	if len(w.reserved) > 0 {
		return fmt.Errorf("%w (%d left)", ErrOpenReservations, len(w.reserved))
	}
	if _, ok := w.index[catalog]; !ok {
		return fmt.Errorf("object %s: %w", catalog, ErrNoCatalog)
	}

	verString, err := ver.ToString()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w.w, "%PDF-"+verString+"\n%\xA9\xCD\xC4\xD2\n")
	if err != nil {
		return err
	}

	offsets := make(map[Reference]int64, len(w.bodies))
	for _, body := range w.bodies {
		offsets[body.ref] = w.w.pos
		_, err = fmt.Fprintf(w.w, "%d %d obj\n", body.ref.Number(), body.ref.Generation())
		if err != nil {
			return err
		}
		_, err = w.w.Write(body.data)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w.w, "\nendobj\n")
		if err != nil {
			return err
		}
	}

	return writeXRefTable(w.w, offsets, catalog, 0)
}

// contentHash returns the interning hash of a serialized object body.
// Equal bodies always hash equally; colliding bodies are told apart by a
// full comparison.
func contentHash(body []byte) uint32 {
	h := fnv.New32a()
	h.Write(body)
	return h.Sum32()
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
