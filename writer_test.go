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
	"strings"
	"testing"
)

func helveticaDict() *Dict {
	font := NewDict()
	font.Set("Type", Name("Font"))
	font.Set("Subtype", Name("Type1"))
	font.Set("BaseFont", Name("Helvetica"))
	return font
}

func TestWriteDedup(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	ref1, err := w.Write(helveticaDict())
	if err != nil {
		t.Fatal(err)
	}
	ref2, err := w.Write(helveticaDict())
	if err != nil {
		t.Fatal(err)
	}

	if ref1 != ref2 {
		t.Errorf("identical objects got different references %s and %s",
			ref1, ref2)
	}
	if len(w.bodies) != 1 {
		t.Errorf("expected 1 stored object, got %d", len(w.bodies))
	}

	other := helveticaDict()
	other.Set("BaseFont", Name("Courier"))
	ref3, err := w.Write(other)
	if err != nil {
		t.Fatal(err)
	}
	if ref3 == ref1 {
		t.Error("different objects share a reference")
	}
	if len(w.bodies) != 2 {
		t.Errorf("expected 2 stored objects, got %d", len(w.bodies))
	}
}

func TestReservation(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	ref := w.Alloc()
	if ref.Number() != 1 || ref.Generation() != 0 {
		t.Fatalf("unexpected first reference %s", ref)
	}

	err := w.Put(ref, helveticaDict())
	if err != nil {
		t.Fatal(err)
	}
	if w.bodies[0].ref != ref {
		t.Errorf("object bound to %s instead of %s", w.bodies[0].ref, ref)
	}

	// the number is used up now
	err = w.Put(ref, helveticaDict())
	if !errors.Is(err, ErrNotReserved) {
		t.Errorf("expected ErrNotReserved, got %v", err)
	}

	// numbers from Write cannot be used with Put
	ref2, err := w.Write(Integer(1))
	if err != nil {
		t.Fatal(err)
	}
	err = w.Put(ref2, Integer(2))
	if !errors.Is(err, ErrNotReserved) {
		t.Errorf("expected ErrNotReserved, got %v", err)
	}
}

func TestPutSkipsDedup(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	ref1, err := w.Write(helveticaDict())
	if err != nil {
		t.Fatal(err)
	}

	// an identical object bound to a reservation keeps its own number
	ref2 := w.Alloc()
	err = w.Put(ref2, helveticaDict())
	if err != nil {
		t.Fatal(err)
	}
	if ref1 == ref2 {
		t.Fatal("reservation was deduplicated away")
	}
	if len(w.bodies) != 2 {
		t.Errorf("expected 2 stored objects, got %d", len(w.bodies))
	}

	// later writes still deduplicate
	ref3, err := w.Write(helveticaDict())
	if err != nil {
		t.Fatal(err)
	}
	if ref3 != ref1 {
		t.Errorf("expected %s, got %s", ref1, ref3)
	}
}

func TestCloseErrors(t *testing.T) {
	t.Run("open reservation", func(t *testing.T) {
		w := NewWriter(&bytes.Buffer{})
		catalog, err := w.Write(helveticaDict())
		if err != nil {
			t.Fatal(err)
		}
		w.Alloc()
		err = w.Close(V1_7, catalog)
		if !errors.Is(err, ErrOpenReservations) {
			t.Errorf("expected ErrOpenReservations, got %v", err)
		}
	})

	t.Run("missing catalog", func(t *testing.T) {
		w := NewWriter(&bytes.Buffer{})
		_, err := w.Write(helveticaDict())
		if err != nil {
			t.Fatal(err)
		}
		err = w.Close(V1_7, NewReference(99, 0))
		if !errors.Is(err, ErrNoCatalog) {
			t.Errorf("expected ErrNoCatalog, got %v", err)
		}
	})
}

func TestHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	catalog, err := w.Write(helveticaDict())
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(V1_4, catalog)
	if err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-1.4\n%\xA9\xCD\xC4\xD2\n")) {
		t.Errorf("wrong header %q", out[:20])
	}
	if !bytes.HasSuffix(out, []byte("%%EOF")) {
		t.Errorf("output does not end in %%%%EOF")
	}
}

func TestXRefOffsets(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)

	refs := make([]Reference, 3)
	for i := range refs {
		ref, err := w.Write(Integer(i + 100))
		if err != nil {
			t.Fatal(err)
		}
		refs[i] = ref
	}
	err := w.Close(V1_7, refs[0])
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()

	// every xref entry must point at the "N 0 obj" line of its object
	idx := strings.Index(out, "\nxref\n0 4\n")
	if idx < 0 {
		t.Fatal("xref table not found")
	}
	records := out[idx+len("\nxref\n0 4\n"):]
	if !strings.HasPrefix(records, "0000000000 65535 f \n") {
		t.Fatalf("bad head entry %q", records[:20])
	}
	records = records[20:]
	for i, ref := range refs {
		entry := records[i*20 : (i+1)*20]
		if entry[10] != ' ' || entry[16] != ' ' || entry[17] != 'n' ||
			entry[18] != ' ' || entry[19] != '\n' {
			t.Fatalf("malformed xref entry %q", entry)
		}
		var offset int64
		for _, c := range []byte(entry[:10]) {
			offset = offset*10 + int64(c-'0')
		}
		head := out[offset:]
		want := ref.String() + " obj\n"
		if !strings.HasPrefix(head, want) {
			t.Errorf("entry %d: offset %d points at %q, expected %q",
				i, offset, head[:len(want)], want)
		}
	}

	// startxref must point at the "xref" keyword
	sx := strings.LastIndex(out, "startxref\n")
	if sx < 0 {
		t.Fatal("startxref not found")
	}
	tail := out[sx+len("startxref\n"):]
	end := strings.IndexByte(tail, '\n')
	var xrefPos int64
	for _, c := range []byte(tail[:end]) {
		xrefPos = xrefPos*10 + int64(c-'0')
	}
	if int(xrefPos) != idx+1 {
		t.Errorf("startxref points at %d, xref is at %d", xrefPos, idx+1)
	}
}

func TestObjectGap(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &posWriter{w: buf}
	offsets := map[Reference]int64{
		NewReference(1, 0): 15,
		NewReference(3, 0): 30,
	}
	err := writeXRefTable(w, offsets, NewReference(1, 0), 0)
	if !errors.Is(err, ErrObjectGap) {
		t.Errorf("expected ErrObjectGap, got %v", err)
	}
}

func TestTrailerInfo(t *testing.T) {
	check := func(info Reference, want bool) {
		buf := &bytes.Buffer{}
		w := &posWriter{w: buf}
		offsets := map[Reference]int64{NewReference(1, 0): 15}
		err := writeXRefTable(w, offsets, NewReference(1, 0), info)
		if err != nil {
			t.Fatal(err)
		}
		has := bytes.Contains(buf.Bytes(), []byte("/Info "))
		if has != want {
			t.Errorf("info=%s: /Info present=%t, want %t", info, has, want)
		}
	}
	check(0, false)
	check(NewReference(1, 0), true)
}
