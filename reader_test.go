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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readObjFrom(t *testing.T, src string) Object {
	t.Helper()
	s := newScanner(strings.NewReader(src), func(obj Object) (Integer, error) {
		length, _ := obj.(Integer)
		return length, nil
	})
	obj, err := s.ReadObject()
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	return obj
}

func TestScannerObjects(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"null ", "null "},
		{"true ", "true "},
		{"false ", "false "},
		{"42 ", "42 "},
		{"-7 ", "-7 "},
		{"3.14 ", "3.14 "},
		{"/Name ", "/Name "},
		{"/A#20B ", "/A#20B "},
		{"(hello) ", "(hello)"},
		{"(he(ll)o) ", "(he\\(ll\\)o)"},
		{"<414243> ", "<414243>"},
		{"<41424> ", "<414240>"},
		{"[1 2 3] ", "[1 2 3 ]"},
		{"[1 0 R 2] ", "[1 0 R 2 ]"},
		{"<</B 1/A 2>> ", "<</B 1 /A 2 >>"},
		{"<</Ref 3 0 R/Val 4>> ", "<</Ref 3 0 R /Val 4 >>"},
	}
	for _, test := range cases {
		obj := readObjFrom(t, test.in)
		if got := format(obj); got != test.out {
			t.Errorf("%q: got %q, want %q", test.in, got, test.out)
		}
	}
}

func TestScannerDictOrder(t *testing.T) {
	obj := readObjFrom(t, "<</Zebra 1/Apple 2/Mango 3>> ")
	dict := obj.(*Dict)
	if diff := cmp.Diff([]Name{"Zebra", "Apple", "Mango"}, dict.Names()); diff != "" {
		t.Errorf("wrong entry order (-want +got):\n%s", diff)
	}
}

func TestScannerQuotedStrings(t *testing.T) {
	cases := []struct {
		in  string
		out String
	}{
		{`()`, ""},
		{`(test string)`, "test string"},
		{`(he(ll)o)`, "he(ll)o"},
		{`(he\)ll\(o)`, "he)ll(o"},
		{"(hell\\\no)", "hello"},
		{`(h\145llo)`, "hello"},
		{`(\0612)`, "12"},
	}
	for _, test := range cases {
		s := newScanner(strings.NewReader(test.in[1:]), nil)
		out, err := s.ReadQuotedString()
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
		} else if out != test.out {
			t.Errorf("%q: got %q, want %q", test.in, out, test.out)
		}
	}
}

func TestScannerStream(t *testing.T) {
	src := "<</Length 11>> stream\nhello world\nendstream "
	s := newScanner(strings.NewReader(src), func(obj Object) (Integer, error) {
		return obj.(Integer), nil
	})
	obj, err := s.ReadObject()
	if err != nil {
		t.Fatal(err)
	}
	stream, ok := obj.(*Stream)
	if !ok {
		t.Fatalf("expected *Stream, got %T", obj)
	}
	if string(stream.Raw) != "hello world" {
		t.Errorf("wrong payload %q", stream.Raw)
	}
}

// copyDocument writes a complete copy of doc and returns the file bytes.
func copyDocument(t *testing.T, doc *Document) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	c := NewCopier(w, doc)

	rootRef, _ := doc.Trailer().Get("Root").(Reference)
	catalogObj, err := c.Copy(rootRef)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(doc.Version(), catalogObj.(Reference))
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	src := makeTestDoc(3)

	// give the second page some content to exercise stream reading
	node, err := src.Page(2)
	if err != nil {
		t.Fatal(err)
	}
	contents := "0 0 612 792 re f\n"
	dict := NewDict()
	dict.Set("Length", Integer(len(contents)))
	node.Dict.Set("Contents", src.AddObject(&Stream{
		Dict: dict,
		Raw:  []byte(contents),
	}))

	out := copyDocument(t, src)

	back, err := ReadDocument(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}

	if back.Version() != V1_7 {
		t.Errorf("wrong version %s", back.Version())
	}
	n, err := back.NumPages()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages, got %d", n)
	}

	page, err := back.Page(2)
	if err != nil {
		t.Fatal(err)
	}
	mediaBox, err := GetArray(back, page.Dict.Get("MediaBox"))
	if err != nil {
		t.Fatal(err)
	}
	if format(mediaBox) != "[0 0 612 792 ]" {
		t.Errorf("wrong MediaBox %s", format(mediaBox))
	}

	streamObj, err := Resolve(back, page.Dict.Get("Contents"))
	if err != nil {
		t.Fatal(err)
	}
	stream, ok := streamObj.(*Stream)
	if !ok {
		t.Fatalf("expected *Stream, got %T", streamObj)
	}
	if string(stream.Raw) != contents {
		t.Errorf("wrong contents %q", stream.Raw)
	}
}

func TestReaderRejectsXRefStreams(t *testing.T) {
	body := "%PDF-1.5\n1 0 obj\n<<>>\nendobj\nstartxref\n9\n%%EOF"
	_, err := NewReader(strings.NewReader(body), int64(len(body)))
	if err == nil || !strings.Contains(err.Error(), "cross-reference streams") {
		t.Errorf("expected cross-reference stream error, got %v", err)
	}
}

func TestReaderMissingObject(t *testing.T) {
	src := makeTestDoc(1)
	out := copyDocument(t, src)

	r, err := NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	obj, err := r.Get(NewReference(999, 0))
	if err != nil {
		t.Fatal(err)
	}
	if obj != nil {
		t.Errorf("missing object resolved to %v", obj)
	}
}
