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
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	sample := NewDict()
	sample.Set("Type", Name("Pages"))
	sample.Set("Count", Integer(2))

	unordered := NewDict()
	unordered.Set("B", Integer(1))
	unordered.Set("A", Integer(2))

	stream := &Stream{
		Dict: NewDict(),
		Raw:  []byte("hello"),
	}
	stream.Dict.Set("Length", Integer(5))

	cases := []struct {
		in  Object
		out string
	}{
		{nil, "null "},
		{Bool(true), "true "},
		{Bool(false), "false "},
		{Integer(42), "42 "},
		{Integer(-7), "-7 "},
		{Real(1.5), "1.5 "},
		{Real(612), "612 "},
		{Name("Pages"), "/Pages "},
		{Name("A B"), "/A#20B "},
		{Name("x/y"), "/x#2Fy "},
		{String("hello"), "(hello)"},
		{String("a (test"), `(a \(test)`},
		{String(`a\b`), `(a\\b)`},
		{String(""), "()"},
		{String("π"), "(\xfe\xff\x03\xc0)"},
		{String("û"), "(\xfe\xff\x00\xfb)"},
		{HexString{0xAB, 0x01}, "<AB01>"},
		{HexString{}, "<>"},
		{Comment("PDF-1.7"), "%PDF-1.7\n"},
		{Array{Integer(0), Integer(0), Integer(612), Integer(792)}, "[0 0 612 792 ]"},
		{Array{Integer(1), nil, Integer(3)}, "[1 null 3 ]"},
		{NewReference(3, 0), "3 0 R "},
		{NewReference(12, 5), "12 5 R "},
		{sample, "<</Type /Pages /Count 2 >>"},
		{unordered, "<</B 1 /A 2 >>"},
		{stream, "<</Length 5 >>\nstream\nhello\nendstream"},
	}
	for _, test := range cases {
		out := format(test.in)
		if out != test.out {
			t.Errorf("object wrongly formatted, expected %q but got %q",
				test.out, out)
		}
	}
}

func TestStringEncodingThreshold(t *testing.T) {
	// code point 250 still uses the single-byte encoding, ...
	if out := format(String("ú")); out != "(\xfa)" {
		t.Errorf("expected Latin-1 form, got %q", out)
	}
	// ... code point 251 switches the whole string to UTF-16BE
	if out := format(String("aû")); out != "(\xfe\xff\x00a\x00\xfb)" {
		t.Errorf("expected UTF-16BE form, got %q", out)
	}
}

func TestDecodeTextString(t *testing.T) {
	cases := []struct {
		in  []byte
		out String
	}{
		{[]byte("hello"), "hello"},
		{[]byte{0xE9}, "é"},
		{[]byte{0xFE, 0xFF, 0x00, 0x48, 0x00, 0x69}, "Hi"},
		{[]byte{0xFE, 0xFF, 0x03, 0xC0}, "π"},
	}
	for i, test := range cases {
		out := decodeTextString(test.in)
		if out != test.out {
			t.Errorf("%d: expected %q but got %q", i, test.out, out)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []String{
		"",
		"hello",
		"a (test) string",
		`back\slash`,
		"úé",
		"wide π string",
		"û",
	}
	for _, orig := range cases {
		enc := format(orig)
		s := newScanner(strings.NewReader(enc[1:]), nil)
		back, err := s.ReadQuotedString()
		if err != nil {
			t.Errorf("%q: %v", orig, err)
		} else if back != orig {
			t.Errorf("round trip failed: %q != %q", back, orig)
		}
	}
}

func TestReferencePacking(t *testing.T) {
	ref := NewReference(12345, 7)
	if ref.Number() != 12345 || ref.Generation() != 7 {
		t.Errorf("got %d %d", ref.Number(), ref.Generation())
	}
	if ref.String() != "12345 7" {
		t.Errorf("got %q", ref.String())
	}
}
