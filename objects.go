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
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
)

// Object represents an object in a PDF file.  The types implementing this
// interface are Bool, Integer, Real, Name, String, HexString, Array, *Dict,
// *Stream, Comment, Reference and *Indirect.  A nil Object represents the
// PDF null object.
type Object interface {
	// PDF writes the PDF file representation of the object to w.
	//
	// Atoms (numbers, names, references, booleans) are terminated by a
	// single space, so that objects can be concatenated without extra
	// separators.
	PDF(w io.Writer) error
}

// Bool represents a boolean value in a PDF file.
type Bool bool

// PDF implements the [Object] interface.
func (x Bool) PDF(w io.Writer) error {
	var s string
	if x {
		s = "true "
	} else {
		s = "false "
	}
	_, err := io.WriteString(w, s)
	return err
}

// Integer represents an integer constant in a PDF file.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(x), 10)+" ")
	return err
}

// Real represents a real number in a PDF file.
type Real float64

// PDF implements the [Object] interface.
func (x Real) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatFloat(float64(x), 'g', -1, 64)+" ")
	return err
}

// Name represents a name object in a PDF file.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	buf := &bytes.Buffer{}
	buf.WriteByte('/')
	for i := 0; i < len(x); i++ {
		c := x[i]
		if c < 0x21 || c > 0x7e || isDelimiter[c] {
			fmt.Fprintf(buf, "#%02X", c)
		} else {
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(' ')
	_, err := w.Write(buf.Bytes())
	return err
}

// maxLatin1 is the largest code point which is written using the
// single-byte string encoding.  Strings containing larger code points are
// written as UTF-16BE with a byte order mark.
const maxLatin1 = 250

var (
	utf16Enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	utf16Dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
)

// String represents a text string in a PDF file.  The value is Go text
// (UTF-8); the byte encoding inside the file is chosen when the string is
// written.
type String string

// PDF implements the [Object] interface.
//
// Strings where no code point exceeds [maxLatin1] are written as Latin-1
// literal strings, with parentheses and backslashes escaped.
// All other strings are written as UTF-16BE, starting with a byte order
// mark and with no further escaping.
func (x String) PDF(w io.Writer) error {
	wide := false
	for _, r := range x {
		if r > maxLatin1 {
			wide = true
			break
		}
	}

	buf := &bytes.Buffer{}
	buf.WriteByte('(')
	if wide {
		enc, err := utf16Enc.Bytes([]byte(x))
		if err != nil {
			return err
		}
		buf.Write(enc)
	} else {
		for _, r := range x {
			c := byte(r)
			if c == '(' || c == ')' || c == '\\' {
				buf.WriteByte('\\')
			}
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
	_, err := w.Write(buf.Bytes())
	return err
}

// decodeTextString converts the raw bytes of a literal or hex string into
// a [String], undoing the encoding chosen by [String.PDF].
func decodeTextString(raw []byte) String {
	if bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		dec, err := utf16Dec.Bytes(raw)
		if err == nil {
			return String(dec)
		}
	}
	runes := make([]rune, len(raw))
	for i, c := range raw {
		runes[i] = rune(c)
	}
	return String(runes)
}

// HexString represents a hexadecimal string in a PDF file.  Unlike
// [String], the value is a sequence of raw bytes.
type HexString []byte

// PDF implements the [Object] interface.
func (x HexString) PDF(w io.Writer) error {
	_, err := fmt.Fprintf(w, "<%X>", []byte(x))
	return err
}

// Comment represents a comment in a PDF file.  The text must not contain
// line breaks.
type Comment string

// PDF implements the [Object] interface.
func (x Comment) PDF(w io.Writer) error {
	_, err := io.WriteString(w, "%"+string(x)+"\n")
	return err
}

// Array represents an array of objects in a PDF file.
type Array []Object

// PDF implements the [Object] interface.
func (x Array) PDF(w io.Writer) error {
	_, err := io.WriteString(w, "[")
	if err != nil {
		return err
	}
	for _, elem := range x {
		err = writeObject(w, elem)
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "]")
	return err
}

// Reference represents a reference to an indirect object in a PDF file.
// The lower 32 bits give the object number, the next 16 bits the
// generation number.  The zero value does not refer to any object.
type Reference uint64

// NewReference creates a new reference with the given object number and
// generation.
func NewReference(number uint32, generation uint16) Reference {
	return Reference(uint64(number) | uint64(generation)<<32)
}

// Number returns the object number of the reference.
func (x Reference) Number() uint32 {
	return uint32(x)
}

// Generation returns the generation number of the reference.
func (x Reference) Generation() uint16 {
	return uint16(x >> 32)
}

func (x Reference) String() string {
	return strconv.FormatUint(uint64(x.Number()), 10) + " " +
		strconv.FormatUint(uint64(x.Generation()), 10)
}

// PDF implements the [Object] interface.
func (x Reference) PDF(w io.Writer) error {
	_, err := io.WriteString(w, x.String()+" R ")
	return err
}

// Indirect is a numbered top-level object as read from a PDF file.
// Indirect objects are only produced by parsers; they cannot be copied
// between documents and cannot be stored via [Writer.Write].
type Indirect struct {
	Reference Reference
	Obj       Object
}

// PDF implements the [Object] interface.
func (x *Indirect) PDF(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s obj\n", x.Reference)
	if err != nil {
		return err
	}
	err = writeObject(w, x.Obj)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nendobj\n")
	return err
}

// writeObject writes obj to w, writing "null" for nil objects.
func writeObject(w io.Writer, obj Object) error {
	if obj == nil {
		_, err := io.WriteString(w, "null ")
		return err
	}
	return obj.PDF(w)
}

// format returns the serialized form of obj as a string.
func format(obj Object) string {
	buf := &bytes.Buffer{}
	err := writeObject(buf, obj)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return buf.String()
}

var isDelimiter = [256]bool{
	'(': true,
	')': true,
	'<': true,
	'>': true,
	'[': true,
	']': true,
	'{': true,
	'}': true,
	'/': true,
	'%': true,
}
