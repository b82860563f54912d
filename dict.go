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
	"io"
	"strconv"
	"strings"
)

// Dict represents a dictionary object in a PDF file.  Entries keep the
// order in which they were first added, and the dictionary is written in
// this order.  This makes the byte representation of a dictionary
// reproducible, which the deduplication in [Writer] relies on.
type Dict struct {
	names  []Name
	values map[Name]Object
}

// NewDict allocates a new, empty dictionary.
func NewDict() *Dict {
	return &Dict{
		values: map[Name]Object{},
	}
}

// Set adds an entry to the dictionary, or replaces the value of an
// existing entry in place.
func (d *Dict) Set(name Name, value Object) {
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = value
}

// Get returns the value stored under the given name, or nil if there is
// no such entry.
func (d *Dict) Get(name Name) Object {
	if d == nil {
		return nil
	}
	return d.values[name]
}

// Has reports whether the dictionary contains an entry with the given
// name.
func (d *Dict) Has(name Name) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[name]
	return ok
}

// Delete removes the entry with the given name, if present.
func (d *Dict) Delete(name Name) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries in the dictionary.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Names returns the entry names in insertion order.  The returned slice
// must not be modified.
func (d *Dict) Names() []Name {
	if d == nil {
		return nil
	}
	return d.names
}

// Clone returns a shallow copy of the dictionary: entry order and values
// are copied, the values themselves are shared.
func (d *Dict) Clone() *Dict {
	res := &Dict{
		names:  make([]Name, len(d.names)),
		values: make(map[Name]Object, len(d.values)),
	}
	copy(res.names, d.names)
	for name, val := range d.values {
		res.values[name] = val
	}
	return res
}

func (d *Dict) String() string {
	res := []string{}
	if tp, ok := d.Get("Type").(Name); ok {
		res = append(res, string(tp)+" Dict")
	} else {
		res = append(res, "Dict")
	}
	res = append(res, strconv.Itoa(d.Len())+" entries")
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
func (d *Dict) PDF(w io.Writer) error {
	if d == nil {
		_, err := io.WriteString(w, "null ")
		return err
	}

	_, err := io.WriteString(w, "<<")
	if err != nil {
		return err
	}
	for _, name := range d.names {
		err = name.PDF(w)
		if err != nil {
			return err
		}
		err = writeObject(w, d.values[name])
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, ">>")
	return err
}

// Stream represents a stream object in a PDF file.  The payload is kept
// as raw bytes and written verbatim; keeping the Length entry of the
// dictionary consistent with len(Raw) is the caller's responsibility.
type Stream struct {
	Dict *Dict
	Raw  []byte
}

// PDF implements the [Object] interface.
func (x *Stream) PDF(w io.Writer) error {
	err := x.Dict.PDF(w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nstream\n")
	if err != nil {
		return err
	}
	_, err = w.Write(x.Raw)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\nendstream")
	return err
}
