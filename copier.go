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
	"fmt"
)

// A Copier is used to copy objects from one PDF document to another.
// The Copier keeps track of the objects that have already been copied
// and ensures that each object is copied only once.
//
// Indirect objects are allocated in the target writer as needed, and
// references are translated accordingly.  Reference cycles in the source
// are reproduced in the target without infinite recursion.
type Copier struct {
	trans map[Reference]Reference
	r     Getter
	w     *Writer
}

// NewCopier creates a new Copier which copies objects from r into w.
func NewCopier(w *Writer, r Getter) *Copier {
	return &Copier{
		trans: map[Reference]Reference{},
		w:     w,
		r:     r,
	}
}

// Copy copies an object from the source document to the target writer,
// recursively.  The returned object has the same type as the input
// object and contains no references into the source document.
func (c *Copier) Copy(obj Object) (Object, error) {
	// The pending map lives for one top-level call: it records which
	// source references are being materialized further up the recursion,
	// so that cycles can be closed with a forward allocation.
	pending := map[Reference]Reference{}
	return c.copy(obj, pending)
}

func (c *Copier) copy(obj Object, pending map[Reference]Reference) (Object, error) {
	switch x := obj.(type) {
	case *Dict:
		return c.copyDict(x, pending)
	case Array:
		res := make(Array, len(x))
		for i, elem := range x {
			repl, err := c.copy(elem, pending)
			if err != nil {
				return nil, err
			}
			res[i] = repl
		}
		return res, nil
	case *Stream:
		dict, err := c.copyDict(x.Dict, pending)
		if err != nil {
			return nil, err
		}
		return &Stream{Dict: dict, Raw: x.Raw}, nil
	case Reference:
		return c.copyReference(x, pending)
	case *Indirect:
		return nil, fmt.Errorf("object %s: %w", x.Reference, ErrIndirectObject)
	default:
		return obj, nil
	}
}

func (c *Copier) copyDict(dict *Dict, pending map[Reference]Reference) (*Dict, error) {
	res := NewDict()
	for _, name := range dict.Names() {
		repl, err := c.copy(dict.Get(name), pending)
		if err != nil {
			return nil, err
		}
		res.Set(name, repl)
	}
	return res, nil
}

// copyReference translates a source reference into a target reference,
// copying the referenced object if this has not happened yet.
//
// Most objects are written bottom-up: the children of an object are
// stored first, so that the object itself can be written with a known
// reference and deduplicated.  Only when the recursion meets a reference
// whose object is still being built higher up the stack, a target number
// is allocated early and the object is bound to it afterwards.  Acyclic
// subgraphs therefore never lose deduplication to forward allocations.
func (c *Copier) copyReference(ref Reference, pending map[Reference]Reference) (Reference, error) {
	if out, ok := c.trans[ref]; ok {
		return out, nil
	}
	if out, visiting := pending[ref]; visiting {
		if out == 0 {
			// second visit inside the cycle, allocate now
			out = c.w.Alloc()
			pending[ref] = out
			c.trans[ref] = out
		}
		return out, nil
	}

	pending[ref] = 0
	val, err := c.r.Get(ref)
	if err != nil {
		return 0, err
	}
	if _, isReference := val.(Reference); isReference {
		return 0, fmt.Errorf("object %s: %w", ref, ErrReferenceChain)
	}

	repl, err := c.copy(val, pending)
	if err != nil {
		return 0, err
	}

	if out := pending[ref]; out != 0 {
		// a descendant pointed back at us, the number is already fixed
		err = c.w.Put(out, repl)
		if err != nil {
			return 0, err
		}
		delete(pending, ref)
		return out, nil
	}

	out, err := c.w.Write(repl)
	if err != nil {
		return 0, err
	}
	c.trans[ref] = out
	delete(pending, ref)
	return out, nil
}

// Redirect records a fixed translation for a source reference, so that
// later copies map it to newRef instead of copying the stored object.
func (c *Copier) Redirect(origRef, newRef Reference) {
	c.trans[origRef] = newRef
}
