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
	"fmt"
)

// maxTreeDepth bounds the descent into page trees, so that malformed
// files with reference loops in the Kids entries cannot hang the walk.
const maxTreeDepth = 256

// Document is an in-memory PDF document, used as the source of a merge.
// Documents are either built programmatically or read from a file using
// [ReadDocument].
type Document struct {
	version    Version
	objects    map[Reference]Object
	trailer    *Dict
	lastNumber uint32
}

// NewDocument creates a new, empty document.
func NewDocument(ver Version) *Document {
	return &Document{
		version: ver,
		objects: map[Reference]Object{},
		trailer: NewDict(),
	}
}

// Version returns the PDF version of the document.
func (d *Document) Version() Version {
	return d.version
}

// Trailer returns the trailer dictionary of the document.
func (d *Document) Trailer() *Dict {
	return d.trailer
}

// AddObject stores obj as a new indirect object and returns its
// reference.
func (d *Document) AddObject(obj Object) Reference {
	d.lastNumber++
	ref := NewReference(d.lastNumber, 0)
	d.objects[ref] = obj
	return ref
}

// SetObject stores obj under a caller-chosen reference.  Any object
// already stored under the reference is replaced.
func (d *Document) SetObject(ref Reference, obj Object) {
	if ref.Number() > d.lastNumber {
		d.lastNumber = ref.Number()
	}
	d.objects[ref] = obj
}

// SetCatalog records ref as the document catalog in the trailer.
func (d *Document) SetCatalog(ref Reference) {
	d.trailer.Set("Root", ref)
}

// Get implements the [Getter] interface.  References to objects not
// present in the document resolve to null.
func (d *Document) Get(ref Reference) (Object, error) {
	return d.objects[ref], nil
}

// Encrypted reports whether the document uses encryption.
func (d *Document) Encrypted() bool {
	return d.trailer.Has("Encrypt")
}

// Catalog returns the document catalog.
func (d *Document) Catalog() (*Dict, error) {
	cat, err := GetDict(d, d.trailer.Get("Root"))
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, &MalformedFileError{Err: errors.New("missing document catalog")}
	}
	return cat, nil
}

// pagesRoot returns the root node of the document's page tree.
func (d *Document) pagesRoot() (*Dict, error) {
	cat, err := d.Catalog()
	if err != nil {
		return nil, err
	}
	root, err := GetDict(d, cat.Get("Pages"))
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &MalformedFileError{Err: errors.New("catalog has no page tree")}
	}
	return root, nil
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() (int, error) {
	root, err := d.pagesRoot()
	if err != nil {
		return 0, err
	}
	count, err := GetInt(d, root.Get("Count"))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// PageNode is a node of a document's page tree, together with the chain
// of its ancestors up to the tree root.
type PageNode struct {
	Dict   *Dict
	Parent *PageNode
}

// IsLeaf reports whether the node is a page object rather than an
// intermediate page-tree node.
func (n *PageNode) IsLeaf() bool {
	tp, _ := n.Dict.Get("Type").(Name)
	return tp == "Page"
}

// Page returns the page with the given number.  Page numbers start at 1.
// The Parent chain of the returned node reaches up to the root of the
// document's page tree.
func (d *Document) Page(number int) (*PageNode, error) {
	if number < 1 {
		return nil, fmt.Errorf("invalid page number %d", number)
	}

	root, err := d.pagesRoot()
	if err != nil {
		return nil, err
	}

	node := &PageNode{Dict: root}
	skip := Integer(number - 1)
	for depth := 0; depth < maxTreeDepth; depth++ {
		kids, err := GetArray(d, node.Dict.Get("Kids"))
		if err != nil {
			return nil, err
		}

		pos := -1
		for i, kid := range kids {
			kidDict, err := GetDict(d, kid)
			if err != nil {
				return nil, err
			}
			if kidDict == nil {
				return nil, &MalformedFileError{Err: errors.New("page tree node is missing")}
			}
			if tp, _ := kidDict.Get("Type").(Name); tp == "Pages" {
				count, err := GetInt(d, kidDict.Get("Count"))
				if err != nil {
					return nil, err
				}
				if skip < count {
					node = &PageNode{Dict: kidDict, Parent: node}
					pos = i
					break
				}
				skip -= count
			} else {
				if skip == 0 {
					return &PageNode{Dict: kidDict, Parent: node}, nil
				}
				skip--
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("page %d not found", number)
		}
	}
	return nil, &MalformedFileError{Err: errors.New("page tree too deep")}
}
