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

// Package pagetree builds the page tree of a merged PDF document.
//
// Pages copied from the source documents are collected into groups of at
// most [MaxGroupSize] pages.  Each group becomes one intermediate node of
// the new page tree, and resources which a page inherits from its
// ancestors in the source document are re-attached to the group node.
package pagetree

import (
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/pdfmerge"
)

// MaxGroupSize is the maximum number of pages collected under a single
// intermediate page-tree node.
const MaxGroupSize = 100

// Writer assembles the page tree of the output document.  Pages are
// added with [Writer.AddDocument]; the finished tree, the catalog and
// the complete file are written by [Writer.Close].
type Writer struct {
	out *pdfmerge.Writer

	// root is the reference of the page-tree root.  It is allocated
	// when the Writer is created and bound last, so that all
	// intermediate nodes can name it as their parent.
	root pdfmerge.Reference

	group          []pdfmerge.Reference
	groupResources *pdfmerge.Dict
	parent         pdfmerge.Reference

	groupRefs []pdfmerge.Reference
	pageCount int
	version   pdfmerge.Version
}

// NewWriter creates a new page-tree writer on top of out.
func NewWriter(out *pdfmerge.Writer) *Writer {
	return &Writer{
		out:            out,
		root:           out.Alloc(),
		groupResources: pdfmerge.NewDict(),
		version:        pdfmerge.V1_2,
	}
}

// AddDocument copies the given pages of doc into the output document.
// Page numbers start at 1; a nil slice selects all pages in order.
// Encrypted documents are rejected with [pdfmerge.ErrEncrypted].
func (w *Writer) AddDocument(doc *pdfmerge.Document, pages []int) error {
	if doc.Encrypted() {
		return fmt.Errorf("cannot merge: %w", pdfmerge.ErrEncrypted)
	}
	if ver := doc.Version(); ver > w.version {
		w.version = ver
	}

	if pages == nil {
		numPages, err := doc.NumPages()
		if err != nil {
			return err
		}
		pages = make([]int, numPages)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	copier := pdfmerge.NewCopier(w.out, doc)
	for _, pageNo := range pages {
		err := w.addPage(doc, copier, pageNo)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageNo, err)
		}
	}
	return nil
}

func (w *Writer) addPage(doc *pdfmerge.Document, copier *pdfmerge.Copier, pageNo int) error {
	node, err := doc.Page(pageNo)
	if err != nil {
		return err
	}

	inherited, err := inheritedResources(doc, node)
	if err != nil {
		return err
	}

	if len(w.group) >= MaxGroupSize || w.collides(inherited) {
		err = w.closeGroup()
		if err != nil {
			return err
		}
	}
	if w.parent == 0 {
		w.parent = w.out.Alloc()
	}

	for _, name := range inherited.Names() {
		repl, err := copier.Copy(inherited.Get(name))
		if err != nil {
			return err
		}
		w.groupResources.Set(name, repl)
	}

	page := pdfmerge.NewDict()
	hasParent := false
	for _, name := range node.Dict.Names() {
		if name == "Parent" {
			page.Set(name, w.parent)
			hasParent = true
			continue
		}
		repl, err := copier.Copy(node.Dict.Get(name))
		if err != nil {
			return err
		}
		page.Set(name, repl)
	}
	if !hasParent {
		page.Set("Parent", w.parent)
	}

	// Pages are bound to fresh reservations instead of going through the
	// deduplicating write: two different pages must stay two different
	// page objects even if they serialize to the same bytes.
	pageRef := w.out.Alloc()
	err = w.out.Put(pageRef, page)
	if err != nil {
		return err
	}
	w.group = append(w.group, pageRef)
	return nil
}

// collides reports whether any of the given resource names is already
// taken in the current group.  Name clashes close the group even if the
// resource values are equal: keeping the groups apart is always safe,
// merging values is not.
func (w *Writer) collides(inherited *pdfmerge.Dict) bool {
	for _, name := range inherited.Names() {
		if w.groupResources.Has(name) {
			return true
		}
	}
	return false
}

// closeGroup turns the current group of pages into an intermediate
// page-tree node.
func (w *Writer) closeGroup() error {
	if len(w.group) == 0 {
		return nil
	}

	kids := make(pdfmerge.Array, len(w.group))
	for i, ref := range w.group {
		kids[i] = ref
	}

	node := pdfmerge.NewDict()
	node.Set("Type", pdfmerge.Name("Pages"))
	node.Set("Kids", kids)
	node.Set("Count", pdfmerge.Integer(len(w.group)))
	node.Set("Parent", w.root)
	if w.groupResources.Len() > 0 {
		node.Set("Resources", w.groupResources)
	}

	err := w.out.Put(w.parent, node)
	if err != nil {
		return err
	}

	w.groupRefs = append(w.groupRefs, w.parent)
	w.pageCount += len(w.group)
	w.group = nil
	w.groupResources = pdfmerge.NewDict()
	w.parent = 0
	return nil
}

// Close finishes the page tree, writes the catalog and emits the
// complete output file.  If no pages have been added,
// [pdfmerge.ErrNoPages] is returned.
func (w *Writer) Close() error {
	err := w.closeGroup()
	if err != nil {
		return err
	}
	if len(w.groupRefs) == 0 {
		return pdfmerge.ErrNoPages
	}

	kids := make(pdfmerge.Array, len(w.groupRefs))
	for i, ref := range w.groupRefs {
		kids[i] = ref
	}
	root := pdfmerge.NewDict()
	root.Set("Type", pdfmerge.Name("Pages"))
	root.Set("Kids", kids)
	root.Set("Count", pdfmerge.Integer(w.pageCount))
	err = w.out.Put(w.root, root)
	if err != nil {
		return err
	}

	catalog := pdfmerge.NewDict()
	catalog.Set("Type", pdfmerge.Name("Catalog"))
	catalog.Set("Pages", w.root)
	catalogRef, err := w.out.Write(catalog)
	if err != nil {
		return err
	}

	return w.out.Close(w.version, catalogRef)
}

// inheritedResources collects the resources a page inherits from its
// ancestors in the source document.  Entries from nodes closer to the
// page shadow entries of the same name further up the tree.  The
// returned values still live in the source document.
func inheritedResources(doc *pdfmerge.Document, node *pdfmerge.PageNode) (*pdfmerge.Dict, error) {
	res := pdfmerge.NewDict()
	for p := node.Parent; p != nil; p = p.Parent {
		rdict, err := pdfmerge.GetDict(doc, p.Dict.Get("Resources"))
		if err != nil {
			return nil, err
		}
		for _, name := range rdict.Names() {
			if !res.Has(name) {
				res.Set(name, rdict.Get(name))
			}
		}
	}
	return res, nil
}

// A Selection names a set of pages within a source document.
type Selection struct {
	Doc *pdfmerge.Document

	// Pages lists 1-based page numbers in output order.
	// A nil slice selects all pages of the document.
	Pages []int
}

// Merge writes a new PDF document to w whose pages are the concatenation
// of all pages of the given documents.
func Merge(w io.Writer, docs ...*pdfmerge.Document) error {
	selections := make([]Selection, len(docs))
	for i, doc := range docs {
		selections[i] = Selection{Doc: doc}
	}
	return MergeSelected(w, selections)
}

// MergeSelected writes a new PDF document to w containing the selected
// pages of the source documents, in the given order.
func MergeSelected(w io.Writer, selections []Selection) error {
	if len(selections) == 0 {
		return errors.New("no input documents")
	}

	out := pdfmerge.NewWriter(w)
	tree := NewWriter(out)
	for i, sel := range selections {
		err := tree.AddDocument(sel.Doc, sel.Pages)
		if err != nil {
			return fmt.Errorf("document %d: %w", i+1, err)
		}
	}
	return tree.Close()
}
