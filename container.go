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

// Getter gives access to the objects of a PDF document.  Get must return
// the direct object stored under the given reference; it must never
// return a [Reference] or an [*Indirect].
type Getter interface {
	Get(ref Reference) (Object, error)
}

// Resolve resolves a reference to an indirect object.
//
// If obj is a [Reference], the corresponding object is read from r and
// returned, otherwise obj is returned unchanged.  A reference whose
// stored object is again a reference is a defect in the source and
// yields [ErrReferenceChain].
func Resolve(r Getter, obj Object) (Object, error) {
	ref, isReference := obj.(Reference)
	if !isReference {
		return obj, nil
	}
	val, err := r.Get(ref)
	if err != nil {
		return nil, err
	}
	if _, isReference := val.(Reference); isReference {
		return nil, fmt.Errorf("object %s: %w", ref, ErrReferenceChain)
	}
	return val, nil
}

func resolveAndCast[T Object](r Getter, obj Object) (x T, err error) {
	obj, err = Resolve(r, obj)
	if err != nil {
		return x, err
	}
	if obj == nil {
		return x, nil
	}

	var isCorrectType bool
	x, isCorrectType = obj.(T)
	if isCorrectType {
		return x, nil
	}
	return x, &MalformedFileError{
		Err: fmt.Errorf("expected %T but got %T", x, obj),
	}
}

// Helper functions for getting objects of a specific type.  Each of
// these functions calls [Resolve] on the object before attempting to
// convert it to the desired type.  If the object is null, a zero object
// is returned without error.  If the object has the wrong type, an error
// is returned.
var (
	GetArray = resolveAndCast[Array]
	GetDict  = resolveAndCast[*Dict]
	GetInt   = resolveAndCast[Integer]
	GetName  = resolveAndCast[Name]
)
