// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/ksenia-krasheninnikova/hal/store"
)

// Unset is returned for bases that were never written.
const Unset = 'N'

// Access reads and writes single bases of a genome's DNA through the cached
// window of a one-byte-per-record store.Array.  Writes must be followed by
// Flush.
type Access struct {
	arr *store.Array
}

// NewAccess wraps arr, which must have one-byte records.
func NewAccess(arr *store.Array) *Access {
	if arr.RecordSize() != 1 {
		log.Panicf("dna.NewAccess: record size %d, want 1", arr.RecordSize())
	}
	return &Access{arr: arr}
}

// Len returns the number of bases.
func (a *Access) Len() int64 { return a.arr.Len() }

// Base returns the base at index i.  It panics if i is out of range.
func (a *Access) Base(i int64) byte {
	if c := a.arr.Byte(i, 0); c != 0 {
		return c
	}
	return Unset
}

// SetBase stores c at index i.  It panics if i is out of range.
func (a *Access) SetBase(i int64, c byte) error {
	if !IsNucleotide(c) {
		return errors.E(errors.Invalid, fmt.Sprintf("dna: invalid character %q at %d", c, i))
	}
	a.arr.SetByte(i, 0, c)
	return nil
}

// Flush writes buffered bases to the backing store.
func (a *Access) Flush() error { return a.arr.Flush() }

// Err returns the first I/O error seen on the backing store.
func (a *Access) Err() error { return a.arr.Err() }

// Array returns the underlying record array.
func (a *Access) Array() *store.Array { return a.arr }
