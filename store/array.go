// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// DefaultWindowRecords is the number of records cached by an Array when
// ArrayOpts.WindowRecords is zero.
const DefaultWindowRecords = 4096

// ArrayOpts configures an Array.
type ArrayOpts struct {
	// WindowRecords is the number of records held in the cache window.
	WindowRecords int
}

// Array is a fixed-size-record array over a Backing.  Record i occupies bytes
// [i*RecordSize(), (i+1)*RecordSize()) of the backing.
//
// Accessors are safe for concurrent readers.  Concurrent writers must be
// serialized by the caller.
type Array struct {
	mu         sync.Mutex
	backing    Backing
	recordSize int
	n          int64

	windowRecords int64
	// winStart is the index of the first record in win.  win is nil when no
	// window is loaded.
	winStart int64
	win      []byte
	dirty    bool
	// scratch is handed out in place of a record after a read failure.
	scratch []byte
	err     error
}

// NewArray creates an Array of n records of recordSize bytes.  The backing is
// grown (zero-filled) to fit n records if it is smaller; existing contents are
// preserved.
func NewArray(b Backing, recordSize int, n int64, opts ArrayOpts) (*Array, error) {
	if recordSize <= 0 || n < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("store.NewArray: bad dimensions %d x %d", n, recordSize))
	}
	if opts.WindowRecords <= 0 {
		opts.WindowRecords = DefaultWindowRecords
	}
	if size := n * int64(recordSize); b.Size() < size {
		if err := b.Truncate(size); err != nil {
			return nil, err
		}
	}
	return &Array{
		backing:       b,
		recordSize:    recordSize,
		n:             n,
		windowRecords: int64(opts.WindowRecords),
		scratch:       make([]byte, recordSize),
	}, nil
}

// Len returns the number of records.
func (a *Array) Len() int64 { return a.n }

// RecordSize returns the size of one record in bytes.
func (a *Array) RecordSize() int { return a.recordSize }

// Backing returns the underlying store.
func (a *Array) Backing() Backing { return a.backing }

// Err returns the first I/O error seen by the array, if any.
func (a *Array) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Array) setErr(err error) {
	if err != nil && a.err == nil {
		log.Error.Printf("store.Array: %v", err)
		a.err = err
	}
}

// writeBack stores a dirty window.  REQUIRES: a.mu is held.
func (a *Array) writeBack() {
	if !a.dirty || a.win == nil {
		return
	}
	off := a.winStart * int64(a.recordSize)
	if _, err := a.backing.WriteAt(a.win, off); err != nil {
		a.setErr(err)
	}
	log.Debug.Printf("store.Array: wrote back %d records at %d", len(a.win)/a.recordSize, a.winStart)
	a.dirty = false
}

// record returns the cached bytes of record i, moving the window if needed.
// REQUIRES: a.mu is held.
func (a *Array) record(i int64) []byte {
	if i < 0 || i >= a.n {
		log.Panicf("store.Array: record %d out of range [0, %d)", i, a.n)
	}
	rs := int64(a.recordSize)
	if a.win == nil || i < a.winStart || i >= a.winStart+int64(len(a.win))/rs {
		a.writeBack()
		start := i - i%a.windowRecords
		limit := start + a.windowRecords
		if limit > a.n {
			limit = a.n
		}
		size := int((limit - start) * rs)
		if cap(a.win) < size {
			a.win = make([]byte, size)
		}
		a.win = a.win[:size]
		n, err := a.backing.ReadAt(a.win, start*rs)
		if err == io.EOF && n == size {
			err = nil
		}
		if err != nil {
			a.setErr(err)
			a.win = nil
			for k := range a.scratch {
				a.scratch[k] = 0
			}
			return a.scratch
		}
		a.winStart = start
	}
	off := (i - a.winStart) * rs
	return a.win[off : off+rs]
}

// Int64 reads the little-endian int64 at byte offset off of record i.
func (a *Array) Int64(i int64, off int) int64 {
	a.mu.Lock()
	v := int64(binary.LittleEndian.Uint64(a.record(i)[off:]))
	a.mu.Unlock()
	return v
}

// SetInt64 stores v at byte offset off of record i.
func (a *Array) SetInt64(i int64, off int, v int64) {
	a.mu.Lock()
	binary.LittleEndian.PutUint64(a.record(i)[off:], uint64(v))
	a.dirty = true
	a.mu.Unlock()
}

// Byte reads the byte at offset off of record i.
func (a *Array) Byte(i int64, off int) byte {
	a.mu.Lock()
	v := a.record(i)[off]
	a.mu.Unlock()
	return v
}

// SetByte stores v at offset off of record i.
func (a *Array) SetByte(i int64, off int, v byte) {
	a.mu.Lock()
	a.record(i)[off] = v
	a.dirty = true
	a.mu.Unlock()
}

// ReadRaw reads len(p) bytes starting at byte offset off, bypassing the
// window.  The window is written back first so the result reflects every
// write made through the array.
func (a *Array) ReadRaw(p []byte, off int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeBack()
	n, err := a.backing.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return err
}

// WriteRaw writes p at byte offset off, bypassing the window.  The cached
// window is dropped.
func (a *Array) WriteRaw(p []byte, off int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit := off + int64(len(p)); off < 0 || limit > a.n*int64(a.recordSize) {
		log.Panicf("store.Array: raw write [%d, %d) out of range", off, limit)
	}
	a.writeBack()
	a.win = nil
	_, err := a.backing.WriteAt(p, off)
	return err
}

// Resize changes the number of records.  New records are zero.
func (a *Array) Resize(n int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeBack()
	a.win = nil
	if err := a.backing.Truncate(n * int64(a.recordSize)); err != nil {
		return err
	}
	a.n = n
	return a.err
}

// Flush writes back the window and flushes the backing.  It returns the first
// error seen by the array.
func (a *Array) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeBack()
	a.setErr(a.backing.Flush())
	return a.err
}

// Close flushes the array and closes its backing.
func (a *Array) Close() error {
	err := a.Flush()
	if e := a.backing.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
