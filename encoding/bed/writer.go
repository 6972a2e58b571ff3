// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// WriteOpts configures a Writer.
type WriteOpts struct {
	// Version is the number of BED columns to emit.  Zero writes each record
	// at its own version.
	Version int
	// KeepExtra appends each record's extra columns.
	KeepExtra bool
}

// Writer emits BED records.  Columns not carried by a record get their BED
// defaults.
type Writer struct {
	w    *tsv.Writer
	opts WriteOpts
	buf  []byte
}

// NewWriter creates a Writer.  The caller must call Flush when done.
func NewWriter(w io.Writer, opts WriteOpts) *Writer {
	return &Writer{w: tsv.NewWriter(w), opts: opts}
}

func (w *Writer) writeList(vals []int64) {
	w.buf = w.buf[:0]
	for _, v := range vals {
		w.buf = strconv.AppendInt(w.buf, v, 10)
		w.buf = append(w.buf, ',')
	}
	w.w.WriteString(string(w.buf))
}

// Write emits one record.
func (w *Writer) Write(r *Record) error {
	version := w.opts.Version
	if version == 0 {
		version = r.Version
	}
	if !ValidVersion(version) {
		return errors.Errorf("bed: invalid version %d", version)
	}
	w.w.WriteString(r.Chrom)
	w.w.WriteInt64(r.Start)
	w.w.WriteInt64(r.End)
	if version >= 4 {
		w.w.WriteString(r.name())
	}
	if version >= 5 {
		w.w.WriteInt64(r.score())
	}
	if version >= 6 {
		w.w.WriteByte(r.strand())
	}
	thickStart, thickEnd := r.Thick()
	if version >= 7 {
		w.w.WriteInt64(thickStart)
	}
	if version >= 8 {
		w.w.WriteInt64(thickEnd)
	}
	if version >= 9 {
		w.w.WriteString(r.itemRGB())
	}
	if version >= 12 {
		sizes, starts := r.Blocks()
		w.w.WriteInt64(int64(len(sizes)))
		w.writeList(sizes)
		w.writeList(starts)
	}
	if w.opts.KeepExtra {
		for _, e := range r.Extra {
			w.w.WriteString(e)
		}
	}
	return w.w.EndLine()
}

// Flush writes any buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
