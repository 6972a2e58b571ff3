// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fasta

import (
	"bufio"
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// maxGetBases bounds the number of bases fetched per Get call while writing.
const maxGetBases = 1 << 20

// Write writes every sequence of f to w with at most lineWidth bases per
// line.
func Write(w io.Writer, f Fasta, lineWidth int) error {
	return WriteIndexed(w, nil, f, lineWidth)
}

// WriteIndexed is Write that also writes the samtools faidx index of the
// output to index, if index is not nil.  See
// http://www.htslib.org/doc/faidx.html.
func WriteIndexed(w, index io.Writer, f Fasta, lineWidth int) error {
	if lineWidth <= 0 {
		return errors.Errorf("invalid FASTA line width %d", lineWidth)
	}
	var (
		out    = bufio.NewWriter(w)
		tsvOut *tsv.Writer
		off    int64
		block  = uint64(lineWidth) * uint64((maxGetBases+lineWidth-1)/lineWidth)
	)
	if index != nil {
		tsvOut = tsv.NewWriter(index)
	}
	for _, name := range f.SeqNames() {
		n, err := f.Len(name)
		if err != nil {
			return err
		}
		header := ">" + name + "\n"
		if _, err := out.WriteString(header); err != nil {
			return err
		}
		off += int64(len(header))
		if tsvOut != nil {
			tsvOut.WriteString(name)
			tsvOut.WriteInt64(int64(n))
			tsvOut.WriteInt64(off)
			tsvOut.WriteInt64(int64(lineWidth))
			tsvOut.WriteInt64(int64(lineWidth + 1))
			if err := tsvOut.EndLine(); err != nil {
				return err
			}
		}
		for start := uint64(0); start < n; start += block {
			end := start + block
			if end > n {
				end = n
			}
			s, err := f.Get(name, start, end)
			if err != nil {
				return errors.Wrapf(err, "sequence %s", name)
			}
			for len(s) > 0 {
				line := s
				if len(line) > lineWidth {
					line = s[:lineWidth]
				}
				s = s[len(line):]
				if _, err := out.WriteString(line); err != nil {
					return err
				}
				if err := out.WriteByte('\n'); err != nil {
					return err
				}
				off += int64(len(line) + 1)
			}
		}
	}
	if tsvOut != nil {
		if err := tsvOut.Flush(); err != nil {
			return err
		}
	}
	return out.Flush()
}
