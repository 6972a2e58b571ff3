// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package liftover

import (
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/encoding/bed"
)

// DefaultBatchSize is the number of records lifted per parallel batch.
const DefaultBatchSize = 1024

// ConvertOpts controls Convert.
type ConvertOpts struct {
	// InVersion is the BED version of the input.  Zero autodetects it.
	InVersion int
	// OutVersion is the BED version of the output.  Zero uses the input
	// version.
	OutVersion int
	// KeepExtra copies the input's extra columns to every output record.
	KeepExtra bool
	// AllowDupes follows every copy of a duplicated segment.
	AllowDupes bool
	// Parallelism is the number of records lifted concurrently.  Zero means
	// runtime.NumCPU().
	Parallelism int
	// BatchSize is the number of records read before lifting them.  Zero
	// means DefaultBatchSize.
	BatchSize int
}

// Convert lifts every BED record read from in, with coordinates on genome
// srcName, onto genome tgtName and writes the results to out in input
// order.  Each BED12 block is lifted separately.  With BED12 output, runs on
// the same target sequence and strand are grouped into one record; with
// other versions each run becomes a record.
//
// If a record cannot be lifted, Convert stops and returns an error naming
// its line; records before it have been written.
func Convert(aln *alignment.Alignment, srcName string, in io.Reader, tgtName string, out io.Writer, opts ConvertOpts) (err error) {
	src, err := aln.OpenGenome(srcName)
	if err != nil {
		return err
	}
	tgt, err := aln.OpenGenome(tgtName)
	if err != nil {
		return err
	}
	if opts.OutVersion != 0 && !bed.ValidVersion(opts.OutVersion) {
		return errors.E(errors.Invalid, fmt.Sprintf("liftover: invalid output BED version %d", opts.OutVersion))
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	lifter, err := New(src, tgt, Opts{AllowDupes: opts.AllowDupes})
	if err != nil {
		return err
	}

	var (
		sc        = bed.NewScanner(in, bed.ScanOpts{Version: opts.InVersion})
		w         *bed.Writer
		batch     = make([]*bed.Record, 0, opts.BatchSize)
		lines     = make([]int, 0, opts.BatchSize)
		nIn       int
		nOut      int
		nUnmapped int
	)
	defer func() {
		if w != nil {
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}
		}
	}()

	process := func() error {
		if w == nil {
			version := opts.OutVersion
			if version == 0 {
				version = sc.Version()
			}
			opts.OutVersion = version
			w = bed.NewWriter(out, bed.WriteOpts{Version: version, KeepExtra: opts.KeepExtra})
		}
		results := make([][]*bed.Record, len(batch))
		errs := make([]error, len(batch))
		parallelism := opts.Parallelism
		if parallelism > len(batch) {
			parallelism = len(batch)
		}
		// A job stops at its first failure.  Records after it in the same
		// stride have higher indices and are never written.
		liftErr := traverse.Each(parallelism, func(job int) error {
			for i := job; i < len(batch); i += parallelism {
				if results[i], errs[i] = lifter.liftRecord(batch[i], opts.OutVersion); errs[i] != nil {
					errs[i] = errors.E(errs[i], fmt.Sprintf("liftover: line %d", lines[i]))
					return errs[i]
				}
			}
			return nil
		})
		for i := range batch {
			if errs[i] != nil {
				return errs[i]
			}
			if len(results[i]) == 0 {
				nUnmapped++
			}
			for _, r := range results[i] {
				if err := w.Write(r); err != nil {
					return err
				}
				nOut++
			}
		}
		batch, lines = batch[:0], lines[:0]
		return liftErr
	}

	for sc.Scan() {
		batch = append(batch, sc.Record())
		lines = append(lines, sc.Line())
		nIn++
		if len(batch) == opts.BatchSize {
			if err := process(); err != nil {
				return err
			}
		}
	}
	if len(batch) > 0 {
		if err := process(); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	log.Printf("liftover %s -> %s: %d records in, %d records out, %d unmapped", srcName, tgtName, nIn, nOut, nUnmapped)
	return nil
}

// liftRecord lifts one record and returns the output records.
func (l *Lifter) liftRecord(rec *bed.Record, version int) ([]*bed.Record, error) {
	seq, err := l.src.SequenceByName(rec.Chrom)
	if err != nil {
		return nil, err
	}
	if rec.End > seq.Length() {
		return nil, errors.E(errors.Precondition,
			fmt.Sprintf("liftover: interval [%d, %d) outside sequence %s of length %d", rec.Start, rec.End, rec.Chrom, seq.Length()))
	}
	off := seq.Start()
	var runs []Mapping
	sizes, starts := rec.Blocks()
	for i, size := range sizes {
		start := off + rec.Start + starts[i]
		maps, err := l.Lift(start, start+size)
		if err != nil {
			return nil, err
		}
		runs = append(runs, maps...)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.Sequence.Start() != b.Sequence.Start() {
			return a.Sequence.Start() < b.Sequence.Start()
		}
		if a.TgtStart != b.TgtStart {
			return a.TgtStart < b.TgtStart
		}
		return a.SrcStart < b.SrcStart
	})
	thickStart, thickEnd := rec.Thick()
	thickStart += off
	thickEnd += off
	if version != 12 {
		out := make([]*bed.Record, len(runs))
		for i, m := range runs {
			r := newRecord(rec, m, version)
			r.Start, r.End = m.TgtStart-m.Sequence.Start(), m.TgtEnd-m.Sequence.Start()
			r.ThickStart, r.ThickEnd = r.Start, r.Start
			if s, e, ok := m.project(thickStart, thickEnd); ok {
				r.ThickStart, r.ThickEnd = s-m.Sequence.Start(), e-m.Sequence.Start()
			}
			out[i] = r
		}
		return out, nil
	}
	return groupRuns(rec, runs, thickStart, thickEnd), nil
}

// project maps source range [start, end), clipped to the run, onto the
// target.  It returns false if the clipped range is empty.
func (m Mapping) project(start, end int64) (int64, int64, bool) {
	if start < m.SrcStart {
		start = m.SrcStart
	}
	if end > m.SrcEnd {
		end = m.SrcEnd
	}
	if start >= end {
		return 0, 0, false
	}
	if m.Reversed {
		return m.TgtEnd - (end - m.SrcStart), m.TgtEnd - (start - m.SrcStart), true
	}
	return m.TgtStart + (start - m.SrcStart), m.TgtStart + (end - m.SrcStart), true
}

func newRecord(rec *bed.Record, m Mapping, version int) *bed.Record {
	strand := byte('.')
	if rec.Version >= 6 {
		strand = rec.Strand
	}
	if m.Reversed {
		switch strand {
		case '+':
			strand = '-'
		case '-':
			strand = '+'
		}
	}
	return &bed.Record{
		Chrom:   m.Sequence.Name(),
		Name:    rec.Name,
		Score:   rec.Score,
		Strand:  strand,
		ItemRGB: rec.ItemRGB,
		Extra:   rec.Extra,
		Version: version,
	}
}

type groupKey struct {
	seq  *alignment.Sequence
	rev  bool
	path string
}

// groupRuns builds one BED12 record per target sequence, strand and
// duplication path.  Runs must be sorted by target position.
func groupRuns(rec *bed.Record, runs []Mapping, thickStart, thickEnd int64) []*bed.Record {
	var (
		order  []groupKey
		groups = make(map[groupKey][]Mapping)
	)
	for _, m := range runs {
		k := groupKey{m.Sequence, m.Reversed, m.Path}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], m)
	}
	out := make([]*bed.Record, 0, len(order))
	for _, k := range order {
		ms := groups[k]
		r := newRecord(rec, ms[0], 12)
		off := k.seq.Start()
		var (
			blockStart, blockEnd = ms[0].TgtStart, ms[0].TgtEnd
			hasThick             bool
			ts, te               int64
		)
		r.Start = blockStart - off
		addBlock := func() {
			r.BlockStarts = append(r.BlockStarts, blockStart-off-r.Start)
			r.BlockSizes = append(r.BlockSizes, blockEnd-blockStart)
		}
		for i, m := range ms {
			if i > 0 {
				if m.TgtStart <= blockEnd {
					if m.TgtEnd > blockEnd {
						blockEnd = m.TgtEnd
					}
				} else {
					addBlock()
					blockStart, blockEnd = m.TgtStart, m.TgtEnd
				}
			}
			if s, e, ok := m.project(thickStart, thickEnd); ok {
				if !hasThick || s < ts {
					ts = s
				}
				if !hasThick || e > te {
					te = e
				}
				hasThick = true
			}
		}
		addBlock()
		r.End = blockEnd - off
		r.ThickStart, r.ThickEnd = r.Start, r.Start
		if hasThick {
			r.ThickStart, r.ThickEnd = ts-off, te-off
		}
		out = append(out, r)
	}
	return out
}
