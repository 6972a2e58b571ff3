// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bed reads and writes BED interval files.  A record's version is
// the number of BED columns it carries: 3 through 9, or 12.  Columns beyond
// the version are kept verbatim as extra columns.
package bed

// Record is one BED line.  Only the fields covered by Version are
// meaningful; Writer substitutes defaults for the rest.
type Record struct {
	Chrom      string
	Start, End int64
	Name       string
	Score      int64
	// Strand is '+', '-' or '.'.
	Strand               byte
	ThickStart, ThickEnd int64
	ItemRGB              string
	// BlockSizes and BlockStarts have one entry per block.  BlockStarts are
	// relative to Start.
	BlockSizes, BlockStarts []int64
	Extra                   []string
	Version                 int
}

// ValidVersion reports whether v is a supported BED version.
func ValidVersion(v int) bool {
	return (v >= 3 && v <= 9) || v == 12
}

// detectVersion returns the version of a line with n columns.
func detectVersion(n int) int {
	switch {
	case n >= 12:
		return 12
	case n >= 9:
		return 9
	}
	return n
}

func (r *Record) name() string {
	if r.Version < 4 || r.Name == "" {
		return "."
	}
	return r.Name
}

func (r *Record) score() int64 {
	if r.Version < 5 {
		return 0
	}
	return r.Score
}

func (r *Record) strand() byte {
	if r.Version < 6 || r.Strand == 0 {
		return '.'
	}
	return r.Strand
}

// Thick returns the thick range, defaulting to the whole record.
func (r *Record) Thick() (start, end int64) {
	start, end = r.Start, r.End
	if r.Version >= 7 {
		start = r.ThickStart
	}
	if r.Version >= 8 {
		end = r.ThickEnd
	}
	return start, end
}

func (r *Record) itemRGB() string {
	if r.Version < 9 || r.ItemRGB == "" {
		return "0"
	}
	return r.ItemRGB
}

// Blocks returns the block lists, or a single block spanning the record.
func (r *Record) Blocks() (sizes, starts []int64) {
	if r.Version < 12 || len(r.BlockSizes) == 0 {
		return []int64{r.End - r.Start}, []int64{0}
	}
	return r.BlockSizes, r.BlockStarts
}
