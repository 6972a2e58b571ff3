// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"github.com/biogo/store/llrb"
)

// SequenceInfo describes one sequence when dimensioning a genome.
type SequenceInfo struct {
	Name   string
	Length int64
	// NumTopSegments and NumBottomSegments are the number of segments whose
	// start position falls in this sequence.
	NumTopSegments    int64
	NumBottomSegments int64
}

// Sequence is a named sub-range [Start, End) of a genome.
type Sequence struct {
	genome *Genome
	info   SequenceInfo
	start  int64
	// topStart and bottomStart are the array indices of the first segments of
	// this sequence.
	topStart    int64
	bottomStart int64
}

// Name returns the sequence name.
func (s *Sequence) Name() string { return s.info.Name }

// Genome returns the owning genome.
func (s *Sequence) Genome() *Genome { return s.genome }

// Start returns the genome coordinate of the first base.
func (s *Sequence) Start() int64 { return s.start }

// Length returns the number of bases.
func (s *Sequence) Length() int64 { return s.info.Length }

// End returns the genome coordinate one past the last base.
func (s *Sequence) End() int64 { return s.start + s.info.Length }

// NumTopSegments returns the number of top segments in the sequence.
func (s *Sequence) NumTopSegments() int64 { return s.info.NumTopSegments }

// NumBottomSegments returns the number of bottom segments in the sequence.
func (s *Sequence) NumBottomSegments() int64 { return s.info.NumBottomSegments }

// TopSegmentStart returns the array index of the first top segment.
func (s *Sequence) TopSegmentStart() int64 { return s.topStart }

// BottomSegmentStart returns the array index of the first bottom segment.
func (s *Sequence) BottomSegmentStart() int64 { return s.bottomStart }

// Info returns the dimensions the sequence was created with.
func (s *Sequence) Info() SequenceInfo { return s.info }

// Contains reports whether genome position pos is in the sequence.
func (s *Sequence) Contains(pos int64) bool {
	return pos >= s.start && pos < s.End()
}

// sequenceKey orders sequences by start position in the genome's llrb tree.
type sequenceKey struct {
	start int64
	seq   *Sequence
}

// Compare implements llrb.Comparable.
func (k sequenceKey) Compare(c llrb.Comparable) int {
	k2 := c.(sequenceKey)
	switch {
	case k.start < k2.start:
		return -1
	case k.start > k2.start:
		return 1
	}
	return 0
}
