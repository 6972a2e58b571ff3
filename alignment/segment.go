// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/ksenia-krasheninnikova/hal/store"
)

// Top segment record layout.  Index fields are stored as index+1 so that a
// zero-filled record reads back as NullIndex links.
const (
	topStartOff             = 0
	topLengthOff            = 8
	topParentOff            = 16
	topParalogyOff          = 24
	topBottomParseIndexOff  = 32
	topBottomParseOffsetOff = 40
	topReversedOff          = 48
	topRecordSize           = 49
)

// Bottom segment record layout.  Child slot k (one per child genome, in child
// order) starts at bottomChildrenOff + k*childSlotSize and holds the child top
// segment index followed by the orientation byte.
const (
	bottomStartOff          = 0
	bottomLengthOff         = 8
	bottomTopParseIndexOff  = 16
	bottomTopParseOffsetOff = 24
	bottomChildrenOff       = 32
	childSlotSize           = 9
)

func bottomRecordSize(numChildren int) int {
	return bottomChildrenOff + numChildren*childSlotSize
}

func getIndex(a *store.Array, i int64, off int) int64 {
	return a.Int64(i, off) - 1
}

func setIndex(a *store.Array, i int64, off int, v int64) {
	if v < NullIndex {
		v = NullIndex
	}
	a.SetInt64(i, off, v+1)
}

func getBool(a *store.Array, i int64, off int) bool {
	return a.Byte(i, off) != 0
}

func setBool(a *store.Array, i int64, off int, v bool) {
	var b byte
	if v {
		b = 1
	}
	a.SetByte(i, off, b)
}

// TopSegment is a handle on one record of a genome's top segment array.
// Setters write through to the array.
type TopSegment struct {
	genome *Genome
	index  int64
}

// Genome returns the owning genome.
func (s TopSegment) Genome() *Genome { return s.genome }

// ArrayIndex returns the index of the segment in its array.
func (s TopSegment) ArrayIndex() int64 { return s.index }

// StartPosition returns the genome coordinate of the first base.
func (s TopSegment) StartPosition() int64 { return s.genome.topArr.Int64(s.index, topStartOff) }

// SetStartPosition sets the start coordinate.
func (s TopSegment) SetStartPosition(v int64) { s.genome.topArr.SetInt64(s.index, topStartOff, v) }

// Length returns the number of bases.
func (s TopSegment) Length() int64 { return s.genome.topArr.Int64(s.index, topLengthOff) }

// SetLength sets the length.
func (s TopSegment) SetLength(v int64) { s.genome.topArr.SetInt64(s.index, topLengthOff, v) }

// EndPosition returns StartPosition() + Length().
func (s TopSegment) EndPosition() int64 { return s.StartPosition() + s.Length() }

// Contains reports whether genome position pos lies in the segment.
func (s TopSegment) Contains(pos int64) bool {
	start := s.StartPosition()
	return pos >= start && pos < start+s.Length()
}

// ParentIndex returns the index of the aligned bottom segment in the parent
// genome, or NullIndex.
func (s TopSegment) ParentIndex() int64 { return getIndex(s.genome.topArr, s.index, topParentOff) }

// SetParentIndex sets the parent link.
func (s TopSegment) SetParentIndex(v int64) { setIndex(s.genome.topArr, s.index, topParentOff, v) }

// HasParent reports whether the segment is aligned to its parent.
func (s TopSegment) HasParent() bool { return s.ParentIndex() != NullIndex }

// Reversed reports whether the segment aligns to the reverse complement of
// its parent segment.
func (s TopSegment) Reversed() bool { return getBool(s.genome.topArr, s.index, topReversedOff) }

// SetReversed sets the orientation.
func (s TopSegment) SetReversed(v bool) { setBool(s.genome.topArr, s.index, topReversedOff, v) }

// NextParalogyIndex returns the next top segment in the paralogy ring.
func (s TopSegment) NextParalogyIndex() int64 {
	return getIndex(s.genome.topArr, s.index, topParalogyOff)
}

// SetNextParalogyIndex sets the paralogy link.
func (s TopSegment) SetNextParalogyIndex(v int64) {
	setIndex(s.genome.topArr, s.index, topParalogyOff, v)
}

// HasParalogy reports whether the segment has at least one duplicate copy.
func (s TopSegment) HasParalogy() bool {
	next := s.NextParalogyIndex()
	return next != NullIndex && next != s.index
}

// ParalogyCycle returns the indices of every top segment in the paralogy
// ring of s, starting with s.  A segment without paralogs yields a ring of
// one.  A ring that doesn't return to s is reported as errors.Invalid.
func (s TopSegment) ParalogyCycle() ([]int64, error) {
	ring := []int64{s.index}
	n := s.genome.NumTopSegments()
	next := s.NextParalogyIndex()
	for next != NullIndex && next != s.index {
		if next < 0 || next >= n || int64(len(ring)) >= n {
			return nil, errors.E(errors.Invalid, fmt.Sprintf(
				"genome %s: paralogy ring of top segment %d does not close", s.genome.name, s.index))
		}
		ring = append(ring, next)
		next = s.genome.TopSegment(next).NextParalogyIndex()
	}
	return ring, nil
}

// BottomParseIndex returns the index of the bottom segment of the same genome
// covering StartPosition(), or NullIndex.
func (s TopSegment) BottomParseIndex() int64 {
	return getIndex(s.genome.topArr, s.index, topBottomParseIndexOff)
}

// SetBottomParseIndex sets the bottom parse link.
func (s TopSegment) SetBottomParseIndex(v int64) {
	setIndex(s.genome.topArr, s.index, topBottomParseIndexOff, v)
}

// BottomParseOffset returns StartPosition() minus the start of the bottom
// parse segment.
func (s TopSegment) BottomParseOffset() int64 {
	return s.genome.topArr.Int64(s.index, topBottomParseOffsetOff)
}

// SetBottomParseOffset sets the bottom parse offset.
func (s TopSegment) SetBottomParseOffset(v int64) {
	s.genome.topArr.SetInt64(s.index, topBottomParseOffsetOff, v)
}

// String implements fmt.Stringer.
func (s TopSegment) String() string {
	return fmt.Sprintf("%s:top[%d]{%d+%d parent=%d rev=%v para=%d}",
		s.genome.name, s.index, s.StartPosition(), s.Length(), s.ParentIndex(), s.Reversed(), s.NextParalogyIndex())
}

// BottomSegment is a handle on one record of a genome's bottom segment array.
type BottomSegment struct {
	genome *Genome
	index  int64
}

// Genome returns the owning genome.
func (s BottomSegment) Genome() *Genome { return s.genome }

// ArrayIndex returns the index of the segment in its array.
func (s BottomSegment) ArrayIndex() int64 { return s.index }

// StartPosition returns the genome coordinate of the first base.
func (s BottomSegment) StartPosition() int64 { return s.genome.bottomArr.Int64(s.index, bottomStartOff) }

// SetStartPosition sets the start coordinate.
func (s BottomSegment) SetStartPosition(v int64) {
	s.genome.bottomArr.SetInt64(s.index, bottomStartOff, v)
}

// Length returns the number of bases.
func (s BottomSegment) Length() int64 { return s.genome.bottomArr.Int64(s.index, bottomLengthOff) }

// SetLength sets the length.
func (s BottomSegment) SetLength(v int64) { s.genome.bottomArr.SetInt64(s.index, bottomLengthOff, v) }

// EndPosition returns StartPosition() + Length().
func (s BottomSegment) EndPosition() int64 { return s.StartPosition() + s.Length() }

// Contains reports whether genome position pos lies in the segment.
func (s BottomSegment) Contains(pos int64) bool {
	start := s.StartPosition()
	return pos >= start && pos < start+s.Length()
}

// NumChildren returns the number of child slots.
func (s BottomSegment) NumChildren() int { return s.genome.bottomChildren }

func (s BottomSegment) slotOff(slot int) int {
	if slot < 0 || slot >= s.genome.bottomChildren {
		panic(fmt.Sprintf("genome %s: child slot %d out of range [0, %d)", s.genome.name, slot, s.genome.bottomChildren))
	}
	return bottomChildrenOff + slot*childSlotSize
}

// ChildIndex returns the index of the aligned top segment in the slot'th
// child genome, or NullIndex.
func (s BottomSegment) ChildIndex(slot int) int64 {
	return getIndex(s.genome.bottomArr, s.index, s.slotOff(slot))
}

// SetChildIndex sets the link to the slot'th child.
func (s BottomSegment) SetChildIndex(slot int, v int64) {
	setIndex(s.genome.bottomArr, s.index, s.slotOff(slot), v)
}

// HasChild reports whether the segment is aligned in the slot'th child.
func (s BottomSegment) HasChild(slot int) bool { return s.ChildIndex(slot) != NullIndex }

// ChildReversed returns the orientation of the link to the slot'th child.
func (s BottomSegment) ChildReversed(slot int) bool {
	return getBool(s.genome.bottomArr, s.index, s.slotOff(slot)+8)
}

// SetChildReversed sets the orientation of the link to the slot'th child.
func (s BottomSegment) SetChildReversed(slot int, v bool) {
	setBool(s.genome.bottomArr, s.index, s.slotOff(slot)+8, v)
}

// TopParseIndex returns the index of the top segment of the same genome
// covering StartPosition(), or NullIndex.
func (s BottomSegment) TopParseIndex() int64 {
	return getIndex(s.genome.bottomArr, s.index, bottomTopParseIndexOff)
}

// SetTopParseIndex sets the top parse link.
func (s BottomSegment) SetTopParseIndex(v int64) {
	setIndex(s.genome.bottomArr, s.index, bottomTopParseIndexOff, v)
}

// TopParseOffset returns StartPosition() minus the start of the top parse
// segment.
func (s BottomSegment) TopParseOffset() int64 {
	return s.genome.bottomArr.Int64(s.index, bottomTopParseOffsetOff)
}

// SetTopParseOffset sets the top parse offset.
func (s BottomSegment) SetTopParseOffset(v int64) {
	s.genome.bottomArr.SetInt64(s.index, bottomTopParseOffsetOff, v)
}

// String implements fmt.Stringer.
func (s BottomSegment) String() string {
	return fmt.Sprintf("%s:bottom[%d]{%d+%d}", s.genome.name, s.index, s.StartPosition(), s.Length())
}
