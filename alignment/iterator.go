// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/ksenia-krasheninnikova/hal/dna"
)

// cursor is the movement state shared by every position iterator.  Right
// means "further along the reading direction": it increments the index in
// forward orientation and decrements it when reversed.
type cursor struct {
	index    int64
	reversed bool
}

// ArrayIndex returns the absolute index of the iterator.
func (c *cursor) ArrayIndex() int64 { return c.index }

// Reversed reports the iterator's orientation.
func (c *cursor) Reversed() bool { return c.reversed }

// SetReversed sets the orientation without moving.
func (c *cursor) SetReversed(v bool) { c.reversed = v }

// ToReverse flips the orientation without moving.
func (c *cursor) ToReverse() { c.reversed = !c.reversed }

// ToLeft moves one step against the reading direction.
func (c *cursor) ToLeft() {
	if c.reversed {
		c.index++
	} else {
		c.index--
	}
}

// ToRight moves one step along the reading direction.
func (c *cursor) ToRight() {
	if c.reversed {
		c.index--
	} else {
		c.index++
	}
}

// JumpTo moves to absolute index i.  It is not range checked.
func (c *cursor) JumpTo(i int64) { c.index = i }

func checkSameGenome(a, b *Genome) {
	if a != b {
		log.Panicf("alignment: comparing iterators over genomes %s and %s", a.name, b.name)
	}
}

// DNAIterator is a base-level cursor over a genome's DNA.  In reversed
// orientation it reads and writes the complement strand.
type DNAIterator struct {
	cursor
	genome *Genome
}

// Genome returns the genome the iterator walks.
func (it *DNAIterator) Genome() *Genome { return it.genome }

func (it *DNAIterator) inRange() bool {
	return it.index >= 0 && it.index < it.genome.length
}

// Char returns the base under the iterator, complemented when reversed.  It
// panics if the iterator is out of range.
func (it *DNAIterator) Char() byte {
	if !it.inRange() {
		log.Panicf("alignment: DNA iterator at %d outside genome %s [0, %d)", it.index, it.genome.name, it.genome.length)
	}
	c := it.genome.dna.Base(it.index)
	if it.reversed {
		c = dna.Complement(c)
	}
	return c
}

// SetChar stores c under the iterator; the complement of c is stored when
// the iterator is reversed.  The write is buffered until Flush.
func (it *DNAIterator) SetChar(c byte) error {
	if !it.inRange() {
		return errors.E(errors.Precondition, fmt.Sprintf(
			"alignment: DNA iterator at %d outside genome %s [0, %d)", it.index, it.genome.name, it.genome.length))
	}
	if !dna.IsNucleotide(c) {
		return errors.E(errors.Invalid, fmt.Sprintf("alignment: invalid character %q", c))
	}
	if it.reversed {
		c = dna.Complement(c)
	}
	return it.genome.dna.SetBase(it.index, c)
}

// ReadString reads the next n characters in reading order and advances the
// iterator by n steps.
func (it *DNAIterator) ReadString(n int64) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = it.Char()
		it.ToRight()
	}
	return string(b)
}

// WriteString writes the first n characters of s in reading order, advances
// the iterator by n steps and flushes.
func (it *DNAIterator) WriteString(s string, n int64) error {
	if n == 0 {
		return nil
	}
	if int64(len(s)) < n {
		return errors.E(errors.Precondition, fmt.Sprintf("alignment: writing %d characters from a string of %d", n, len(s)))
	}
	for i := int64(0); i < n; i++ {
		if err := it.SetChar(s[i]); err != nil {
			return err
		}
		it.ToRight()
	}
	return it.Flush()
}

// Flush writes buffered bases to the backing store.
func (it *DNAIterator) Flush() error { return it.genome.dna.Flush() }

// Sequence returns the sequence under the iterator, or nil.
func (it *DNAIterator) Sequence() *Sequence { return it.genome.SequenceBySite(it.index) }

// Equals reports whether both iterators are at the same index.
func (it *DNAIterator) Equals(o *DNAIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index == o.index
}

// LeftOf reports whether it is at a lower index than o.
func (it *DNAIterator) LeftOf(o *DNAIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index < o.index
}

// readBases reads [start, start+length) through a DNA iterator, as the
// reverse complement when rev is set.
func readBases(g *Genome, start, length int64, rev bool) string {
	it := g.DNAIterator(start)
	if rev {
		it.JumpTo(start + length - 1)
		it.SetReversed(true)
	}
	return it.ReadString(length)
}

func writeBases(g *Genome, start, length int64, rev bool, s string) error {
	if int64(len(s)) != length {
		return errors.E(errors.Precondition, fmt.Sprintf(
			"alignment: %d characters for a segment of length %d", len(s), length))
	}
	it := g.DNAIterator(start)
	if rev {
		it.JumpTo(start + length - 1)
		it.SetReversed(true)
	}
	return it.WriteString(s, length)
}

// TopSegmentIterator is a segment-level cursor over a genome's top segments.
type TopSegmentIterator struct {
	cursor
	genome *Genome
}

// Genome returns the genome the iterator walks.
func (it *TopSegmentIterator) Genome() *Genome { return it.genome }

// Segment returns the segment under the iterator.
func (it *TopSegmentIterator) Segment() TopSegment { return it.genome.TopSegment(it.index) }

// Valid reports whether the iterator is inside the array.
func (it *TopSegmentIterator) Valid() bool {
	return it.index >= 0 && it.index < it.genome.NumTopSegments()
}

// Bases returns the DNA of the segment, reverse-complemented iff exactly one
// of the segment and the iterator is reversed.
func (it *TopSegmentIterator) Bases() string {
	seg := it.Segment()
	return readBases(it.genome, seg.StartPosition(), seg.Length(), ComposeReversed(seg.Reversed(), it.reversed))
}

// SetBases overwrites the DNA of the segment with s, read in the same
// orientation as Bases.  len(s) must equal the segment length.
func (it *TopSegmentIterator) SetBases(s string) error {
	seg := it.Segment()
	return writeBases(it.genome, seg.StartPosition(), seg.Length(), ComposeReversed(seg.Reversed(), it.reversed), s)
}

// Equals reports whether both iterators are at the same index.
func (it *TopSegmentIterator) Equals(o *TopSegmentIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index == o.index
}

// LeftOf reports whether it is at a lower index than o.
func (it *TopSegmentIterator) LeftOf(o *TopSegmentIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index < o.index
}

// BottomSegmentIterator is a segment-level cursor over a genome's bottom
// segments.  Bottom segments carry no orientation of their own.
type BottomSegmentIterator struct {
	cursor
	genome *Genome
}

// Genome returns the genome the iterator walks.
func (it *BottomSegmentIterator) Genome() *Genome { return it.genome }

// Segment returns the segment under the iterator.
func (it *BottomSegmentIterator) Segment() BottomSegment { return it.genome.BottomSegment(it.index) }

// Valid reports whether the iterator is inside the array.
func (it *BottomSegmentIterator) Valid() bool {
	return it.index >= 0 && it.index < it.genome.NumBottomSegments()
}

// Bases returns the DNA of the segment, reverse-complemented when the
// iterator is reversed.
func (it *BottomSegmentIterator) Bases() string {
	seg := it.Segment()
	return readBases(it.genome, seg.StartPosition(), seg.Length(), it.reversed)
}

// SetBases overwrites the DNA of the segment with s.
func (it *BottomSegmentIterator) SetBases(s string) error {
	seg := it.Segment()
	return writeBases(it.genome, seg.StartPosition(), seg.Length(), it.reversed, s)
}

// Equals reports whether both iterators are at the same index.
func (it *BottomSegmentIterator) Equals(o *BottomSegmentIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index == o.index
}

// LeftOf reports whether it is at a lower index than o.
func (it *BottomSegmentIterator) LeftOf(o *BottomSegmentIterator) bool {
	checkSameGenome(it.genome, o.genome)
	return it.index < o.index
}
