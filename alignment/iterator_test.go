// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/dna"
)

func newGenome(t *testing.T, length int64) *alignment.Genome {
	aln := alignment.New(alignment.Opts{WindowRecords: 4})
	g, err := aln.AddRootGenome("g")
	assert.NoError(t, err)
	assert.NoError(t, g.SetDimensions([]alignment.SequenceInfo{{Name: "s", Length: length, NumTopSegments: 4}}))
	return g
}

func TestDNAIteratorMovement(t *testing.T) {
	g := newGenome(t, 20)
	for _, start := range []int64{0, 7, 19} {
		for _, rev := range []bool{false, true} {
			it := g.DNAIterator(start)
			it.SetReversed(rev)
			it.ToReverse()
			it.ToRight()
			it.ToReverse()
			want := start - 1
			if rev {
				want = start + 1
			}
			expect.EQ(t, it.ArrayIndex(), want, "start %d rev %v", start, rev)
			expect.EQ(t, it.Reversed(), rev)

			// ToRight under reversed equals ToLeft under forward.
			a, b := g.DNAIterator(start), g.DNAIterator(start)
			a.SetReversed(true)
			a.ToRight()
			b.ToLeft()
			expect.True(t, a.Equals(b))
			a.ToLeft()
			b.ToRight()
			expect.True(t, a.Equals(b))
		}
	}

	it := g.DNAIterator(3)
	it.JumpTo(12)
	expect.EQ(t, it.ArrayIndex(), int64(12))
	other := g.DNAIterator(13)
	expect.True(t, it.LeftOf(other))
	expect.False(t, other.LeftOf(it))
	expect.False(t, it.Equals(other))
	expect.EQ(t, it.Sequence().Name(), "s")
	it.JumpTo(25)
	expect.True(t, it.Sequence() == nil)
}

func TestDNAIteratorCharRoundTrip(t *testing.T) {
	const alphabet = "ACGTNRYSWKMBDHVacgtn"
	g := newGenome(t, int64(len(alphabet)))
	for _, rev := range []bool{false, true} {
		for i := 0; i < len(alphabet); i++ {
			c := alphabet[i]
			it := g.DNAIterator(int64(i))
			it.SetReversed(rev)
			assert.NoError(t, it.SetChar(c))
			assert.NoError(t, it.Flush())
			expect.EQ(t, it.Char(), c, "%c rev %v", c, rev)
			it.ToReverse()
			expect.EQ(t, it.Char(), dna.Complement(c), "%c rev %v", c, rev)
		}
	}
}

func TestDNAIteratorErrors(t *testing.T) {
	g := newGenome(t, 10)
	it := g.DNAIterator(10)
	err := it.SetChar('A')
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
	it.JumpTo(-1)
	err = it.SetChar('A')
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
	it.JumpTo(3)
	err = it.SetChar('X')
	expect.True(t, errors.Is(errors.Invalid, err), "%v", err)

	func() {
		defer func() { expect.True(t, recover() != nil) }()
		g.DNAIterator(10).Char()
	}()
	func() {
		defer func() { expect.True(t, recover() != nil) }()
		other := newGenome(t, 10)
		g.DNAIterator(1).Equals(other.DNAIterator(1))
	}()
}

func TestDNAIteratorStrings(t *testing.T) {
	g := newGenome(t, 12)
	const s = "AACCGTTGCATG"
	it := g.DNAIterator(0)
	assert.NoError(t, it.WriteString(s, int64(len(s))))
	expect.EQ(t, it.ArrayIndex(), int64(len(s)))

	it = g.DNAIterator(0)
	expect.EQ(t, it.ReadString(12), s)
	expect.EQ(t, it.ReadString(0), "")

	it = g.DNAIterator(11)
	it.SetReversed(true)
	expect.EQ(t, it.ReadString(12), dna.ReverseComplement(s))
	expect.EQ(t, it.ArrayIndex(), int64(-1))

	// Writing reversed stores the reverse complement.
	it = g.DNAIterator(5)
	it.SetReversed(true)
	assert.NoError(t, it.WriteString("ACG", 3))
	got, err := g.SubString(3, 3)
	assert.NoError(t, err)
	expect.EQ(t, got, "CGT")

	err = g.DNAIterator(0).WriteString("AC", 3)
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
}

func TestSegmentIterators(t *testing.T) {
	aln := buildThreeLevels(t)
	m, err := aln.OpenGenome("M")
	assert.NoError(t, err)

	it := m.TopSegmentIterator(0)
	expect.True(t, it.Valid())
	expect.EQ(t, it.Bases(), "ACGT")
	it.ToRight()
	expect.EQ(t, it.ArrayIndex(), int64(1))
	// Top segment 1 is stored reversed relative to its parent.
	expect.True(t, it.Segment().Reversed())
	expect.EQ(t, it.Bases(), dna.ReverseComplement("GTACGT"))
	it.ToReverse()
	expect.EQ(t, it.Bases(), "GTACGT")
	it.ToRight()
	expect.EQ(t, it.ArrayIndex(), int64(0))
	it.ToRight()
	expect.False(t, it.Valid())

	a, b := m.TopSegmentIterator(1), m.TopSegmentIterator(2)
	expect.True(t, a.LeftOf(b))
	b.ToLeft()
	expect.True(t, a.Equals(b))

	bit := m.BottomSegmentIterator(1)
	expect.EQ(t, bit.Segment().StartPosition(), int64(2))
	expect.EQ(t, bit.Bases(), "GTGTACGT")
	bit.SetReversed(true)
	expect.EQ(t, bit.Bases(), "ACGTACAC")
	bit.ToRight()
	expect.EQ(t, bit.ArrayIndex(), int64(0))
	expect.EQ(t, bit.Bases(), "GT")
	assert.NoError(t, bit.SetBases("TT"))
	got, err := m.SubString(0, 2)
	assert.NoError(t, err)
	expect.EQ(t, got, "AA")
	err = bit.SetBases("TTT")
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
}
