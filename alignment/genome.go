// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/ksenia-krasheninnikova/hal/dna"
	"github.com/ksenia-krasheninnikova/hal/store"
)

// Genome is one node of the alignment forest.  It is created through
// Alignment.AddRootGenome or Alignment.AddLeafGenome and owned by the
// Alignment.
type Genome struct {
	aln          *Alignment
	name         string
	parentName   string
	branchLength float64
	childNames   []string

	length    int64
	sequences []*Sequence
	seqByName map[string]*Sequence
	seqTree   llrb.Tree

	dna       *dna.Access
	topArr    *store.Array
	bottomArr *store.Array
	// bottomChildren is the number of child slots in each bottom record.  It
	// is fixed when the genome is dimensioned.
	bottomChildren int
}

// Name returns the genome name.
func (g *Genome) Name() string { return g.name }

// Alignment returns the owning alignment.
func (g *Genome) Alignment() *Alignment { return g.aln }

// SequenceLength returns the total number of bases in the genome.
func (g *Genome) SequenceLength() int64 { return g.length }

// NumTopSegments returns the length of the top segment array.
func (g *Genome) NumTopSegments() int64 { return g.topArr.Len() }

// NumBottomSegments returns the length of the bottom segment array.
func (g *Genome) NumBottomSegments() int64 { return g.bottomArr.Len() }

// ParentName returns the name of the parent genome, or "" for a root.
func (g *Genome) ParentName() string { return g.parentName }

// Parent returns the parent genome, or nil for a root.
func (g *Genome) Parent() *Genome {
	if g.parentName == "" {
		return nil
	}
	return g.aln.genomes[g.parentName]
}

// BranchLength returns the length of the branch to the parent.
func (g *Genome) BranchLength() float64 { return g.branchLength }

// NumChildren returns the number of child genomes.
func (g *Genome) NumChildren() int { return len(g.childNames) }

// ChildName returns the name of the i'th child.
func (g *Genome) ChildName(i int) string { return g.childNames[i] }

// ChildNames returns the names of the children, in slot order.
func (g *Genome) ChildNames() []string {
	return append([]string(nil), g.childNames...)
}

// Child returns the i'th child genome.
func (g *Genome) Child(i int) *Genome { return g.aln.genomes[g.childNames[i]] }

// ChildIndex returns the slot of the named child, or -1.
func (g *Genome) ChildIndex(name string) int {
	for i, n := range g.childNames {
		if n == name {
			return i
		}
	}
	return -1
}

// SetDimensions (re)allocates the DNA and segment arrays for the given
// sequences.  Existing contents are discarded.  The number of child slots of
// the bottom segments is the current number of children.
func (g *Genome) SetDimensions(infos []SequenceInfo) error {
	seen := make(map[string]bool, len(infos))
	var length, numTop, numBottom int64
	for _, info := range infos {
		if info.Name == "" || seen[info.Name] {
			return errors.E(errors.Invalid, fmt.Sprintf("genome %s: missing or duplicate sequence name %q", g.name, info.Name))
		}
		if info.Length < 0 || info.NumTopSegments < 0 || info.NumBottomSegments < 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("genome %s: negative dimensions for sequence %s", g.name, info.Name))
		}
		seen[info.Name] = true
		length += info.Length
		numTop += info.NumTopSegments
		numBottom += info.NumBottomSegments
	}
	if err := g.allocate(length, numTop, numBottom, len(g.childNames)); err != nil {
		return err
	}
	g.sequences = g.sequences[:0]
	g.seqByName = make(map[string]*Sequence, len(infos))
	g.seqTree = llrb.Tree{}
	var start, topStart, bottomStart int64
	for _, info := range infos {
		seq := &Sequence{genome: g, info: info, start: start, topStart: topStart, bottomStart: bottomStart}
		g.sequences = append(g.sequences, seq)
		g.seqByName[info.Name] = seq
		if info.Length > 0 {
			g.seqTree.Insert(sequenceKey{start: start, seq: seq})
		}
		start += info.Length
		topStart += info.NumTopSegments
		bottomStart += info.NumBottomSegments
	}
	log.Debug.Printf("genome %s: %d sequences, %d bases, %d top and %d bottom segments",
		g.name, len(infos), length, numTop, numBottom)
	return nil
}

// allocate replaces the genome's arrays with fresh zeroed ones.
func (g *Genome) allocate(length, numTop, numBottom int64, numChildren int) error {
	if err := g.closeArrays(); err != nil {
		return err
	}
	dnaArr, err := g.newArray(DNAArray, 1, length)
	if err != nil {
		return err
	}
	if g.topArr, err = g.newArray(TopArray, topRecordSize, numTop); err != nil {
		return err
	}
	if g.bottomArr, err = g.newArray(BottomArray, bottomRecordSize(numChildren), numBottom); err != nil {
		return err
	}
	g.dna = dna.NewAccess(dnaArr)
	g.length = length
	g.bottomChildren = numChildren
	return nil
}

// newArray creates a zeroed array of n records on a fresh backing.
func (g *Genome) newArray(kind ArrayKind, recordSize int, n int64) (*store.Array, error) {
	b, err := g.aln.opts.NewBacking(g.name, kind)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("genome %s: creating %v", g.name, kind))
	}
	if err := b.Truncate(0); err != nil {
		return nil, err
	}
	return store.NewArray(b, recordSize, n, store.ArrayOpts{WindowRecords: g.aln.opts.WindowRecords})
}

// resizeChildSlots replaces the empty bottom array with one whose records
// carry numChildren child slots.  DNA and top segments are kept.
func (g *Genome) resizeChildSlots(numChildren int) error {
	if g.bottomArr.Len() != 0 {
		return errors.E(errors.Precondition, fmt.Sprintf(
			"genome %s: cannot change child slots of %d bottom segments", g.name, g.bottomArr.Len()))
	}
	if err := g.bottomArr.Close(); err != nil {
		return err
	}
	arr, err := g.newArray(BottomArray, bottomRecordSize(numChildren), 0)
	if err != nil {
		g.bottomArr = nil
		return err
	}
	g.bottomArr = arr
	g.bottomChildren = numChildren
	return nil
}

func (g *Genome) closeArrays() error {
	var err error
	for _, a := range []*store.Array{g.dnaArray(), g.topArr, g.bottomArr} {
		if a == nil {
			continue
		}
		if e := a.Close(); e != nil && err == nil {
			err = e
		}
	}
	g.dna, g.topArr, g.bottomArr = nil, nil, nil
	return err
}

func (g *Genome) dnaArray() *store.Array {
	if g.dna == nil {
		return nil
	}
	return g.dna.Array()
}

// NumSequences returns the number of sequences.
func (g *Genome) NumSequences() int { return len(g.sequences) }

// Sequences returns the sequences in genome order.
func (g *Genome) Sequences() []*Sequence {
	return append([]*Sequence(nil), g.sequences...)
}

// SequenceByName returns the named sequence.  It returns an errors.NotExist
// error if there is none.
func (g *Genome) SequenceByName(name string) (*Sequence, error) {
	if seq, ok := g.seqByName[name]; ok {
		return seq, nil
	}
	return nil, errors.E(errors.NotExist, fmt.Sprintf("sequence %s not found in genome %s", name, g.name))
}

// SequenceBySite returns the sequence containing genome position pos, or nil.
func (g *Genome) SequenceBySite(pos int64) *Sequence {
	c := g.seqTree.Floor(sequenceKey{start: pos})
	if c == nil {
		return nil
	}
	if seq := c.(sequenceKey).seq; seq.Contains(pos) {
		return seq
	}
	return nil
}

// DNA returns the genome's DNA access layer.
func (g *Genome) DNA() *dna.Access { return g.dna }

// TopSegment returns a handle on top segment i.  Accessing the handle panics
// if i is out of range.
func (g *Genome) TopSegment(i int64) TopSegment { return TopSegment{genome: g, index: i} }

// BottomSegment returns a handle on bottom segment i.
func (g *Genome) BottomSegment(i int64) BottomSegment { return BottomSegment{genome: g, index: i} }

// TopSegmentIndexAt returns the index of the top segment containing genome
// position pos, or NullIndex if pos is outside the top segments.
func (g *Genome) TopSegmentIndexAt(pos int64) int64 {
	i := searchSegments(g.topArr, topStartOff, pos)
	if i == NullIndex || !g.TopSegment(i).Contains(pos) {
		return NullIndex
	}
	return i
}

// BottomSegmentIndexAt returns the index of the bottom segment containing
// genome position pos, or NullIndex.
func (g *Genome) BottomSegmentIndexAt(pos int64) int64 {
	i := searchSegments(g.bottomArr, bottomStartOff, pos)
	if i == NullIndex || !g.BottomSegment(i).Contains(pos) {
		return NullIndex
	}
	return i
}

// searchSegments returns the index of the last record whose start is <= pos,
// or NullIndex.  Records are sorted by start.
func searchSegments(a *store.Array, startOff int, pos int64) int64 {
	n := int(a.Len())
	i := sort.Search(n, func(i int) bool { return a.Int64(int64(i), startOff) > pos })
	return int64(i) - 1
}

// TopSegmentIterator returns an iterator at top segment i.
func (g *Genome) TopSegmentIterator(i int64) *TopSegmentIterator {
	return &TopSegmentIterator{cursor: cursor{index: i}, genome: g}
}

// BottomSegmentIterator returns an iterator at bottom segment i.
func (g *Genome) BottomSegmentIterator(i int64) *BottomSegmentIterator {
	return &BottomSegmentIterator{cursor: cursor{index: i}, genome: g}
}

// DNAIterator returns a base iterator at genome position pos.
func (g *Genome) DNAIterator(pos int64) *DNAIterator {
	return &DNAIterator{cursor: cursor{index: pos}, genome: g}
}

// SetSubString writes the first length characters of s at genome position
// start and flushes.
func (g *Genome) SetSubString(s string, start, length int64) error {
	if start < 0 || length < 0 || start+length > g.length || int64(len(s)) < length {
		return errors.E(errors.Precondition, fmt.Sprintf(
			"genome %s: substring [%d, %d) out of range [0, %d)", g.name, start, start+length, g.length))
	}
	return g.DNAIterator(start).WriteString(s, length)
}

// SubString reads length bases starting at genome position start.
func (g *Genome) SubString(start, length int64) (string, error) {
	if start < 0 || length < 0 || start+length > g.length {
		return "", errors.E(errors.Precondition, fmt.Sprintf(
			"genome %s: substring [%d, %d) out of range [0, %d)", g.name, start, start+length, g.length))
	}
	s := g.DNAIterator(start).ReadString(length)
	return s, g.dna.Err()
}

// Flush writes buffered changes of every array to the backing stores.
func (g *Genome) Flush() error {
	var err error
	for _, a := range []*store.Array{g.dnaArray(), g.topArr, g.bottomArr} {
		if e := a.Flush(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Err returns the first I/O error seen by any of the genome's arrays.
func (g *Genome) Err() error {
	for _, a := range []*store.Array{g.dnaArray(), g.topArr, g.bottomArr} {
		if err := a.Err(); err != nil {
			return err
		}
	}
	return nil
}
