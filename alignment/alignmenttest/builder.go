// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package alignmenttest builds small alignments from a declarative
// description for use in tests.
package alignmenttest

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/ksenia-krasheninnikova/hal/alignment"
)

// Top describes one top segment.  Parent is the index of the aligned bottom
// segment in the parent genome, or alignment.NullIndex.
type Top struct {
	Length   int64
	Parent   int64
	Reversed bool
}

// Aligned returns a top segment aligned to parent bottom segment p.
func Aligned(length, p int64, reversed bool) Top {
	return Top{Length: length, Parent: p, Reversed: reversed}
}

// Unaligned returns a top segment with no parent.
func Unaligned(length int64) Top {
	return Top{Length: length, Parent: alignment.NullIndex}
}

// Sequence describes one sequence and the segments starting in it.  Length
// is used when DNA is empty.  Top and Bottom list segments in order; their
// start positions are derived by tiling the sequence.
type Sequence struct {
	Name   string
	DNA    string
	Length int64
	Top    []Top
	Bottom []int64
}

// Genome describes one genome.  An empty Parent makes it a root.
type Genome struct {
	Name         string
	Parent       string
	BranchLength float64
	Sequences    []Sequence
}

// Build creates an in-memory alignment.  Genomes must be listed parents
// first.  Child links of the parents are derived from the children's top
// segments: top segments sharing a parent segment form a paralogy ring in
// index order, and the first of them is the parent's child link.  Parse
// links are computed and everything is flushed.  Build does not validate
// the result.
func Build(genomes ...Genome) (*alignment.Alignment, error) {
	return BuildOpts(alignment.Opts{}, genomes...)
}

// BuildOpts is Build with explicit alignment options.
func BuildOpts(opts alignment.Opts, genomes ...Genome) (*alignment.Alignment, error) {
	aln := alignment.New(opts)
	for _, desc := range genomes {
		var err error
		if desc.Parent == "" {
			_, err = aln.AddRootGenome(desc.Name)
		} else {
			_, err = aln.AddLeafGenome(desc.Name, desc.Parent, desc.BranchLength)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, desc := range genomes {
		if err := fill(aln, desc); err != nil {
			return nil, err
		}
	}
	for _, desc := range genomes {
		if desc.Parent != "" {
			if err := link(aln, desc); err != nil {
				return nil, err
			}
		}
	}
	for _, desc := range genomes {
		g, _ := aln.OpenGenome(desc.Name)
		if err := g.FixParseInfo(); err != nil {
			return nil, err
		}
	}
	if err := aln.Flush(); err != nil {
		return nil, err
	}
	return aln, nil
}

// MustBuild is Build for tests.
func MustBuild(t testing.TB, genomes ...Genome) *alignment.Alignment {
	aln, err := Build(genomes...)
	assert.NoError(t, err)
	return aln
}

func fill(aln *alignment.Alignment, desc Genome) error {
	g, err := aln.OpenGenome(desc.Name)
	if err != nil {
		return err
	}
	infos := make([]alignment.SequenceInfo, len(desc.Sequences))
	for i, s := range desc.Sequences {
		length := s.Length
		if s.DNA != "" {
			length = int64(len(s.DNA))
		}
		infos[i] = alignment.SequenceInfo{
			Name:              s.Name,
			Length:            length,
			NumTopSegments:    int64(len(s.Top)),
			NumBottomSegments: int64(len(s.Bottom)),
		}
	}
	if err := g.SetDimensions(infos); err != nil {
		return err
	}
	for _, s := range desc.Sequences {
		seq, err := g.SequenceByName(s.Name)
		if err != nil {
			return err
		}
		if s.DNA != "" {
			if err := g.SetSubString(s.DNA, seq.Start(), seq.Length()); err != nil {
				return err
			}
		}
		pos := seq.Start()
		for i, top := range s.Top {
			seg := g.TopSegment(seq.TopSegmentStart() + int64(i))
			seg.SetStartPosition(pos)
			seg.SetLength(top.Length)
			seg.SetParentIndex(top.Parent)
			seg.SetReversed(top.Reversed)
			seg.SetNextParalogyIndex(alignment.NullIndex)
			pos += top.Length
		}
		pos = seq.Start()
		for i, length := range s.Bottom {
			seg := g.BottomSegment(seq.BottomSegmentStart() + int64(i))
			seg.SetStartPosition(pos)
			seg.SetLength(length)
			pos += length
		}
	}
	return nil
}

// link builds the paralogy rings of desc and the child links of its parent.
func link(aln *alignment.Alignment, desc Genome) error {
	g, err := aln.OpenGenome(desc.Name)
	if err != nil {
		return err
	}
	parent := g.Parent()
	slot := parent.ChildIndex(g.Name())
	rings := make(map[int64][]int64)
	var order []int64
	for i := int64(0); i < g.NumTopSegments(); i++ {
		p := g.TopSegment(i).ParentIndex()
		if p == alignment.NullIndex {
			continue
		}
		if _, ok := rings[p]; !ok {
			order = append(order, p)
		}
		rings[p] = append(rings[p], i)
	}
	for _, p := range order {
		ring := rings[p]
		for k, i := range ring {
			g.TopSegment(i).SetNextParalogyIndex(ring[(k+1)%len(ring)])
		}
		if p < 0 || p >= parent.NumBottomSegments() {
			// Left dangling for Validate to report.
			continue
		}
		bottom := parent.BottomSegment(p)
		bottom.SetChildIndex(slot, ring[0])
		bottom.SetChildReversed(slot, g.TopSegment(ring[0]).Reversed())
	}
	return nil
}
