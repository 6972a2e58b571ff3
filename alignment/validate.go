// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

func invalidf(format string, args ...interface{}) error {
	return errors.E(errors.Invalid, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants of every genome, parents first.
func (a *Alignment) Validate() error {
	for _, n := range a.names {
		if err := a.genomes[n].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the structural invariants of the genome: both segment
// arrays tile the genome and respect sequence boundaries, parent and child
// links agree in both directions, paralogy rings close over exactly the top
// segments sharing a parent, and parse links are mutually consistent.  It
// returns an errors.Invalid error describing the first violation.
func (g *Genome) Validate() error {
	if err := g.validateTiling(); err != nil {
		return err
	}
	if err := g.validateParents(); err != nil {
		return err
	}
	if err := g.validateChildren(); err != nil {
		return err
	}
	if err := g.validateParseLinks(); err != nil {
		return err
	}
	return g.Err()
}

type segmentBounds func(i int64) (start, length int64)

func (g *Genome) topBounds(i int64) (int64, int64) {
	s := g.TopSegment(i)
	return s.StartPosition(), s.Length()
}

func (g *Genome) bottomBounds(i int64) (int64, int64) {
	s := g.BottomSegment(i)
	return s.StartPosition(), s.Length()
}

func (g *Genome) validateTiling() error {
	for _, arr := range []struct {
		kind   ArrayKind
		n      int64
		bounds segmentBounds
		first  func(*Sequence) (int64, int64)
	}{
		{TopArray, g.NumTopSegments(), g.topBounds, func(s *Sequence) (int64, int64) { return s.topStart, s.info.NumTopSegments }},
		{BottomArray, g.NumBottomSegments(), g.bottomBounds, func(s *Sequence) (int64, int64) { return s.bottomStart, s.info.NumBottomSegments }},
	} {
		if arr.n == 0 {
			continue
		}
		var pos int64
		for i := int64(0); i < arr.n; i++ {
			start, length := arr.bounds(i)
			if start != pos || length < 0 {
				return invalidf("genome %s: %v segment %d at [%d, %d), want start %d", g.name, arr.kind, i, start, start+length, pos)
			}
			pos += length
		}
		if pos != g.length {
			return invalidf("genome %s: %v segments cover [0, %d), genome length %d", g.name, arr.kind, pos, g.length)
		}
		for _, seq := range g.sequences {
			first, n := arr.first(seq)
			for i := first; i < first+n; i++ {
				if start, length := arr.bounds(i); start < seq.start || start+length > seq.End() {
					return invalidf("genome %s: %v segment %d [%d, %d) crosses sequence %s [%d, %d)",
						g.name, arr.kind, i, start, start+length, seq.Name(), seq.start, seq.End())
				}
			}
		}
	}
	return nil
}

func (g *Genome) validateParents() error {
	parent := g.Parent()
	nt := g.NumTopSegments()
	if parent == nil {
		for i := int64(0); i < nt; i++ {
			if g.TopSegment(i).HasParent() {
				return invalidf("genome %s: root top segment %d has a parent link", g.name, i)
			}
		}
		return nil
	}
	slot := parent.ChildIndex(g.name)
	np := parent.NumBottomSegments()
	members := make(map[int64]int64)
	for i := int64(0); i < nt; i++ {
		top := g.TopSegment(i)
		if !top.HasParent() {
			if top.HasParalogy() {
				return invalidf("genome %s: unaligned top segment %d has paralogy link %d", g.name, i, top.NextParalogyIndex())
			}
			continue
		}
		p := top.ParentIndex()
		if p < 0 || p >= np {
			return invalidf("genome %s: top segment %d parent index %d out of range [0, %d)", g.name, i, p, np)
		}
		if bl := parent.BottomSegment(p).Length(); bl != top.Length() {
			return invalidf("genome %s: top segment %d length %d, parent segment %d length %d", g.name, i, top.Length(), p, bl)
		}
		if next := top.NextParalogyIndex(); next != NullIndex && (next < 0 || next >= nt) {
			return invalidf("genome %s: top segment %d paralogy index %d out of range", g.name, i, next)
		}
		members[p]++
	}
	for p := int64(0); p < np; p++ {
		bottom := parent.BottomSegment(p)
		c := bottom.ChildIndex(slot)
		if c == NullIndex {
			if members[p] > 0 {
				return invalidf("genome %s: parent segment %d has no child link but %d top segments align to it", g.name, p, members[p])
			}
			continue
		}
		if c < 0 || c >= nt {
			return invalidf("genome %s: child index %d of parent segment %d out of range", g.name, c, p)
		}
		ring, err := g.TopSegment(c).ParalogyCycle()
		if err != nil {
			return err
		}
		seen := make(map[int64]bool, len(ring))
		for _, m := range ring {
			if seen[m] {
				return invalidf("genome %s: paralogy ring of top segment %d visits %d twice", g.name, c, m)
			}
			seen[m] = true
			if pi := g.TopSegment(m).ParentIndex(); pi != p {
				return invalidf("genome %s: top segment %d in paralogy ring of parent segment %d has parent %d", g.name, m, p, pi)
			}
		}
		if int64(len(ring)) != members[p] {
			return invalidf("genome %s: paralogy ring of parent segment %d has %d members, want %d", g.name, p, len(ring), members[p])
		}
		if bottom.ChildReversed(slot) != g.TopSegment(c).Reversed() {
			return invalidf("genome %s: orientation of parent segment %d disagrees with top segment %d", g.name, p, c)
		}
	}
	return nil
}

func (g *Genome) validateChildren() error {
	if g.NumBottomSegments() > 0 && g.bottomChildren != len(g.childNames) {
		return invalidf("genome %s: bottom segments have %d child slots, genome has %d children", g.name, g.bottomChildren, len(g.childNames))
	}
	return nil
}

func (g *Genome) validateParseLinks() error {
	nt, nb := g.NumTopSegments(), g.NumBottomSegments()
	for i := int64(0); i < nt; i++ {
		top := g.TopSegment(i)
		pos := top.StartPosition()
		b := top.BottomParseIndex()
		if b == NullIndex {
			if nb > 0 && pos < g.length {
				return invalidf("genome %s: top segment %d at %d has no bottom parse link", g.name, i, pos)
			}
			continue
		}
		if b < 0 || b >= nb {
			return invalidf("genome %s: top segment %d bottom parse index %d out of range", g.name, i, b)
		}
		bottom := g.BottomSegment(b)
		if !bottom.Contains(pos) || bottom.StartPosition()+top.BottomParseOffset() != pos {
			return invalidf("genome %s: top segment %d parse link (%d, %d) does not cover %d", g.name, i, b, top.BottomParseOffset(), pos)
		}
		back := bottom.TopParseIndex()
		if back < 0 || back >= nt || !g.TopSegment(back).Contains(bottom.StartPosition()) {
			return invalidf("genome %s: parse link round trip from top segment %d through bottom %d gives %d", g.name, i, b, back)
		}
	}
	for i := int64(0); i < nb; i++ {
		bottom := g.BottomSegment(i)
		pos := bottom.StartPosition()
		t := bottom.TopParseIndex()
		if t == NullIndex {
			if nt > 0 && pos < g.length {
				return invalidf("genome %s: bottom segment %d at %d has no top parse link", g.name, i, pos)
			}
			continue
		}
		if t < 0 || t >= nt {
			return invalidf("genome %s: bottom segment %d top parse index %d out of range", g.name, i, t)
		}
		top := g.TopSegment(t)
		if !top.Contains(pos) || top.StartPosition()+bottom.TopParseOffset() != pos {
			return invalidf("genome %s: bottom segment %d parse link (%d, %d) does not cover %d", g.name, i, t, bottom.TopParseOffset(), pos)
		}
	}
	return nil
}
