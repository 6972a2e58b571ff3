// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package liftover

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/ksenia-krasheninnikova/hal/alignment"
)

// Opts controls a liftover.
type Opts struct {
	// AllowDupes follows every copy of a duplicated segment.  When false,
	// bases that reach a duplicated segment on the way down the tree are
	// dropped.
	AllowDupes bool
}

// Mapping is one run of a liftover result: source [SrcStart, SrcEnd) maps
// base for base onto target [TgtStart, TgtEnd).  Coordinates are genome
// coordinates.  If Reversed, SrcStart maps to TgtEnd-1.
type Mapping struct {
	SrcStart, SrcEnd int64
	TgtStart, TgtEnd int64
	Reversed         bool
	// Sequence is the target sequence containing the run.
	Sequence *alignment.Sequence
	// Path names the duplicate copies chosen on the way down as
	// "child#ordinal;" steps, or "" if the run crossed no duplication.  The
	// ordinal is the rank of the copy's top segment within its paralogy
	// ring.
	Path string
}

// Len returns the number of bases in the run.
func (m Mapping) Len() int64 { return m.SrcEnd - m.SrcStart }

// step is one edge of the tree path from source to target.  Ascending
// steps leave genome through its top segments.  Descending steps leave it
// through child slot of its bottom segments.
type step struct {
	genome *alignment.Genome
	up     bool
	slot   int
}

// Lifter projects intervals from one genome onto another.  A Lifter is
// read-only and may be used concurrently.
type Lifter struct {
	src, tgt *alignment.Genome
	opts     Opts
	// related is false when src and tgt are in different trees.
	related bool
	steps   []step
}

// New creates a Lifter from src to tgt.  Both genomes must belong to the
// same alignment.
func New(src, tgt *alignment.Genome, opts Opts) (*Lifter, error) {
	if src == nil || tgt == nil {
		return nil, errors.E(errors.NotExist, "liftover: nil genome")
	}
	aln := src.Alignment()
	if !aln.Contains(src) || !aln.Contains(tgt) {
		return nil, errors.E(errors.NotExist,
			fmt.Sprintf("liftover: genomes %s and %s are not in the same alignment", src.Name(), tgt.Name()))
	}
	l := &Lifter{src: src, tgt: tgt, opts: opts}
	depth := make(map[*alignment.Genome]int)
	for g, d := src, 0; g != nil; g, d = g.Parent(), d+1 {
		depth[g] = d
	}
	var down []*alignment.Genome
	nca := tgt
	for ; nca != nil; nca = nca.Parent() {
		if _, ok := depth[nca]; ok {
			break
		}
		down = append(down, nca)
	}
	if nca == nil {
		return l, nil
	}
	l.related = true
	for g := src; g != nca; g = g.Parent() {
		l.steps = append(l.steps, step{genome: g, up: true})
	}
	parent := nca
	for i := len(down) - 1; i >= 0; i-- {
		l.steps = append(l.steps, step{genome: parent, slot: parent.ChildIndex(down[i].Name())})
		parent = down[i]
	}
	return l, nil
}

// Lift projects source interval [start, end) onto tgt.  See Lifter.Lift.
func Lift(src, tgt *alignment.Genome, start, end int64, opts Opts) ([]Mapping, error) {
	l, err := New(src, tgt, opts)
	if err != nil {
		return nil, err
	}
	return l.Lift(start, end)
}

// piece maps source [src, src+n) onto [lo, lo+n) of the genome currently
// being visited.  If rev, src maps to lo+n-1.
type piece struct {
	src, lo, n int64
	rev        bool
	path       string
}

// project returns the part of p covering current positions [x, x+m), moved
// onto the partner segment of the segment [segStart, segStart+segLen) that
// contains them.  The partner starts at partnerStart and runs backwards if
// flip is set.
func (p piece) project(x, m, segStart, segLen, partnerStart int64, flip bool, path string) piece {
	src := p.src + (x - p.lo)
	if p.rev {
		src = p.src + (p.lo + p.n - (x + m))
	}
	off := x - segStart
	lo := partnerStart + off
	if flip {
		lo = partnerStart + segLen - off - m
	}
	return piece{src: src, lo: lo, n: m, rev: p.rev != flip, path: path}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Lift projects genome interval [start, end) of the source genome onto the
// target.  The result is a list of maximal runs sorted by source start, then
// target start.  Bases with no homolog in the target produce no output.
func (l *Lifter) Lift(start, end int64) ([]Mapping, error) {
	if start < 0 || end < start || end > l.src.SequenceLength() {
		return nil, errors.E(errors.Precondition,
			fmt.Sprintf("liftover: interval [%d, %d) outside genome %s of length %d", start, end, l.src.Name(), l.src.SequenceLength()))
	}
	if start == end || !l.related {
		return nil, nil
	}
	pieces := []piece{{src: start, lo: start, n: end - start}}
	for _, st := range l.steps {
		var (
			next []piece
			err  error
		)
		for _, p := range pieces {
			if st.up {
				next, err = l.ascend(next, st.genome, p)
			} else {
				next, err = l.descend(next, st.genome, st.slot, p)
			}
			if err != nil {
				return nil, err
			}
		}
		if err := st.genome.Err(); err != nil {
			return nil, err
		}
		pieces = next
		if len(pieces) == 0 {
			return nil, nil
		}
	}
	maps, err := l.split(pieces)
	if err != nil {
		return nil, err
	}
	return merge(maps), l.tgt.Err()
}

// ascend moves p from g to g's parent.
func (l *Lifter) ascend(out []piece, g *alignment.Genome, p piece) ([]piece, error) {
	parent := g.Parent()
	end := p.lo + p.n
	i := g.TopSegmentIndexAt(p.lo)
	if i == alignment.NullIndex {
		return out, nil
	}
	for x := p.lo; x < end && i < g.NumTopSegments(); i++ {
		top := g.TopSegment(i)
		segStart, segLen := top.StartPosition(), top.Length()
		if segLen == 0 {
			continue
		}
		m := min64(end, segStart+segLen) - x
		if top.HasParent() {
			pi := top.ParentIndex()
			if pi < 0 || pi >= parent.NumBottomSegments() {
				return nil, errors.E(errors.Invalid,
					fmt.Sprintf("liftover: genome %s: top segment %d parent index %d out of range", g.Name(), i, pi))
			}
			bottom := parent.BottomSegment(pi)
			if bottom.Length() != segLen {
				return nil, errors.E(errors.Invalid,
					fmt.Sprintf("liftover: genome %s: top segment %d length %d, parent segment %d length %d",
						g.Name(), i, segLen, pi, bottom.Length()))
			}
			out = append(out, p.project(x, m, segStart, segLen, bottom.StartPosition(), top.Reversed(), p.path))
		}
		x += m
	}
	return out, nil
}

// descend moves p from g to its child in the given slot.
func (l *Lifter) descend(out []piece, g *alignment.Genome, slot int, p piece) ([]piece, error) {
	child := g.Child(slot)
	end := p.lo + p.n
	i := g.BottomSegmentIndexAt(p.lo)
	if i == alignment.NullIndex {
		return out, nil
	}
	for x := p.lo; x < end && i < g.NumBottomSegments(); i++ {
		bottom := g.BottomSegment(i)
		segStart, segLen := bottom.StartPosition(), bottom.Length()
		if segLen == 0 {
			continue
		}
		m := min64(end, segStart+segLen) - x
		if bottom.HasChild(slot) {
			ring, err := l.copies(g, child, bottom, slot)
			if err != nil {
				return nil, err
			}
			if len(ring) == 1 || l.opts.AllowDupes {
				for k, ci := range ring {
					top := child.TopSegment(ci)
					if top.Length() != segLen {
						return nil, errors.E(errors.Invalid,
							fmt.Sprintf("liftover: genome %s: top segment %d length %d, parent segment %d length %d",
								child.Name(), ci, top.Length(), i, segLen))
					}
					path := p.path
					if len(ring) > 1 {
						path += fmt.Sprintf("%s#%d;", child.Name(), k)
					}
					out = append(out, p.project(x, m, segStart, segLen, top.StartPosition(), top.Reversed(), path))
				}
			}
		}
		x += m
	}
	return out, nil
}

// copies returns the child top segments aligned to bottom, in index order.
// The position of a segment in this list names its copy: tandem copies that
// span several parent segments keep the same ordinal across them.
func (l *Lifter) copies(g, child *alignment.Genome, bottom alignment.BottomSegment, slot int) ([]int64, error) {
	ci := bottom.ChildIndex(slot)
	if ci < 0 || ci >= child.NumTopSegments() {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("liftover: genome %s: bottom segment %d child index %d out of range", g.Name(), bottom.ArrayIndex(), ci))
	}
	ring, err := child.TopSegment(ci).ParalogyCycle()
	if err != nil {
		return nil, err
	}
	if len(ring) > 1 {
		ring = append([]int64(nil), ring...)
		sort.Slice(ring, func(i, j int) bool { return ring[i] < ring[j] })
	}
	return ring, nil
}

// split cuts the pieces at target sequence boundaries.
func (l *Lifter) split(pieces []piece) ([]Mapping, error) {
	var maps []Mapping
	for _, p := range pieces {
		for x, end := p.lo, p.lo+p.n; x < end; {
			seq := l.tgt.SequenceBySite(x)
			if seq == nil {
				return nil, errors.E(errors.Invalid,
					fmt.Sprintf("liftover: genome %s: no sequence at %d", l.tgt.Name(), x))
			}
			m := min64(end, seq.End()) - x
			q := p.project(x, m, x, m, x, false, p.path)
			maps = append(maps, Mapping{
				SrcStart: q.src,
				SrcEnd:   q.src + q.n,
				TgtStart: q.lo,
				TgtEnd:   q.lo + q.n,
				Reversed: q.rev,
				Sequence: seq,
				Path:     q.path,
			})
			x += m
		}
	}
	return maps, nil
}

// merge coalesces runs that are adjacent in both the source and the target
// and agree in sequence, orientation and path.
func merge(maps []Mapping) []Mapping {
	if len(maps) == 0 {
		return nil
	}
	sort.Slice(maps, func(i, j int) bool {
		a, b := maps[i], maps[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Reversed != b.Reversed {
			return !a.Reversed
		}
		if a.Sequence.Start() != b.Sequence.Start() {
			return a.Sequence.Start() < b.Sequence.Start()
		}
		return a.SrcStart < b.SrcStart
	})
	out := maps[:1]
	for _, m := range maps[1:] {
		cur := &out[len(out)-1]
		if cur.Path == m.Path && cur.Reversed == m.Reversed && cur.Sequence == m.Sequence && cur.SrcEnd == m.SrcStart {
			if !m.Reversed && cur.TgtEnd == m.TgtStart {
				cur.SrcEnd, cur.TgtEnd = m.SrcEnd, m.TgtEnd
				continue
			}
			if m.Reversed && m.TgtEnd == cur.TgtStart {
				cur.SrcEnd, cur.TgtStart = m.SrcEnd, m.TgtStart
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SrcStart != b.SrcStart {
			return a.SrcStart < b.SrcStart
		}
		if a.TgtStart != b.TgtStart {
			return a.TgtStart < b.TgtStart
		}
		return a.Path < b.Path
	})
	return out
}
