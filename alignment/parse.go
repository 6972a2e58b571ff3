// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

// FixParseInfo recomputes every top-to-bottom and bottom-to-top parse link of
// the genome from segment coordinates.  Both arrays must already tile the
// genome.  Links with no covering segment (for instance in a leaf, which has
// no bottom segments) are set to NullIndex.
func (g *Genome) FixParseInfo() error {
	nt, nb := g.NumTopSegments(), g.NumBottomSegments()

	var b int64
	for t := int64(0); t < nt; t++ {
		top := g.TopSegment(t)
		pos := top.StartPosition()
		for b < nb && g.BottomSegment(b).EndPosition() <= pos {
			b++
		}
		if b == nb || !g.BottomSegment(b).Contains(pos) {
			top.SetBottomParseIndex(NullIndex)
			top.SetBottomParseOffset(0)
			continue
		}
		top.SetBottomParseIndex(b)
		top.SetBottomParseOffset(pos - g.BottomSegment(b).StartPosition())
	}

	var t int64
	for b := int64(0); b < nb; b++ {
		bottom := g.BottomSegment(b)
		pos := bottom.StartPosition()
		for t < nt && g.TopSegment(t).EndPosition() <= pos {
			t++
		}
		if t == nt || !g.TopSegment(t).Contains(pos) {
			bottom.SetTopParseIndex(NullIndex)
			bottom.SetTopParseOffset(0)
			continue
		}
		bottom.SetTopParseIndex(t)
		bottom.SetTopParseOffset(pos - g.TopSegment(t).StartPosition())
	}
	return g.Err()
}
