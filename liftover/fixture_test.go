// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package liftover_test

import (
	"testing"

	"github.com/ksenia-krasheninnikova/hal/alignment"
	at "github.com/ksenia-krasheninnikova/hal/alignment/alignmenttest"
	"github.com/ksenia-krasheninnikova/hal/dna"
	"github.com/ksenia-krasheninnikova/hal/liftover"
	"github.com/stretchr/testify/require"
)

// threeLevels is a root A, its child M and M's children L and D.
//
//   A  s  bottom 4|6
//   M  s  top 4|6r          bottom 2|8
//      t  top 2 unaligned   bottom 2
//   L  s  top 2|8
//   D  s  top 2 unaligned|8|8r, the last two both aligned to M's bottom 1
func threeLevels(t testing.TB) *alignment.Alignment {
	return at.MustBuild(t,
		at.Genome{
			Name:      "A",
			Sequences: []at.Sequence{{Name: "s", DNA: "ACGTACGTAC", Bottom: []int64{4, 6}}},
		},
		at.Genome{
			Name:         "M",
			Parent:       "A",
			BranchLength: 0.5,
			Sequences: []at.Sequence{
				{Name: "s", DNA: "ACGTGTACGT", Top: []at.Top{at.Aligned(4, 0, false), at.Aligned(6, 1, true)}, Bottom: []int64{2, 8}},
				{Name: "t", DNA: "GG", Top: []at.Top{at.Unaligned(2)}, Bottom: []int64{2}},
			},
		},
		at.Genome{
			Name:         "L",
			Parent:       "M",
			BranchLength: 0.25,
			Sequences:    []at.Sequence{{Name: "s", DNA: "ACGTACGTAC", Top: []at.Top{at.Aligned(2, 0, false), at.Aligned(8, 1, false)}}},
		},
		at.Genome{
			Name:         "D",
			Parent:       "M",
			BranchLength: 0.75,
			Sequences: []at.Sequence{{
				Name:   "s",
				Length: 18,
				Top:    []at.Top{at.Unaligned(2), at.Aligned(8, 1, false), at.Aligned(8, 1, true)},
			}},
		},
	)
}

const rootDNA = "ACGTTGCAAGGCTTACCGATAGCTAGGCAT"

// cousins is a root R with leaves X and Y.  X copies R; Y is R's reverse
// complement, aligned segment by segment in reverse order.
func cousins(t testing.TB) *alignment.Alignment {
	return at.MustBuild(t,
		at.Genome{
			Name:      "R",
			Sequences: []at.Sequence{{Name: "r", DNA: rootDNA, Bottom: []int64{10, 10, 10}}},
		},
		at.Genome{
			Name:   "X",
			Parent: "R",
			Sequences: []at.Sequence{{
				Name: "x",
				DNA:  rootDNA,
				Top:  []at.Top{at.Aligned(10, 0, false), at.Aligned(10, 1, false), at.Aligned(10, 2, false)},
			}},
		},
		at.Genome{
			Name:   "Y",
			Parent: "R",
			Sequences: []at.Sequence{{
				Name: "y",
				DNA:  dna.ReverseComplement(rootDNA),
				Top:  []at.Top{at.Aligned(10, 2, true), at.Aligned(10, 1, true), at.Aligned(10, 0, true)},
			}},
		},
	)
}

// run is a Mapping with the sequence replaced by its name.
type run struct {
	src, srcEnd, tgt, tgtEnd int64
	rev                      bool
	seq, path                string
}

func runs(maps []liftover.Mapping) []run {
	var r []run
	for _, m := range maps {
		r = append(r, run{m.SrcStart, m.SrcEnd, m.TgtStart, m.TgtEnd, m.Reversed, m.Sequence.Name(), m.Path})
	}
	return r
}

func genome(t testing.TB, aln *alignment.Alignment, name string) *alignment.Genome {
	g, err := aln.OpenGenome(name)
	require.NoError(t, err)
	return g
}

func lift(t testing.TB, aln *alignment.Alignment, src, tgt string, start, end int64, dupes bool) []run {
	maps, err := liftover.Lift(genome(t, aln, src), genome(t, aln, tgt), start, end, liftover.Opts{AllowDupes: dupes})
	require.NoError(t, err)
	return runs(maps)
}
