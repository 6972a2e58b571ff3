// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment_test

import (
	"testing"

	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/alignment/alignmenttest"
)

// threeLevels is a root A, its child M and M's children L and D.
//
//   A  s  bottom 4|6
//   M  s  top 4|6r          bottom 2|8
//      t  top 2 unaligned   bottom 2
//   L  s  top 2|8
//   D  s  top 2 unaligned|8|8r, the last two both aligned to M's bottom 1
var threeLevels = []alignmenttest.Genome{
	{
		Name: "A",
		Sequences: []alignmenttest.Sequence{
			{Name: "s", DNA: "ACGTACGTAC", Bottom: []int64{4, 6}},
		},
	},
	{
		Name:         "M",
		Parent:       "A",
		BranchLength: 0.5,
		Sequences: []alignmenttest.Sequence{
			{
				Name:   "s",
				DNA:    "ACGTGTACGT",
				Top:    []alignmenttest.Top{alignmenttest.Aligned(4, 0, false), alignmenttest.Aligned(6, 1, true)},
				Bottom: []int64{2, 8},
			},
			{Name: "t", DNA: "GG", Top: []alignmenttest.Top{alignmenttest.Unaligned(2)}, Bottom: []int64{2}},
		},
	},
	{
		Name:         "L",
		Parent:       "M",
		BranchLength: 0.25,
		Sequences: []alignmenttest.Sequence{
			{Name: "s", DNA: "ACGTACGTAC", Top: []alignmenttest.Top{alignmenttest.Aligned(2, 0, false), alignmenttest.Aligned(8, 1, false)}},
		},
	},
	{
		Name:         "D",
		Parent:       "M",
		BranchLength: 0.75,
		Sequences: []alignmenttest.Sequence{
			{
				Name:   "s",
				Length: 18,
				Top: []alignmenttest.Top{
					alignmenttest.Unaligned(2),
					alignmenttest.Aligned(8, 1, false),
					alignmenttest.Aligned(8, 1, true),
				},
			},
		},
	},
}

func buildThreeLevels(t testing.TB) *alignment.Alignment {
	return alignmenttest.MustBuild(t, threeLevels...)
}
