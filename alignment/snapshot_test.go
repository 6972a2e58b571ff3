// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment_test

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/store"
)

func expectSameAlignment(t *testing.T, got, want *alignment.Alignment) {
	expect.EQ(t, got.GenomeNames(), want.GenomeNames())
	for _, name := range want.GenomeNames() {
		g, err := got.OpenGenome(name)
		assert.NoError(t, err)
		w, err := want.OpenGenome(name)
		assert.NoError(t, err)
		expect.EQ(t, g.ParentName(), w.ParentName())
		expect.EQ(t, g.BranchLength(), w.BranchLength())
		expect.EQ(t, g.ChildNames(), w.ChildNames())
		expect.EQ(t, g.NumSequences(), w.NumSequences())
		for i, seq := range w.Sequences() {
			expect.EQ(t, g.Sequences()[i].Info(), seq.Info())
		}
		gs, err := g.SubString(0, g.SequenceLength())
		assert.NoError(t, err)
		ws, err := w.SubString(0, w.SequenceLength())
		assert.NoError(t, err)
		expect.EQ(t, gs, ws, "genome %s", name)

		assert.EQ(t, g.NumTopSegments(), w.NumTopSegments())
		for i := int64(0); i < w.NumTopSegments(); i++ {
			expect.EQ(t, g.TopSegment(i).String(), w.TopSegment(i).String())
			expect.EQ(t, g.TopSegment(i).BottomParseIndex(), w.TopSegment(i).BottomParseIndex())
		}
		assert.EQ(t, g.NumBottomSegments(), w.NumBottomSegments())
		for i := int64(0); i < w.NumBottomSegments(); i++ {
			gb, wb := g.BottomSegment(i), w.BottomSegment(i)
			expect.EQ(t, gb.String(), wb.String())
			expect.EQ(t, gb.TopParseIndex(), wb.TopParseIndex())
			for slot := 0; slot < wb.NumChildren(); slot++ {
				expect.EQ(t, gb.ChildIndex(slot), wb.ChildIndex(slot))
				expect.EQ(t, gb.ChildReversed(slot), wb.ChildReversed(slot))
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	path := filepath.Join(tempDir, "three.hal")

	aln := buildThreeLevels(t)
	assert.NoError(t, alignment.Save(ctx, aln, path))

	got, err := alignment.Open(ctx, path, alignment.Opts{})
	assert.NoError(t, err)
	assert.NoError(t, got.Validate())
	expectSameAlignment(t, got, aln)
	assert.NoError(t, got.Close())

	// Reload into file-backed arrays.
	got, err = alignment.Open(ctx, path, alignment.Opts{
		WindowRecords: 2,
		NewBacking: func(genome string, kind alignment.ArrayKind) (store.Backing, error) {
			return store.OpenFile(filepath.Join(tempDir, genome+"."+kind.String()))
		},
	})
	assert.NoError(t, err)
	expectSameAlignment(t, got, aln)
	assert.NoError(t, got.Close())
}

func TestSnapshotLarge(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	path := filepath.Join(tempDir, "large.hal")

	// Several payload blocks per array.
	aln := alignment.New(alignment.Opts{})
	g, err := aln.AddRootGenome("Anc0")
	assert.NoError(t, err)
	const length = 3<<20 + 17
	assert.NoError(t, g.SetDimensions([]alignment.SequenceInfo{{Name: "s", Length: length}}))
	it := g.DNAIterator(0)
	for i := 0; i < length; i++ {
		assert.NoError(t, it.SetChar("ACGT"[(i*7)%4]))
		it.ToRight()
	}
	assert.NoError(t, g.Flush())
	assert.NoError(t, alignment.Save(ctx, aln, path))

	got, err := alignment.Open(ctx, path, alignment.Opts{})
	assert.NoError(t, err)
	gg, err := got.OpenGenome("Anc0")
	assert.NoError(t, err)
	for _, pos := range []int64{0, 1<<20 - 1, 1 << 20, 2<<20 + 5, length - 1} {
		s, err := gg.SubString(pos, 1)
		assert.NoError(t, err)
		expect.EQ(t, s[0], "ACGT"[(pos*7)%4], "pos %d", pos)
	}
}

func TestSnapshotErrors(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	_, err := alignment.Open(ctx, filepath.Join(tempDir, "missing.hal"), alignment.Opts{})
	expect.True(t, err != nil)

	path := filepath.Join(tempDir, "garbage.hal")
	assert.NoError(t, ioutil.WriteFile(path, []byte("this is not an alignment"), 0644))
	_, err = alignment.Open(ctx, path, alignment.Opts{})
	expect.True(t, err != nil)
}
