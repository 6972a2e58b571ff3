// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestCodec(t *testing.T) {
	var b encoder
	b.putString("Anc0")
	b.putVarint(-12345)
	b.putUvarint(1 << 40)
	b.putFloat64(0.125)
	b.putUint8(7)
	b.putBytes([]byte{1, 2, 3})

	d := decoder{buf: b}
	expect.EQ(t, d.string(), "Anc0")
	expect.EQ(t, d.varint(), int64(-12345))
	expect.EQ(t, d.uvarint(), uint64(1<<40))
	expect.EQ(t, d.float64(), 0.125)
	expect.EQ(t, d.uint8(), uint8(7))
	expect.EQ(t, d.bytes(), []byte{1, 2, 3})
	assert.NoError(t, d.err)

	d.uint64()
	expect.True(t, errors.Is(errors.Invalid, d.err), "%v", d.err)
}

func TestRestoreBlockChecksum(t *testing.T) {
	aln := New(Opts{})
	g, err := aln.AddRootGenome("g")
	assert.NoError(t, err)
	assert.NoError(t, g.SetDimensions([]SequenceInfo{{Name: "s", Length: 8}}))

	block := encodeBlock(DNAArray, 0, []byte("ACGTACGT"))
	d := decoder{buf: block}
	expect.EQ(t, d.uint8(), uint8(tagBlock))
	kind, n, err := restoreBlock(&d, g)
	assert.NoError(t, err)
	expect.EQ(t, kind, DNAArray)
	expect.EQ(t, n, int64(8))
	s, err := g.SubString(0, 8)
	assert.NoError(t, err)
	expect.EQ(t, s, "ACGTACGT")

	// Tag, kind, offset and length take one byte each; flip a checksum bit.
	block = encodeBlock(DNAArray, 0, []byte("TTTTTTTT"))
	block[4] ^= 1
	d = decoder{buf: block[1:]}
	_, _, err = restoreBlock(&d, g)
	expect.True(t, errors.Is(errors.Integrity, err), "%v", err)

	// A block past the end of the array.
	d = decoder{buf: encodeBlock(TopArray, 0, []byte("x"))[1:]}
	_, _, err = restoreBlock(&d, g)
	expect.True(t, errors.Is(errors.Invalid, err), "%v", err)
}
