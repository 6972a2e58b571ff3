// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/ksenia-krasheninnikova/hal/encoding/bed"
)

func scanAll(t *testing.T, in string, opts bed.ScanOpts) ([]*bed.Record, error) {
	sc := bed.NewScanner(strings.NewReader(in), opts)
	var recs []*bed.Record
	for sc.Scan() {
		recs = append(recs, sc.Record())
	}
	return recs, sc.Err()
}

func TestScan(t *testing.T) {
	in := "track name=x\n# comment\n\n" +
		"chr1 10 20 a 5 + 12 18 255,0,0 2 3,4, 0,6,\n" +
		"chr2\t1\t2\tb\t0\t-\t1\t2\t0\t1\t1\t0\textra1\n"
	recs, err := scanAll(t, in, bed.ScanOpts{})
	assert.NoError(t, err)
	assert.EQ(t, len(recs), 2)
	expect.EQ(t, recs[0], &bed.Record{
		Chrom: "chr1", Start: 10, End: 20, Name: "a", Score: 5, Strand: '+',
		ThickStart: 12, ThickEnd: 18, ItemRGB: "255,0,0",
		BlockSizes: []int64{3, 4}, BlockStarts: []int64{0, 6}, Version: 12,
	})
	expect.EQ(t, recs[1].Chrom, "chr2")
	expect.EQ(t, recs[1].Strand, byte('-'))
	expect.EQ(t, recs[1].Extra, []string{"extra1"})
}

func TestScanVersion(t *testing.T) {
	tests := []struct {
		in      string
		version int
		want    int
		extra   []string
	}{
		{"c 1 2\n", 0, 3, nil},
		{"c 1 2 n 0\n", 0, 5, nil},
		{"c 1 2 n 0 + 1 2 0 x y\n", 0, 9, []string{"x", "y"}},
		{"c 1 2 x y\n", 3, 3, []string{"x", "y"}},
	}
	for _, tt := range tests {
		sc := bed.NewScanner(strings.NewReader(tt.in), bed.ScanOpts{Version: tt.version})
		assert.True(t, sc.Scan(), "%q: %v", tt.in, sc.Err())
		expect.EQ(t, sc.Version(), tt.want, tt.in)
		expect.EQ(t, sc.Record().Version, tt.want, tt.in)
		expect.EQ(t, sc.Record().Extra, tt.extra, tt.in)
		expect.EQ(t, sc.Line(), 1)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		in      string
		version int
		want    string
	}{
		{"c 1\n", 0, "want at least 3"},
		{"c x 2\n", 0, "start"},
		{"c 5 2\n", 0, "invalid interval"},
		{"c 1 2 n 0 *\n", 0, "invalid strand"},
		{"c 1 2\n", 6, "want at least 6"},
		{"c 1 2\n", 10, "invalid version"},
		{"c 0 10 n 0 + 0 10 0 2 3,4, 0,\n", 0, "blockStarts"},
		{"c 0 10 n 0 + 0 10 0 1 4, 8,\n", 0, "outside record"},
		{"c 1 2\nc 3 y\n", 0, "line 2"},
	}
	for _, tt := range tests {
		_, err := scanAll(t, tt.in, bed.ScanOpts{Version: tt.version})
		assert.NotNil(t, err, tt.in)
		expect.HasSubstr(t, err.Error(), tt.want)
	}
}

func TestScanWideLine(t *testing.T) {
	wide := func(n int) string {
		return "c 1 2" + strings.Repeat(" e", n-3) + "  \n"
	}
	recs, err := scanAll(t, wide(256), bed.ScanOpts{Version: 3})
	assert.NoError(t, err)
	assert.EQ(t, len(recs), 1)
	expect.EQ(t, len(recs[0].Extra), 253)

	_, err = scanAll(t, "c 1 2\n"+wide(257), bed.ScanOpts{Version: 3})
	assert.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "line 2: more than 256 columns")
}

func TestWrite(t *testing.T) {
	rec3 := &bed.Record{Chrom: "chr1", Start: 10, End: 20, Version: 3, Extra: []string{"e"}}
	rec12 := &bed.Record{
		Chrom: "chr1", Start: 10, End: 20, Name: "a", Score: 5, Strand: '+',
		ThickStart: 12, ThickEnd: 18, ItemRGB: "255,0,0",
		BlockSizes: []int64{3, 4}, BlockStarts: []int64{0, 6}, Version: 12,
	}
	tests := []struct {
		rec  *bed.Record
		opts bed.WriteOpts
		want string
	}{
		{rec3, bed.WriteOpts{}, "chr1\t10\t20\n"},
		{rec3, bed.WriteOpts{KeepExtra: true}, "chr1\t10\t20\te\n"},
		{rec3, bed.WriteOpts{Version: 6}, "chr1\t10\t20\t.\t0\t.\n"},
		{rec3, bed.WriteOpts{Version: 12}, "chr1\t10\t20\t.\t0\t.\t10\t20\t0\t1\t10,\t0,\n"},
		{rec12, bed.WriteOpts{}, "chr1\t10\t20\ta\t5\t+\t12\t18\t255,0,0\t2\t3,4,\t0,6,\n"},
		{rec12, bed.WriteOpts{Version: 4}, "chr1\t10\t20\ta\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		w := bed.NewWriter(&buf, tt.opts)
		assert.NoError(t, w.Write(tt.rec))
		assert.NoError(t, w.Flush())
		expect.EQ(t, buf.String(), tt.want)
	}

	w := bed.NewWriter(ioutil.Discard, bed.WriteOpts{Version: 11})
	expect.HasSubstr(t, w.Write(rec3).Error(), "invalid version")
}

// Records survive a write and re-scan at their own version.
func TestWriteScan(t *testing.T) {
	in := "chr1\t10\t20\ta\t5\t+\t12\t18\t255,0,0\t2\t3,4,\t0,6,\n" +
		"chr2\t0\t7\tb\t1\t-\t0\t7\t0\t1\t7,\t0,\n"
	recs, err := scanAll(t, in, bed.ScanOpts{})
	assert.NoError(t, err)
	var buf bytes.Buffer
	w := bed.NewWriter(&buf, bed.WriteOpts{})
	for _, r := range recs {
		assert.NoError(t, w.Write(r))
	}
	assert.NoError(t, w.Flush())
	expect.EQ(t, buf.String(), in)
}

func TestOpenCreate(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"a.bed", "a.bed.gz"} {
		path := filepath.Join(tempDir, name)
		out, err := bed.Create(ctx, path, false)
		assert.NoError(t, err)
		_, err = out.Write([]byte("chr1\t1\t2\n"))
		assert.NoError(t, err)
		assert.NoError(t, out.Close())

		in, err := bed.Open(ctx, path)
		assert.NoError(t, err)
		data, err := ioutil.ReadAll(in)
		assert.NoError(t, err)
		assert.NoError(t, in.Close())
		expect.EQ(t, string(data), "chr1\t1\t2\n", name)
	}

	path := filepath.Join(tempDir, "append.bed")
	for i := 0; i < 2; i++ {
		out, err := bed.Create(ctx, path, true)
		assert.NoError(t, err)
		_, err = out.Write([]byte("chr1\t1\t2\n"))
		assert.NoError(t, err)
		assert.NoError(t, out.Close())
	}
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "chr1\t1\t2\nchr1\t1\t2\n")

	_, err = bed.Open(ctx, filepath.Join(tempDir, "missing.bed"))
	expect.True(t, err != nil)
}
