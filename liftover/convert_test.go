// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package liftover_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/ksenia-krasheninnikova/hal/liftover"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	aln := threeLevels(t)
	tests := []struct {
		name     string
		src, tgt string
		in       string
		opts     liftover.ConvertOpts
		want     string
	}{
		{
			"bed6 strand flip", "L", "A",
			"s 0 10 name 5 +\n",
			liftover.ConvertOpts{},
			"s\t0\t4\tname\t5\t+\ns\t4\t10\tname\t5\t-\n",
		},
		{
			"bed12 blocks", "L", "A",
			"s\t0\t10\tn\t0\t+\t1\t9\t0\t2\t3,4,\t0,6,\n",
			liftover.ConvertOpts{},
			"s\t0\t3\tn\t0\t+\t1\t3\t0\t1\t3,\t0,\n" +
				"s\t4\t8\tn\t0\t-\t5\t8\t0\t1\t4,\t0,\n",
		},
		{
			"bed12 grouped", "L", "A",
			"s\t0\t4\tn\t0\t+\t0\t4\t0\t2\t1,2,\t0,2,\n",
			liftover.ConvertOpts{},
			"s\t0\t4\tn\t0\t+\t0\t4\t0\t2\t1,2,\t0,2,\n",
		},
		{
			"bed12 touching blocks", "L", "A",
			"s\t0\t4\tn\t0\t+\t0\t4\t0\t2\t2,2,\t0,2,\n",
			liftover.ConvertOpts{},
			"s\t0\t4\tn\t0\t+\t0\t4\t0\t1\t4,\t0,\n",
		},
		{
			"bed12 from bed6", "L", "A",
			"s 0 10 x 1 -\n",
			liftover.ConvertOpts{OutVersion: 12},
			"s\t0\t4\tx\t1\t-\t0\t4\t0\t1\t4,\t0,\n" +
				"s\t4\t10\tx\t1\t+\t4\t10\t0\t1\t6,\t0,\n",
		},
		{
			"keep extra", "L", "A",
			"s 2 4 e1 e2\n",
			liftover.ConvertOpts{InVersion: 3, KeepExtra: true},
			"s\t2\t4\te1\te2\n",
		},
		{
			"drop extra", "L", "A",
			"s 2 4 e1 e2\n",
			liftover.ConvertOpts{InVersion: 3},
			"s\t2\t4\n",
		},
		{
			"bed3 to bed6", "L", "A",
			"s 2 4\ns 5 7\n",
			liftover.ConvertOpts{OutVersion: 6},
			"s\t2\t4\t.\t0\t.\ns\t7\t9\t.\t0\t.\n",
		},
		{
			"unmapped", "D", "M",
			"s 0 2\n",
			liftover.ConvertOpts{},
			"",
		},
		{
			"unaligned sequence", "M", "A",
			"t 0 2\ns 8 10\n",
			liftover.ConvertOpts{},
			"s\t4\t6\n",
		},
		{
			"duplicates dropped", "M", "D",
			"s 2 10 n 0 +\n",
			liftover.ConvertOpts{},
			"",
		},
		{
			"duplicates", "M", "D",
			"s 2 10 n 0 +\n",
			liftover.ConvertOpts{AllowDupes: true},
			"s\t2\t10\tn\t0\t+\ns\t10\t18\tn\t0\t-\n",
		},
		{
			"comments", "L", "L",
			"track name=q\n# x\ns 1 2\n",
			liftover.ConvertOpts{},
			"s\t1\t2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := liftover.Convert(aln, tt.src, strings.NewReader(tt.in), tt.tgt, &out, tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.want, out.String())
		})
	}
}

// Output order follows input order across batches.
func TestConvertBatches(t *testing.T) {
	aln := threeLevels(t)
	var in, want strings.Builder
	for i := 0; i < 50; i++ {
		p := i % 10
		fmt.Fprintf(&in, "s %d %d\n", p, p+1)
		q := p
		if p >= 4 {
			q = 13 - p
		}
		fmt.Fprintf(&want, "s\t%d\t%d\n", q, q+1)
	}
	for _, opts := range []liftover.ConvertOpts{
		{},
		{Parallelism: 1, BatchSize: 1},
		{Parallelism: 4, BatchSize: 3},
		{Parallelism: 64, BatchSize: 7},
	} {
		var out bytes.Buffer
		require.NoError(t, liftover.Convert(aln, "L", strings.NewReader(in.String()), "A", &out, opts))
		require.Equal(t, want.String(), out.String(), "%+v", opts)
	}
}

func TestConvertErrors(t *testing.T) {
	aln := threeLevels(t)
	var out bytes.Buffer
	err := liftover.Convert(aln, "Q", strings.NewReader("s 0 1\n"), "A", &out, liftover.ConvertOpts{})
	require.True(t, errors.Is(errors.NotExist, err), "%v", err)

	err = liftover.Convert(aln, "L", strings.NewReader("s 0 1\n"), "A", &out, liftover.ConvertOpts{OutVersion: 10})
	require.True(t, errors.Is(errors.Invalid, err), "%v", err)

	// Records before the failing one are written.
	out.Reset()
	err = liftover.Convert(aln, "L", strings.NewReader("s 0 2\nnope 0 1\ns 2 3\n"), "A", &out, liftover.ConvertOpts{})
	require.True(t, errors.Is(errors.NotExist, err), "%v", err)
	require.Contains(t, err.Error(), "line 2")
	require.Equal(t, "s\t0\t2\n", out.String())

	// The first failing line is reported whichever job lifted it.
	for _, opts := range []liftover.ConvertOpts{
		{Parallelism: 1, BatchSize: 8},
		{Parallelism: 2, BatchSize: 8},
		{Parallelism: 3, BatchSize: 2},
	} {
		out.Reset()
		in := "s 0 1\ns 1 2\nnope 0 1\ns 2 3\nq 0 1\ns 3 4\n"
		err = liftover.Convert(aln, "L", strings.NewReader(in), "A", &out, opts)
		require.True(t, errors.Is(errors.NotExist, err), "%+v: %v", opts, err)
		require.Contains(t, err.Error(), "line 3", "%+v", opts)
		require.NotContains(t, err.Error(), "line 5", "%+v", opts)
		require.Equal(t, "s\t0\t1\ns\t1\t2\n", out.String(), "%+v", opts)
	}

	out.Reset()
	err = liftover.Convert(aln, "L", strings.NewReader("s 0 11\n"), "A", &out, liftover.ConvertOpts{})
	require.True(t, errors.Is(errors.Precondition, err), "%v", err)

	err = liftover.Convert(aln, "L", strings.NewReader("s x 1\n"), "A", &out, liftover.ConvertOpts{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}
