// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/encoding/bed"
	"github.com/ksenia-krasheninnikova/hal/liftover"
)

var (
	noDupes       = flag.Bool("noDupes", false, "Do not map between duplications in the graph")
	appendOut     = flag.Bool("append", false, "Append results to tgtBed")
	inBedVersion  = flag.Int("inBedVersion", 0, "BED version of the input, 3 to 9 or 12; 0 autodetects")
	outBedVersion = flag.Int("outBedVersion", 0, "BED version of the output, 3 to 9 or 12; 0 uses the input version")
	keepExtra     = flag.Bool("keepExtra", false, "Keep input columns beyond the BED version")
	parallelism   = flag.Int("parallelism", 0, "Number of records lifted concurrently; 0 = runtime.NumCPU()")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] halFile srcGenome srcBed tgtGenome tgtBed\n", os.Args[0])
	flag.PrintDefaults()
}

type runOpts struct {
	halPath, srcGenome, srcBed, tgtGenome, tgtBed string
	appendOut                                      bool
	convert                                        liftover.ConvertOpts
}

func run(ctx context.Context, opts runOpts) (err error) {
	aln, err := alignment.Open(ctx, opts.halPath, alignment.Opts{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := aln.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if aln.NumGenomes() == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("alignment %s is empty", opts.halPath))
	}
	in, err := bed.Open(ctx, opts.srcBed)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	out, err := bed.Create(ctx, opts.tgtBed, opts.appendOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return liftover.Convert(aln, opts.srcGenome, in, opts.tgtGenome, out, opts.convert)
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 5 {
		usage()
		log.Fatalf("hal-liftover: want 5 positional arguments, got %d", flag.NArg())
	}
	args := flag.Args()
	opts := runOpts{
		halPath:   args[0],
		srcGenome: args[1],
		srcBed:    args[2],
		tgtGenome: args[3],
		tgtBed:    args[4],
		appendOut: *appendOut,
		convert: liftover.ConvertOpts{
			InVersion:   *inBedVersion,
			OutVersion:  *outBedVersion,
			KeepExtra:   *keepExtra,
			AllowDupes:  !*noDupes,
			Parallelism: *parallelism,
		},
	}
	if err := run(vcontext.Background(), opts); err != nil {
		log.Fatalf("hal-liftover: %v", err)
	}
}
