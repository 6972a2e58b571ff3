// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Package liftover projects intervals between the genomes of an alignment.

A query on the source genome climbs the tree through top segments to the
nearest common ancestor of the source and target, then walks down through
bottom segments toward the target.  The walk moves whole segment pieces at a
time, so a stretch that stays contiguous through every level comes out as a
single run.  Runs are merged when they are adjacent in both genomes and
agree in target sequence, orientation and duplication path.

When a bottom segment's child link leads to a paralogy ring with more than
one member, the query either branches into one run per copy
(Opts.AllowDupes) or drops the bases aligned there.

Convert applies liftover to a BED stream:

  aln, err := alignment.Open(ctx, "in.hal", alignment.Opts{})
  ...
  err = liftover.Convert(aln, "human", in, "mouse", out, liftover.ConvertOpts{})
*/
package liftover
