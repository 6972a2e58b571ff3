// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Command hal-liftover maps BED interval coordinates between two genomes of an
alignment snapshot.

  Usage: hal-liftover [flags] halFile srcGenome srcBed tgtGenome tgtBed

srcBed may be "stdin" (or "-") and tgtBed may be "stdout" (or "-").  Paths
ending in .gz are read and written gzipped.  By default every copy of a
duplicated region receives a mapping; --noDupes drops bases whose mapping
would have to choose between copies.
*/
package main
