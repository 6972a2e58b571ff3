// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package alignment stores a multiple-genome alignment as a forest of genomes.

Each Genome owns a DNA array and two segment arrays.  Its top segments
tile the genome and each one is aligned to a bottom segment of the parent
genome; its bottom segments tile the genome too and each one links to one top
segment in every child.  Top segments of a child that align to the same parent
bottom segment (duplications) are chained into a paralogy ring through their
NextParalogyIndex.  Top and bottom arrays of one genome are cross-linked by
parse links (index + offset of the segment in the other array covering the
start position).

Every link is an int64 index into a flat array; NullIndex marks a missing
link.  Genomes reference their parent and children by name through the
owning Alignment.

Positions are visited with iterators: DNAIterator steps one base at a time and
TopSegmentIterator/BottomSegmentIterator step one segment at a time.  All of
them carry a reversed flag which swaps the meaning of ToLeft and ToRight and
reverse-complements the bases they read or write.
*/
package alignment
