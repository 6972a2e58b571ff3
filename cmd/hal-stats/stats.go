// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/ksenia-krasheninnikova/hal/encoding/fasta"
	"github.com/minio/highwayhash"
)

// checksumChunk is the number of bases hashed per read.
const checksumChunk = 1 << 20

// withAlignment opens the snapshot at path, calls fn and closes it.
func withAlignment(ctx context.Context, path string, fn func(aln *alignment.Alignment) error) (err error) {
	aln, err := alignment.Open(ctx, path, alignment.Opts{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := aln.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(aln)
}

// printGenomes writes one summary line per genome.
func printGenomes(w io.Writer, aln *alignment.Alignment) error {
	out := tsv.NewWriter(w)
	for _, col := range []string{"GenomeName", "NumChildren", "Length", "NumSequences", "NumTopSegments", "NumBottomSegments"} {
		out.WriteString(col)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, name := range aln.GenomeNames() {
		g, err := aln.OpenGenome(name)
		if err != nil {
			return err
		}
		out.WriteString(name)
		out.WriteInt64(int64(g.NumChildren()))
		out.WriteInt64(g.SequenceLength())
		out.WriteInt64(int64(g.NumSequences()))
		out.WriteInt64(g.NumTopSegments())
		out.WriteInt64(g.NumBottomSegments())
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// printSequences writes one line per sequence of the named genome.
func printSequences(w io.Writer, aln *alignment.Alignment, name string) error {
	g, err := aln.OpenGenome(name)
	if err != nil {
		return err
	}
	out := tsv.NewWriter(w)
	for _, col := range []string{"SequenceName", "Start", "Length", "NumTopSegments", "NumBottomSegments"} {
		out.WriteString(col)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, s := range g.Sequences() {
		out.WriteString(s.Name())
		out.WriteInt64(s.Start())
		out.WriteInt64(s.Length())
		out.WriteInt64(s.NumTopSegments())
		out.WriteInt64(s.NumBottomSegments())
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// newick renders the tree below root in Newick format.
func newick(aln *alignment.Alignment, root string) (string, error) {
	var (
		b     strings.Builder
		visit func(name string) error
	)
	visit = func(name string) error {
		children, err := aln.ChildNames(name)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			b.WriteByte('(')
			for i, c := range children {
				if i > 0 {
					b.WriteByte(',')
				}
				if err := visit(c); err != nil {
					return err
				}
			}
			b.WriteByte(')')
		}
		b.WriteString(name)
		if parent, _ := aln.ParentName(name); parent != "" {
			bl, err := aln.BranchLength(parent, name)
			if err != nil {
				return err
			}
			b.WriteByte(':')
			b.WriteString(strconv.FormatFloat(bl, 'g', -1, 64))
		}
		return nil
	}
	if err := visit(root); err != nil {
		return "", err
	}
	b.WriteByte(';')
	return b.String(), nil
}

// writeFasta writes the DNA of the named genome to path, and its index to
// indexPath if not empty.
func writeFasta(ctx context.Context, aln *alignment.Alignment, name, path, indexPath string, lineWidth int) (err error) {
	g, err := aln.OpenGenome(name)
	if err != nil {
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if indexPath == "" {
		return fasta.Write(out.Writer(ctx), fasta.FromGenome(g), lineWidth)
	}
	idx, err := file.Create(ctx, indexPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, idx, &err)
	return fasta.WriteIndexed(out.Writer(ctx), idx.Writer(ctx), fasta.FromGenome(g), lineWidth)
}

// printChecksums writes the length and a highwayhash-64 of the DNA of every
// sequence in the named genome.  Unset bases hash as 'N'.
func printChecksums(w io.Writer, aln *alignment.Alignment, name string) error {
	g, err := aln.OpenGenome(name)
	if err != nil {
		return err
	}
	var zeroKey [highwayhash.Size]byte
	out := tsv.NewWriter(w)
	for _, s := range g.Sequences() {
		h, err := highwayhash.New64(zeroKey[:])
		if err != nil {
			return err
		}
		for off := int64(0); off < s.Length(); off += checksumChunk {
			n := s.Length() - off
			if n > checksumChunk {
				n = checksumChunk
			}
			bases, err := g.SubString(s.Start()+off, n)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(h, bases); err != nil {
				return err
			}
		}
		out.WriteString(s.Name())
		out.WriteInt64(s.Length())
		out.WriteString(fmt.Sprintf("%016x", h.Sum64()))
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

func printLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
