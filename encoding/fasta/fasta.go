// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fasta reads and writes FASTA data and exposes the DNA of an
// alignment genome as FASTA.  FASTA files consist of a number of named
// sequences that may be interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Sequence names are the stretch of characters excluding spaces immediately
// after '>'.  For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/ksenia-krasheninnikova/hal/alignment"
	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024 * 300 // 300 MB

// Fasta represents a set of named sequences.
type Fasta interface {
	// Get returns the bases of the given sequence in the 0-based half-open
	// interval [start, end).  Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences in order.
	SeqNames() []string
}

func checkRange(seqName string, start, end, length uint64) error {
	if end <= start {
		return errors.Errorf("start must be less than end")
	}
	if end > length {
		return errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, length)
	}
	return nil
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New creates a Fasta that holds all the FASTA data from the given reader in
// memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	var (
		seqName string
		started bool
		seq     strings.Builder
	)
	add := func() error {
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("duplicate sequence %s", seqName)
		}
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			if !started {
				return nil, errors.Errorf("malformed FASTA file: bases before the first name")
			}
			seq.WriteString(line)
			continue
		}
		if started {
			if err := add(); err != nil {
				return nil, err
			}
		}
		started = true
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			return nil, errors.Errorf("malformed FASTA file: empty sequence name")
		}
		seqName = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	if started {
		if err := add(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, uint64(len(s))); err != nil {
		return "", err
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}

type genomeFasta struct {
	g *alignment.Genome
}

// FromGenome returns a Fasta that reads the sequences of g.  Unset bases
// read as 'N'.
func FromGenome(g *alignment.Genome) Fasta {
	return genomeFasta{g}
}

// Get implements Fasta.Get().
func (f genomeFasta) Get(seqName string, start, end uint64) (string, error) {
	seq, err := f.g.SequenceByName(seqName)
	if err != nil {
		return "", err
	}
	if err := checkRange(seqName, start, end, uint64(seq.Length())); err != nil {
		return "", err
	}
	return f.g.SubString(seq.Start()+int64(start), int64(end-start))
}

// Len implements Fasta.Len().
func (f genomeFasta) Len(seqName string) (uint64, error) {
	seq, err := f.g.SequenceByName(seqName)
	if err != nil {
		return 0, err
	}
	return uint64(seq.Length()), nil
}

// SeqNames implements Fasta.SeqNames().
func (f genomeFasta) SeqNames() []string {
	seqs := f.g.Sequences()
	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = s.Name()
	}
	return names
}
