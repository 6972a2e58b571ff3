// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dna implements the nucleotide alphabet and the DNA access layer
// used by genomes: a byte-per-base array with a cached window over a
// store.Backing.
package dna

// complementTable maps each legal nucleotide (ACGTN plus the IUPAC ambiguity
// codes, either case) to its complement.  Zero marks an illegal character.
var complementTable [256]byte

func init() {
	for _, pair := range []string{"AT", "CG", "RY", "KM", "BV", "DH", "NN", "SS", "WW"} {
		a, b := pair[0], pair[1]
		complementTable[a], complementTable[b] = b, a
		la, lb := a+'a'-'A', b+'a'-'A'
		complementTable[la], complementTable[lb] = lb, la
	}
}

// IsNucleotide reports whether c belongs to the nucleotide alphabet.
func IsNucleotide(c byte) bool {
	return complementTable[c] != 0
}

// Complement returns the complement of c, preserving case.  Characters
// outside the alphabet are returned unchanged.
func Complement(c byte) byte {
	if r := complementTable[c]; r != 0 {
		return r
	}
	return c
}

// ReverseComplementInplace reverse-complements seq.
func ReverseComplementInplace(seq []byte) {
	nByte := len(seq)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		seq[idx], seq[invIdx] = Complement(seq[invIdx]), Complement(seq[idx])
	}
	if nByte&1 == 1 {
		seq[nByteDiv2] = Complement(seq[nByteDiv2])
	}
}

// ReverseComplement returns the reverse complement of s.
func ReverseComplement(s string) string {
	b := []byte(s)
	ReverseComplementInplace(b)
	return string(b)
}
