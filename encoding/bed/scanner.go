// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// maxTokens bounds the number of columns read from one line.
const maxTokens = 256

// ScanOpts configures a Scanner.
type ScanOpts struct {
	// Version is the BED version of the input.  Zero autodetects it from the
	// first record.
	Version int
}

// Scanner reads BED records.  Blank, comment ('#'), "track" and "browser"
// lines are skipped.
//
// Usage:
//   sc := bed.NewScanner(r, bed.ScanOpts{})
//   for sc.Scan() {
//     rec := sc.Record()
//     ...
//   }
//   if err := sc.Err(); err != nil { ... }
type Scanner struct {
	sc      *bufio.Scanner
	version int
	tokens  [][]byte
	rec     *Record
	line    int
	err     error
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.Reader, opts ScanOpts) *Scanner {
	s := &Scanner{
		sc:      bufio.NewScanner(r),
		version: opts.Version,
		tokens:  make([][]byte, maxTokens),
	}
	s.sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	if s.version != 0 && !ValidVersion(s.version) {
		s.err = errors.Errorf("bed: invalid version %d", s.version)
	}
	return s
}

// getTokens splits curLine at whitespace into tokens and returns the number
// of tokens found, or -1 if curLine has more than len(tokens) tokens.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	for pos := posEnd; pos != lineLen; pos++ {
		if curLine[pos] > ' ' {
			return -1
		}
	}
	return len(tokens)
}

func skipLine(first []byte) bool {
	return first[0] == '#' || bytes.Equal(first, []byte("track")) || bytes.Equal(first, []byte("browser"))
}

// Scan reads the next record.  It returns false at EOF or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.sc.Scan() {
		s.line++
		n := getTokens(s.tokens, s.sc.Bytes())
		if n < 0 {
			s.err = errors.Errorf("bed: line %d: more than %d columns", s.line, len(s.tokens))
			return false
		}
		if n == 0 || skipLine(s.tokens[0]) {
			continue
		}
		if s.version == 0 {
			if s.version = detectVersion(n); !ValidVersion(s.version) {
				s.err = errors.Errorf("bed: line %d: %d columns, want at least 3", s.line, n)
				return false
			}
		}
		rec, err := parseRecord(s.tokens[:n], s.version)
		if err != nil {
			s.err = errors.Wrapf(err, "bed: line %d", s.line)
			return false
		}
		s.rec = rec
		return true
	}
	s.err = s.sc.Err()
	return false
}

// Record returns the record read by the last successful Scan.  The caller
// may retain it.
func (s *Scanner) Record() *Record { return s.rec }

// Line returns the one-based line number of the last record.
func (s *Scanner) Line() int { return s.line }

// Version returns the input version, or zero before the first record is
// autodetected.
func (s *Scanner) Version() int { return s.version }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }

func parseInt(token []byte, what string) (int64, error) {
	v, err := strconv.ParseInt(gunsafe.BytesToString(token), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", what)
	}
	return v, nil
}

// parseList parses a comma-separated list with an optional trailing comma.
func parseList(token []byte, n int, what string) ([]int64, error) {
	fields := bytes.Split(bytes.TrimSuffix(token, []byte(",")), []byte(","))
	if len(fields) != n {
		return nil, errors.Errorf("%s: %d values, want %d", what, len(fields), n)
	}
	vals := make([]int64, n)
	for i, f := range fields {
		v, err := parseInt(f, what)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func parseRecord(tokens [][]byte, version int) (*Record, error) {
	if len(tokens) < version {
		return nil, errors.Errorf("%d columns, want at least %d", len(tokens), version)
	}
	r := &Record{Chrom: string(tokens[0]), Version: version}
	var err error
	if r.Start, err = parseInt(tokens[1], "start"); err != nil {
		return nil, err
	}
	if r.End, err = parseInt(tokens[2], "end"); err != nil {
		return nil, err
	}
	if r.Start < 0 || r.End < r.Start {
		return nil, errors.Errorf("invalid interval [%d, %d)", r.Start, r.End)
	}
	if version >= 4 {
		r.Name = string(tokens[3])
	}
	if version >= 5 {
		if r.Score, err = parseInt(tokens[4], "score"); err != nil {
			return nil, err
		}
	}
	if version >= 6 {
		if len(tokens[5]) != 1 || (tokens[5][0] != '+' && tokens[5][0] != '-' && tokens[5][0] != '.') {
			return nil, errors.Errorf("invalid strand %q", tokens[5])
		}
		r.Strand = tokens[5][0]
	}
	if version >= 7 {
		if r.ThickStart, err = parseInt(tokens[6], "thickStart"); err != nil {
			return nil, err
		}
	}
	if version >= 8 {
		if r.ThickEnd, err = parseInt(tokens[7], "thickEnd"); err != nil {
			return nil, err
		}
	}
	if version >= 9 {
		r.ItemRGB = string(tokens[8])
	}
	if version >= 12 {
		count, err := parseInt(tokens[9], "blockCount")
		if err != nil {
			return nil, err
		}
		if count < 0 || count > int64(len(tokens[10])) {
			return nil, errors.Errorf("invalid blockCount %d", count)
		}
		if r.BlockSizes, err = parseList(tokens[10], int(count), "blockSizes"); err != nil {
			return nil, err
		}
		if r.BlockStarts, err = parseList(tokens[11], int(count), "blockStarts"); err != nil {
			return nil, err
		}
		for i, start := range r.BlockStarts {
			if start < 0 || r.BlockSizes[i] < 0 || r.Start+start+r.BlockSizes[i] > r.End {
				return nil, errors.Errorf("block %d [%d, %d) outside record", i, start, start+r.BlockSizes[i])
			}
		}
	}
	for _, t := range tokens[version:] {
		r.Extra = append(r.Extra, string(t))
	}
	return r, nil
}
