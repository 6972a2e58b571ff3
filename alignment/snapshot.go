// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"context"
	"fmt"

	"blainsmith.com/go/seahash"
	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/recordio"
	"github.com/ksenia-krasheninnikova/hal/store"
)

// Snapshot layout.  A snapshot is a recordio file:
//
//   header record:  magic, version, then (name, parent, branch length) for
//                   every genome, parents first
//   genome record:  tagGenome, name, number of children, sequence infos
//   block record:   tagBlock, array kind, byte offset, raw length, seahash of
//                   the raw bytes, snappy-compressed payload
//
// Every genome record is followed by the blocks of its DNA, top and bottom
// arrays.
const (
	snapshotMagic   = "halsnap1"
	snapshotVersion = 1

	tagGenome = 'G'
	tagBlock  = 'B'

	// snapshotBlockSize is the raw size of one payload block.
	snapshotBlockSize = 1 << 20
)

func (g *Genome) arrayOf(kind ArrayKind) *store.Array {
	switch kind {
	case DNAArray:
		return g.dnaArray()
	case TopArray:
		return g.topArr
	case BottomArray:
		return g.bottomArr
	}
	return nil
}

var arrayKinds = []ArrayKind{DNAArray, TopArray, BottomArray}

func encodeHeader(a *Alignment) []byte {
	var b encoder
	b = append(b, snapshotMagic...)
	b.putUvarint(snapshotVersion)
	b.putUvarint(uint64(len(a.names)))
	for _, n := range a.names {
		g := a.genomes[n]
		b.putString(g.name)
		b.putString(g.parentName)
		b.putFloat64(g.branchLength)
	}
	return b
}

func encodeGenome(g *Genome) []byte {
	var b encoder
	b.putUint8(tagGenome)
	b.putString(g.name)
	b.putUvarint(uint64(len(g.childNames)))
	b.putUvarint(uint64(len(g.sequences)))
	for _, seq := range g.sequences {
		b.putString(seq.info.Name)
		b.putVarint(seq.info.Length)
		b.putVarint(seq.info.NumTopSegments)
		b.putVarint(seq.info.NumBottomSegments)
	}
	return b
}

func encodeBlock(kind ArrayKind, off int64, raw []byte) []byte {
	var b encoder
	b.putUint8(tagBlock)
	b.putUint8(uint8(kind))
	b.putVarint(off)
	b.putUvarint(uint64(len(raw)))
	b.putUint64(seahash.Sum64(raw))
	b.putBytes(snappy.Encode(nil, raw))
	return b
}

// Save writes the alignment to path.  Existing contents are clobbered.
func Save(ctx context.Context, aln *Alignment, path string) error {
	if err := aln.Flush(); err != nil {
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, path)
	}
	e := errors.Once{}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{})
	w.Append(encodeHeader(aln))
	var nBlocks int
	for _, n := range aln.names {
		g := aln.genomes[n]
		w.Append(encodeGenome(g))
		for _, kind := range arrayKinds {
			arr := g.arrayOf(kind)
			size := arr.Len() * int64(arr.RecordSize())
			for off := int64(0); off < size && e.Err() == nil; off += snapshotBlockSize {
				blockLen := size - off
				if blockLen > snapshotBlockSize {
					blockLen = snapshotBlockSize
				}
				raw := make([]byte, blockLen)
				if err := arr.ReadRaw(raw, off); err != nil {
					e.Set(errors.E(err, fmt.Sprintf("save %s: genome %s %v array", path, g.name, kind)))
					break
				}
				w.Append(encodeBlock(kind, off, raw))
				nBlocks++
			}
		}
	}
	e.Set(w.Finish())
	e.Set(out.Close(ctx))
	if e.Err() == nil {
		log.Printf("saved alignment %s: %d genomes, %d blocks", path, len(aln.names), nBlocks)
	}
	return e.Err()
}

// Open reads an alignment written by Save.  The arrays are materialized in
// the backings chosen by opts.
func Open(ctx context.Context, path string, opts Opts) (aln *Alignment, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	sc := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	defer sc.Finish() // nolint: errcheck

	aln = New(opts)
	if err = readSnapshot(sc, aln); err != nil {
		aln.Close() // nolint: errcheck
		return nil, errors.E(err, fmt.Sprintf("open %s", path))
	}
	log.Printf("loaded alignment %s: %d genomes", path, aln.NumGenomes())
	return aln, nil
}

func readSnapshot(sc recordio.Scanner, aln *Alignment) error {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return errors.E(errors.Invalid, "missing snapshot header")
	}
	hdr := sc.Get().([]byte)
	if len(hdr) < len(snapshotMagic) || string(hdr[:len(snapshotMagic)]) != snapshotMagic {
		return errors.E(errors.Invalid, "not an alignment snapshot")
	}
	d := decoder{buf: hdr[len(snapshotMagic):]}
	if v := d.uvarint(); d.err == nil && v != snapshotVersion {
		return errors.E(errors.Invalid, fmt.Sprintf("snapshot version %d, want %d", v, snapshotVersion))
	}
	n := d.uvarint()
	for i := uint64(0); i < n && d.err == nil; i++ {
		name, parent, branchLength := d.string(), d.string(), d.float64()
		if d.err != nil {
			break
		}
		var err error
		if parent == "" {
			_, err = aln.AddRootGenome(name)
		} else {
			_, err = aln.AddLeafGenome(name, parent, branchLength)
		}
		if err != nil {
			return err
		}
	}
	if d.err != nil {
		return d.err
	}

	var (
		g        *Genome
		restored = map[*Genome][3]int64{}
	)
	for sc.Scan() {
		d := decoder{buf: sc.Get().([]byte)}
		switch d.uint8() {
		case tagGenome:
			var err error
			if g, err = decodeGenome(&d, aln); err != nil {
				return err
			}
			restored[g] = [3]int64{}
		case tagBlock:
			if g == nil {
				return errors.E(errors.Invalid, "snapshot block before any genome")
			}
			kind, n, err := restoreBlock(&d, g)
			if err != nil {
				return err
			}
			r := restored[g]
			r[kind] += n
			restored[g] = r
		default:
			return errors.E(errors.Invalid, "unknown snapshot record")
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	for _, name := range aln.names {
		g := aln.genomes[name]
		r := restored[g]
		for _, kind := range arrayKinds {
			arr := g.arrayOf(kind)
			if want := arr.Len() * int64(arr.RecordSize()); r[kind] != want {
				return errors.E(errors.Invalid, fmt.Sprintf(
					"genome %s: %v array has %d bytes in snapshot, want %d", g.name, kind, r[kind], want))
			}
		}
	}
	return nil
}

func decodeGenome(d *decoder, aln *Alignment) (*Genome, error) {
	name := d.string()
	numChildren := d.uvarint()
	numSeqs := d.uvarint()
	if d.err != nil {
		return nil, d.err
	}
	g, err := aln.OpenGenome(name)
	if err != nil {
		return nil, err
	}
	if numChildren != uint64(len(g.childNames)) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf(
			"genome %s: %d children in snapshot, %d in tree", name, numChildren, len(g.childNames)))
	}
	var infos []SequenceInfo
	for i := uint64(0); i < numSeqs && d.err == nil; i++ {
		infos = append(infos, SequenceInfo{
			Name:              d.string(),
			Length:            d.varint(),
			NumTopSegments:    d.varint(),
			NumBottomSegments: d.varint(),
		})
	}
	if d.err != nil {
		return nil, d.err
	}
	return g, g.SetDimensions(infos)
}

func restoreBlock(d *decoder, g *Genome) (ArrayKind, int64, error) {
	kind := ArrayKind(d.uint8())
	off := d.varint()
	rawLen := d.uvarint()
	sum := d.uint64()
	payload := d.bytes()
	if d.err != nil {
		return 0, 0, d.err
	}
	if kind < DNAArray || kind > BottomArray {
		return 0, 0, errors.E(errors.Invalid, fmt.Sprintf("genome %s: unknown array kind %d", g.name, int(kind)))
	}
	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return 0, 0, errors.E(errors.Invalid, err, fmt.Sprintf("genome %s: %v block at %d", g.name, kind, off))
	}
	if uint64(len(raw)) != rawLen || seahash.Sum64(raw) != sum {
		return 0, 0, errors.E(errors.Integrity, fmt.Sprintf("genome %s: checksum mismatch in %v block at %d", g.name, kind, off))
	}
	arr := g.arrayOf(kind)
	if off < 0 || off+int64(len(raw)) > arr.Len()*int64(arr.RecordSize()) {
		return 0, 0, errors.E(errors.Invalid, fmt.Sprintf("genome %s: %v block at %d out of range", g.name, kind, off))
	}
	if err := arr.WriteRaw(raw, off); err != nil {
		return 0, 0, err
	}
	return kind, int64(len(raw)), nil
}
