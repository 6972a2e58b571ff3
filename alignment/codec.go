// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"encoding/binary"
	"math"

	"github.com/grailbio/base/errors"
)

// encoder appends varint-encoded fields to a snapshot record.
type encoder []byte

func (b *encoder) putUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	*b = append(*b, tmp[:n]...)
}

func (b *encoder) putVarint(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	*b = append(*b, tmp[:n]...)
}

func (b *encoder) putUint8(v uint8) { *b = append(*b, v) }

func (b *encoder) putUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	*b = append(*b, tmp[:]...)
}

func (b *encoder) putFloat64(v float64) { b.putUint64(math.Float64bits(v)) }

func (b *encoder) putString(s string) {
	b.putUvarint(uint64(len(s)))
	*b = append(*b, s...)
}

func (b *encoder) putBytes(p []byte) {
	b.putUvarint(uint64(len(p)))
	*b = append(*b, p...)
}

// decoder reads fields written by encoder.  The first malformed field sets
// err; later reads return zero values.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) fail() {
	if d.err == nil {
		d.err = errors.E(errors.Invalid, "alignment: corrupt snapshot record")
	}
	d.buf = nil
}

func (d *decoder) uvarint() uint64 {
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.fail()
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) varint() int64 {
	v, n := binary.Varint(d.buf)
	if n <= 0 {
		d.fail()
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) uint8() uint8 {
	if len(d.buf) < 1 {
		d.fail()
		return 0
	}
	v := d.buf[0]
	d.buf = d.buf[1:]
	return v
}

func (d *decoder) uint64() uint64 {
	if len(d.buf) < 8 {
		d.fail()
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf)
	d.buf = d.buf[8:]
	return v
}

func (d *decoder) float64() float64 { return math.Float64frombits(d.uint64()) }

func (d *decoder) bytes() []byte {
	n := d.uvarint()
	if n > uint64(len(d.buf)) {
		d.fail()
		return nil
	}
	v := d.buf[:n]
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) string() string { return string(d.bytes()) }
