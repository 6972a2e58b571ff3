// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Backing is the external random-access store underneath an Array.
// ReadAt/WriteAt follow io.ReaderAt/io.WriterAt semantics.
type Backing interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the current size in bytes.
	Size() int64
	// Truncate resizes the store.  Growing zero-fills.
	Truncate(size int64) error
	// Flush makes previous writes durable.
	Flush() error
	Close() error
}

// Memory is a Backing held in a byte slice.  It is safe for concurrent use.
type Memory struct {
	mu  sync.Mutex
	buf []byte
}

// NewMemory creates an empty in-memory backing.
func NewMemory() *Memory {
	return &Memory{}
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 {
		return 0, fmt.Errorf("store.Memory: negative offset %d", off)
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.  The buffer grows as needed.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 {
		return 0, fmt.Errorf("store.Memory: negative offset %d", off)
	}
	if limit := off + int64(len(p)); limit > int64(len(m.buf)) {
		m.grow(limit)
	}
	return copy(m.buf[off:], p), nil
}

func (m *Memory) grow(size int64) {
	if int64(cap(m.buf)) >= size {
		m.buf = m.buf[:size]
		return
	}
	newBuf := make([]byte, size, size+size/4)
	copy(newBuf, m.buf)
	m.buf = newBuf
}

// Size implements Backing.
func (m *Memory) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.buf))
}

// Truncate implements Backing.
func (m *Memory) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size < 0 {
		return fmt.Errorf("store.Memory: negative size %d", size)
	}
	if size <= int64(len(m.buf)) {
		// Zero the tail so that a later grow doesn't resurrect stale bytes.
		tail := m.buf[size:]
		for i := range tail {
			tail[i] = 0
		}
		m.buf = m.buf[:size]
		return nil
	}
	m.grow(size)
	return nil
}

// Flush implements Backing.  It is a no-op.
func (m *Memory) Flush() error { return nil }

// Close implements Backing.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.buf = nil
	m.mu.Unlock()
	return nil
}

// File is a Backing stored in a local file.
type File struct {
	f *os.File
}

// OpenFile opens (creating if needed) a file-backed store at path.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) { return f.f.ReadAt(p, off) }

// WriteAt implements io.WriterAt.
func (f *File) WriteAt(p []byte, off int64) (int, error) { return f.f.WriteAt(p, off) }

// Size implements Backing.  It returns 0 if the file can't be stat'ed.
func (f *File) Size() int64 {
	info, err := f.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Truncate implements Backing.
func (f *File) Truncate(size int64) error { return f.f.Truncate(size) }

// Flush implements Backing.
func (f *File) Flush() error { return f.f.Sync() }

// Close implements Backing.
func (f *File) Close() error { return f.f.Close() }

// Name returns the path of the underlying file.
func (f *File) Name() string { return f.f.Name() }
