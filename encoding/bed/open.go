// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed

import (
	"context"
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

type writeCloser struct {
	io.Writer
	close func() error
}

func (w writeCloser) Close() error { return w.close() }

// Open opens a BED file for reading.  "-" and "stdin" name the standard
// input.  Gzipped paths are decompressed.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "-" || path == "stdin" {
		return readCloser{os.Stdin, func() error { return nil }}, nil
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	closeFile := func() error { return in.Close(ctx) }
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz, err := gzip.NewReader(in.Reader(ctx))
		if err != nil {
			_ = closeFile()
			return nil, errors.Wrapf(err, "bed: %s", path)
		}
		return readCloser{gz, func() error {
			err := gz.Close()
			if cerr := closeFile(); err == nil {
				err = cerr
			}
			return err
		}}, nil
	}
	return readCloser{in.Reader(ctx), closeFile}, nil
}

// Create opens a BED file for writing.  "-" and "stdout" name the standard
// output.  With appendTo set, output is appended to an existing local file
// instead of replacing it.  Gzipped paths are compressed.
func Create(ctx context.Context, path string, appendTo bool) (io.WriteCloser, error) {
	if path == "-" || path == "stdout" {
		return writeCloser{os.Stdout, func() error { return nil }}, nil
	}
	var (
		w         io.Writer
		closeFile func() error
	)
	if appendTo {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		w, closeFile = f, f.Close
	} else {
		out, err := file.Create(ctx, path)
		if err != nil {
			return nil, err
		}
		w, closeFile = out.Writer(ctx), func() error { return out.Close(ctx) }
	}
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz := gzip.NewWriter(w)
		return writeCloser{gz, func() error {
			err := gz.Close()
			if cerr := closeFile(); err == nil {
				err = cerr
			}
			return err
		}}, nil
	}
	return writeCloser{w, closeFile}, nil
}
