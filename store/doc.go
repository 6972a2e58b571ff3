// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package store provides the leaf storage layer of an alignment: an Array of
// fixed-size records laid out over a random-access Backing (memory or a local
// file), with a single cached window of records.
//
// Writes are buffered in the window.  A dirty window is written back when the
// window moves, but callers must call Flush after a sequence of writes before
// anybody else reads the same Backing; unflushed writes are simply not visible
// there.
//
// Read failures of the Backing are sticky: the Array returns zero records and
// reports the first error through Err and Flush.
package store
