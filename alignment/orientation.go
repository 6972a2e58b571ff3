// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

// NullIndex marks a missing segment link.
const NullIndex int64 = -1

// ComposeReversed combines two orientation flags: the result is reversed iff
// exactly one of a and b is.
func ComposeReversed(a, b bool) bool {
	return a != b
}
