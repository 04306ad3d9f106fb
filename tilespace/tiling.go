// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tilespace

import "iter"

// TileSizeFor returns the tile granularity to use for a bucket whose lower
// bound is lower. Granularity grows geometrically with the bound, following
// fixed breakpoints:
//
//	lower < 128    -> 32
//	lower < 512    -> 128
//	lower < 1024   -> 256
//	lower < 2048   -> 512
//	otherwise      -> 1024
func TileSizeFor(lower int) int {
	switch {
	case lower < 128:
		return 32
	case lower < 512:
		return 128
	case lower < 1024:
		return 256
	case lower < 2048:
		return 512
	default:
		return 1024
	}
}

// Buckets partitions the inclusive scan range [left, right] into successive
// buckets, yielding each bucket's (lower, width) pair. The width of each
// bucket is TileSizeFor(lower) and the next bucket starts at lower+width;
// iteration ends once lower exceeds right.
//
// If left == right exactly one bucket is yielded. The sequence is finite and
// restartable.
func Buckets(left, right int) iter.Seq2[int, int] {
	return func(yield func(lower, width int) bool) {
		for lower := left; lower <= right; {
			width := TileSizeFor(lower)
			if !yield(lower, width) {
				return
			}
			lower += width
		}
	}
}
