// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tilespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileSizeFor(t *testing.T) {
	for _, test := range []struct {
		lower, want int
	}{
		{0, 32},
		{127, 32},
		{128, 128},
		{511, 128},
		{512, 256},
		{1023, 256},
		{1024, 512},
		{2047, 512},
		{2048, 1024},
		{1 << 20, 1024},
	} {
		assert.Equalf(t, test.want, TileSizeFor(test.lower), "TileSizeFor(%d)", test.lower)
	}

	// Monotonically non-decreasing.
	prev := TileSizeFor(0)
	for lower := 1; lower <= 4096; lower++ {
		cur := TileSizeFor(lower)
		require.GreaterOrEqual(t, cur, prev, "TileSizeFor must not decrease at %d", lower)
		prev = cur
	}
}

func TestBuckets(t *testing.T) {
	t.Run("SinglePoint", func(t *testing.T) {
		var count int
		for lower, width := range Buckets(32, 32) {
			assert.Equal(t, 32, lower)
			assert.Equal(t, 32, width)
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("CoversRangeAcrossBreakpoints", func(t *testing.T) {
		const left, right = 32, 3000
		next := left
		prevLower := -1
		for lower, width := range Buckets(left, right) {
			require.Equal(t, next, lower, "buckets must tile the range without gaps")
			require.Greater(t, lower, prevLower, "lower bounds must be strictly increasing")
			require.Equal(t, TileSizeFor(lower), width)
			prevLower = lower
			next = lower + width
		}
		// The last bucket must reach past the right bound.
		assert.Greater(t, next, right)
	})

	t.Run("Restartable", func(t *testing.T) {
		seq := Buckets(0, 1024)
		first := collect(seq)
		second := collect(seq)
		assert.Equal(t, first, second)
	})

	t.Run("EarlyStop", func(t *testing.T) {
		for lower := range Buckets(0, 1<<30) {
			if lower > 0 {
				break
			}
		}
	})
}

func collect(seq func(func(int, int) bool)) (pairs [][2]int) {
	for lower, width := range seq {
		pairs = append(pairs, [2]int{lower, width})
	}
	return
}
