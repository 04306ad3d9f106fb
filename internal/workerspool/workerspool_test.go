// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_Bounded(t *testing.T) {
	const limit = 4
	const numTasks = 100
	pool := New(limit)

	var running, peak, count atomic.Int32
	for range numTasks {
		pool.WaitToStart(func() {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			count.Add(1)
			running.Add(-1)
		})
	}
	pool.Wait()

	assert.Equal(t, int32(numTasks), count.Load())
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestPool_Inline(t *testing.T) {
	pool := New(0)
	assert.False(t, pool.IsEnabled())

	var count int
	pool.WaitToStart(func() { count++ })
	pool.Wait()
	assert.Equal(t, 1, count)
}

func TestPool_Unlimited(t *testing.T) {
	pool := New(-1)
	var count atomic.Int32
	for range 32 {
		pool.WaitToStart(func() { count.Add(1) })
	}
	pool.Wait()
	assert.Equal(t, int32(32), count.Load())
}
