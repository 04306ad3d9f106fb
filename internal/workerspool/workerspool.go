// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements the bounded pool of workers used to evaluate
// search buckets in parallel.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool dispatches tasks to at most maxParallelism concurrent goroutines.
//
// A zero maxParallelism disables parallelism (tasks run inline on the caller's
// goroutine); a negative value removes the limit.
type Pool struct {
	maxParallelism int

	mu         sync.Mutex
	cond       sync.Cond // Signaled whenever numRunning decreases.
	numRunning int
	pending    sync.WaitGroup
}

// New returns a Pool limited to maxParallelism concurrent tasks.
func New(maxParallelism int) *Pool {
	p := &Pool{maxParallelism: maxParallelism}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

// Default returns a Pool limited to runtime.NumCPU() concurrent tasks.
func Default() *Pool {
	return New(runtime.NumCPU())
}

// IsEnabled returns whether parallelism is enabled (maxParallelism != 0).
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// MaxParallelism returns the concurrency limit the pool was built with.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// WaitToStart blocks until a worker is free and then runs task on it. If
// parallelism is disabled the task runs inline, and WaitToStart returns only
// when it is finished.
func (p *Pool) WaitToStart(task func()) {
	if p.maxParallelism == 0 {
		task()
		return
	}
	if p.maxParallelism < 0 {
		p.pending.Add(1)
		go func() {
			defer p.pending.Done()
			task()
		}()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.numRunning >= p.maxParallelism {
		p.cond.Wait()
	}
	p.numRunning++
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		task()
		p.mu.Lock()
		p.numRunning--
		p.cond.Signal()
		p.mu.Unlock()
	}()
}

// Wait blocks until every task started so far has finished. It must not be
// called concurrently with WaitToStart.
func (p *Pool) Wait() {
	p.pending.Wait()
}
