// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gomlx/autotile/internal/workerspool"
	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// AxisRange is the full scan range of one named axis, to be partitioned into
// buckets by the tiling heuristic.
type AxisRange struct {
	Tag         string
	Left, Right int

	// Dynamic marks an axis whose size is only known at runtime: its buckets
	// span the full tile granularity. A static axis's buckets collapse to a
	// single offset each.
	Dynamic bool

	// SamplingProb is the per-offset sampling weight given to the objective
	// function. Defaults to 1 (uniform) if zero.
	SamplingProb float64
}

// BuildComputationFn builds the computation instance for one bucket. It
// receives one shape value per axis, with measure.DynamicSize (-1) for
// dynamic axes (the original graph front end decides what to do with it).
type BuildComputationFn func(shape ...int64) (measure.Computation, error)

// Bucket is the runtime view of one search bucket:
// pending -> evaluating -> {scored, failed}.
type Bucket struct {
	// Index of the bucket in generation order (lexicographic over the axes,
	// first axis slowest). Ties on score are broken by the smaller index.
	Index int

	Info  tilespace.BucketInfo
	State BucketState

	// Score and Tiles are set when State is BucketScored.
	Score float64
	Tiles []int

	// Err is set when State is BucketFailed.
	Err error
}

// Priority of a hook; the lowest values run first. Defaults to 0, negative
// values are fine.
type Priority int

// OnStartFn is the type of OnStart hooks.
type OnStartFn func(s *Searcher, numBuckets int) error

// OnBucketFn is the type of OnBucket hooks, called on every bucket state
// transition.
type OnBucketFn func(s *Searcher, bucket *Bucket) error

// OnEndFn is the type of OnEnd hooks.
type OnEndFn func(s *Searcher, result *Result) error

type hook[F any] struct {
	name     string
	priority Priority
	fn       F
}

// Result of a search: the winning configuration, the bucket it came from and
// the search tallies.
type Result struct {
	// Best configuration found; Best.Score is its measured score.
	Best tilespace.TileConfig

	// Bucket the winning configuration was found in.
	Bucket tilespace.BucketInfo

	// NumBuckets were generated; Evaluated of them reached a terminal state
	// and Failed of those could not be measured.
	NumBuckets int
	Evaluated  int
	Failed     int

	Elapsed time.Duration
}

// Searcher orchestrates a tile configuration search: it partitions every
// axis's scan range into buckets, builds a computation instance per bucket,
// scores each bucket through the objective function and keeps the running
// best.
//
// The public fields configure the search and must not be changed once Search
// is running.
type Searcher struct {
	// Objective scores one bucket. Required.
	Objective ObjectiveFunc

	// Build constructs the per-bucket computation. Required.
	Build BuildComputationFn

	// Axes of the search space. Required, at least one.
	Axes []AxisRange

	// MaxParallelism bounds concurrent bucket evaluations: 0 evaluates
	// sequentially, negative is unlimited.
	MaxParallelism int

	onStart  []hook[OnStartFn]
	onBucket []hook[OnBucketFn]
	onEnd    []hook[OnEndFn]
}

// NewSearcher returns a sequential Searcher over the given axes. Set
// MaxParallelism to evaluate buckets concurrently.
func NewSearcher(objective ObjectiveFunc, build BuildComputationFn, axes ...AxisRange) *Searcher {
	return &Searcher{Objective: objective, Build: build, Axes: axes}
}

// OnStart registers a named hook called once before the first bucket is
// evaluated.
func (s *Searcher) OnStart(name string, priority Priority, fn OnStartFn) {
	s.onStart = append(s.onStart, hook[OnStartFn]{name: name, priority: priority, fn: fn})
	sortHooks(s.onStart)
}

// OnBucket registers a named hook called on every bucket state transition.
// Hooks run under the Searcher's lock and should be fast; a hook error aborts
// the search.
func (s *Searcher) OnBucket(name string, priority Priority, fn OnBucketFn) {
	s.onBucket = append(s.onBucket, hook[OnBucketFn]{name: name, priority: priority, fn: fn})
	sortHooks(s.onBucket)
}

// OnEnd registers a named hook called once with the final result, before
// Search returns. It is not called when the search fails.
func (s *Searcher) OnEnd(name string, priority Priority, fn OnEndFn) {
	s.onEnd = append(s.onEnd, hook[OnEndFn]{name: name, priority: priority, fn: fn})
	sortHooks(s.onEnd)
}

func sortHooks[F any](hooks []hook[F]) {
	sort.SliceStable(hooks, func(i, j int) bool { return hooks[i].priority < hooks[j].priority })
}

// Search runs the full search. It returns the minimum-score configuration
// over all buckets, ErrSearchExhausted if every bucket failed, or the context
// error if aborted -- abortion takes effect between bucket boundaries.
func (s *Searcher) Search(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	buckets, err := s.generateBuckets()
	if err != nil {
		return nil, err
	}
	for _, h := range s.onStart {
		if err = h.fn(s, len(buckets)); err != nil {
			return nil, errors.WithMessagef(err, "search hook %q (OnStart)", h.name)
		}
	}

	run := &searchRun{searcher: s}
	pool := workerspool.New(s.MaxParallelism)
	aborted := false
	for _, b := range buckets {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		pool.WaitToStart(func() { run.evaluate(ctx, b) })
	}
	pool.Wait()

	if aborted {
		return nil, errors.Wrap(ctx.Err(), "search aborted")
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.hookErr != nil {
		return nil, run.hookErr
	}
	if run.best == nil {
		return nil, errors.Wrapf(ErrSearchExhausted, "all %d buckets failed", len(buckets))
	}
	result := &Result{
		Best:       tilespace.TileConfig{Tiles: run.best.Tiles, Score: run.best.Score},
		Bucket:     run.best.Info,
		NumBuckets: len(buckets),
		Evaluated:  run.evaluated,
		Failed:     run.failed,
		Elapsed:    time.Since(startTime),
	}
	for _, h := range s.onEnd {
		if err = h.fn(s, result); err != nil {
			return nil, errors.WithMessagef(err, "search hook %q (OnEnd)", h.name)
		}
	}
	return result, nil
}

// generateBuckets enumerates the cross-product of every axis's bucket
// partition, in lexicographic order (first axis slowest).
func (s *Searcher) generateBuckets() ([]*Bucket, error) {
	if s.Objective == nil || s.Build == nil {
		return nil, errors.Wrap(tilespace.ErrConstruction, "Searcher needs both an Objective and a Build function")
	}
	if len(s.Axes) == 0 {
		return nil, errors.Wrap(tilespace.ErrConstruction, "Searcher needs at least one axis")
	}

	type bound struct{ lower, width int }
	perAxis := make([][]bound, len(s.Axes))
	for ii, axis := range s.Axes {
		if axis.Left > axis.Right {
			return nil, errors.Wrapf(tilespace.ErrConstruction,
				"axis %q: left bound %d > right bound %d", axis.Tag, axis.Left, axis.Right)
		}
		for lower, width := range tilespace.Buckets(axis.Left, axis.Right) {
			perAxis[ii] = append(perAxis[ii], bound{lower: lower, width: width})
		}
	}

	var buckets []*Bucket
	indices := make([]int, len(s.Axes))
	for {
		info := make(tilespace.BucketInfo, 0, len(s.Axes))
		for ii, axis := range s.Axes {
			b := perAxis[ii][indices[ii]]
			sampleWidth := 1
			if axis.Dynamic {
				sampleWidth = b.width
			}
			prob := axis.SamplingProb
			if prob == 0 {
				prob = 1
			}
			dim, err := tilespace.NewDimension(
				b.lower, b.lower+sampleWidth-1, axis.Tag, axis.Dynamic,
				tilespace.UniformWeights(sampleWidth, prob))
			if err != nil {
				return nil, err
			}
			info = append(info, dim)
		}
		buckets = append(buckets, &Bucket{Index: len(buckets), Info: info, State: BucketPending})

		// Advance the last axis first: lexicographic order.
		axis := len(indices) - 1
		for ; axis >= 0; axis-- {
			indices[axis]++
			if indices[axis] < len(perAxis[axis]) {
				break
			}
			indices[axis] = 0
		}
		if axis < 0 {
			return buckets, nil
		}
	}
}

// searchRun is the shared mutable state of one Search call.
type searchRun struct {
	searcher *Searcher

	mu        sync.Mutex
	best      *Bucket
	evaluated int
	failed    int
	hookErr   error
}

// evaluate drives one bucket through its state machine. Safe to call from
// multiple workers.
func (r *searchRun) evaluate(ctx context.Context, b *Bucket) {
	r.transition(b, BucketEvaluating)

	comp, err := r.searcher.Build(shapeOf(b.Info)...)
	if err != nil {
		b.Err = errors.WithMessagef(err, "building computation for %s", b.Info)
		klog.Warningf("bucket %s skipped: %+v", b.Info, b.Err)
		r.transition(b, BucketFailed)
		return
	}

	score, tiles, err := r.searcher.Objective.Evaluate(ctx, comp, b.Info)
	if err != nil {
		b.Err = err
		klog.Warningf("bucket %s skipped: %+v", b.Info, err)
		r.transition(b, BucketFailed)
		return
	}
	b.Score = score
	b.Tiles = tiles
	klog.V(1).Infof("bucket %s scored %g with tiles %v", b.Info, score, tiles)
	r.transition(b, BucketScored)
}

// transition moves the bucket to the given state, updates the tallies and the
// running best, and fires the OnBucket hooks. The tie-break on equal scores
// prefers the smaller bucket index, so the outcome is deterministic no matter
// the completion order of parallel workers.
func (r *searchRun) transition(b *Bucket, state BucketState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.State = state
	switch state {
	case BucketScored:
		r.evaluated++
		if r.best == nil || b.Score < r.best.Score ||
			(b.Score == r.best.Score && b.Index < r.best.Index) {
			r.best = b
		}
	case BucketFailed:
		r.evaluated++
		r.failed++
	}
	for _, h := range r.searcher.onBucket {
		if err := h.fn(r.searcher, b); err != nil && r.hookErr == nil {
			r.hookErr = errors.WithMessagef(err, "search hook %q (OnBucket)", h.name)
		}
	}
}
