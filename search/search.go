// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package search finds the tile configuration minimizing a measured (or
// estimated) performance cost.
//
// An ObjectiveFunc scores one bucket of the search space -- the
// weighted-sampling implementation draws trial tile sizes from the bucket's
// per-axis sampling weights and measures them through a measure.Measurer. The
// Searcher partitions the full scan range of every axis into buckets (see
// tilespace.Buckets), evaluates each bucket through the objective, optionally
// in parallel, and yields the minimum-score candidate.
package search

import (
	"context"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
)

// ErrSearchExhausted is returned by Searcher.Search when every bucket failed
// and no configuration could be produced. Test with errors.Is.
var ErrSearchExhausted = errors.New("search exhausted: no viable tile configuration")

// ObjectiveFunc scores one bucket of the search space for the given
// computation. It returns the bucket's score (lower is better) and the
// winning per-axis tile sizes.
//
// Implementations must be deterministic for a fixed seed, so that tuning runs
// are reproducible. Errors wrapping measure.ErrMeasurement mean the whole
// bucket could not be measured; the Searcher skips such buckets.
type ObjectiveFunc interface {
	Evaluate(ctx context.Context, comp measure.Computation, bucket tilespace.BucketInfo) (score float64, tiles []int, err error)
}

// Aggregation selects how a bucket's per-trial costs are collapsed into its
// score.
type Aggregation int

const (
	// AggregationMin scores the bucket with its best trial. The default.
	AggregationMin Aggregation = iota

	// AggregationMean scores the bucket with the mean over successful
	// trials. The reported tiles are still the best trial's.
	AggregationMean
)
