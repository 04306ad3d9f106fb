// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/schedule"
	"github.com/gomlx/autotile/tilespace"
)

// AsSearchFn adapts an objective function and a computation builder into the
// search fallback the schedule.Manager invokes on a database miss: it scores
// just the requested bucket and returns the winning configuration.
func AsSearchFn(objective ObjectiveFunc, build BuildComputationFn) schedule.SearchFn {
	return func(ctx context.Context, target tilespace.Target, bucket tilespace.BucketInfo) (tilespace.TileConfig, error) {
		comp, err := build(shapeOf(bucket)...)
		if err != nil {
			return tilespace.TileConfig{}, err
		}
		score, tiles, err := objective.Evaluate(ctx, comp, bucket)
		if err != nil {
			return tilespace.TileConfig{}, err
		}
		return tilespace.TileConfig{Tiles: tiles, Score: score}, nil
	}
}

// shapeOf returns the per-axis shape parameters of a bucket's computation:
// the known size for static axes, measure.DynamicSize for dynamic ones.
func shapeOf(info tilespace.BucketInfo) []int64 {
	shape := make([]int64, len(info))
	for ii, d := range info {
		if d.Dynamic {
			shape[ii] = measure.DynamicSize
		} else {
			shape[ii] = int64(d.Lower)
		}
	}
	return shape
}
