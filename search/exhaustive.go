// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ExhaustiveObjective measures every offset combination of the bucket's
// dynamic axes and scores the bucket with the best cost found.
//
// The number of trials is the product of the dynamic axis widths -- only use
// it on buckets small enough to afford that. Failure semantics are the same
// as WeightedSamplingObjective's: failed trials are excluded, and only an
// entirely unmeasurable bucket fails.
type ExhaustiveObjective struct {
	Measurer measure.Measurer
}

var _ ObjectiveFunc = &ExhaustiveObjective{}

// Evaluate implements ObjectiveFunc.
func (o *ExhaustiveObjective) Evaluate(ctx context.Context, comp measure.Computation, bucket tilespace.BucketInfo) (float64, []int, error) {
	if err := bucket.Validate(); err != nil {
		return 0, nil, err
	}

	var numTrials, numSuccesses int
	var bestScore float64
	var bestTiles []int
	tiles := make([]int, len(bucket))

	var visit func(axis int) // Recurses over the dynamic axes' offsets.
	visit = func(axis int) {
		if axis == len(bucket) {
			numTrials++
			cost, err := o.Measurer.Measure(ctx, comp, append([]int(nil), tiles...))
			if err != nil {
				klog.V(1).Infof("trial %v for %s failed (excluded): %+v", tiles, bucket, err)
				return
			}
			if numSuccesses == 0 || cost < bestScore {
				bestScore = cost
				bestTiles = append([]int(nil), tiles...)
			}
			numSuccesses++
			return
		}
		d := bucket[axis]
		for offset := 0; offset < d.SampleWidth(); offset++ {
			tiles[axis] = d.Lower + offset
			visit(axis + 1)
		}
	}
	visit(0)

	if numSuccesses == 0 {
		return 0, nil, errors.Wrapf(measure.ErrMeasurement,
			"all %d trials failed for %s", numTrials, bucket)
	}
	return bestScore, bestTiles, nil
}
