// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"hash/fnv"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
)

// DefaultTrials is the number of trial configurations a
// WeightedSamplingObjective draws per bucket when Trials is unset.
const DefaultTrials = 8

// WeightedSamplingObjective scores a bucket by drawing trial tile sizes from
// each dynamic axis's normalized weight distribution, measuring every trial
// through Measurer, and aggregating the successful costs. Static axes always
// contribute their single fixed offset.
//
// Trials failing with measure.ErrMeasurement are soft failures: they are
// logged and excluded. Only if every trial fails does Evaluate fail, with an
// error wrapping measure.ErrMeasurement.
//
// The trial RNG is seeded from (Seed, bucket key), so for a fixed Seed the
// result is reproducible and independent of the order buckets are evaluated
// in.
type WeightedSamplingObjective struct {
	Measurer measure.Measurer

	// Seed of the trial sampling. The same seed always reproduces the same
	// trials.
	Seed uint64

	// Trials per bucket; DefaultTrials if zero. A bucket with no dynamic
	// axis has a single distinct candidate and is measured once.
	Trials int

	Aggregation Aggregation
}

var _ ObjectiveFunc = &WeightedSamplingObjective{}

// Evaluate implements ObjectiveFunc.
func (o *WeightedSamplingObjective) Evaluate(ctx context.Context, comp measure.Computation, bucket tilespace.BucketInfo) (float64, []int, error) {
	if err := bucket.Validate(); err != nil {
		return 0, nil, err
	}
	samplers := make([]*weightedSampler, len(bucket))
	hasDynamic := false
	for ii, d := range bucket {
		if !d.Dynamic {
			continue
		}
		sampler, err := newWeightedSampler(d)
		if err != nil {
			return 0, nil, err
		}
		samplers[ii] = sampler
		hasDynamic = true
	}

	trials := o.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	if !hasDynamic {
		trials = 1
	}
	rng := rand.New(rand.NewSource(o.Seed ^ keyHash(bucket.Key())))

	var numSuccesses int
	var sum, bestScore float64
	var bestTiles []int
	for trial := 0; trial < trials; trial++ {
		tiles := make([]int, len(bucket))
		for ii, d := range bucket {
			if samplers[ii] != nil {
				tiles[ii] = samplers[ii].sample(rng)
			} else {
				tiles[ii] = d.Lower
			}
		}
		cost, err := o.Measurer.Measure(ctx, comp, tiles)
		if err != nil {
			klog.V(1).Infof("trial %d/%d for %s failed (excluded): %+v", trial+1, trials, bucket, err)
			continue
		}
		if numSuccesses == 0 || cost < bestScore {
			bestScore = cost
			bestTiles = tiles
		}
		sum += cost
		numSuccesses++
	}
	if numSuccesses == 0 {
		return 0, nil, errors.Wrapf(measure.ErrMeasurement,
			"all %d trials failed for %s", trials, bucket)
	}

	score := bestScore
	if o.Aggregation == AggregationMean {
		score = sum / float64(numSuccesses)
	}
	return score, bestTiles, nil
}

// weightedSampler draws offsets of one dynamic axis proportionally to its
// weights, via the cumulative distribution.
type weightedSampler struct {
	lower      int
	cumulative []float64 // Normalized, last element is 1.
}

func newWeightedSampler(d tilespace.Dimension) (*weightedSampler, error) {
	var total float64
	for _, w := range d.Weights {
		if w < 0 {
			return nil, errors.Wrapf(tilespace.ErrConstruction,
				"dimension %s has negative sampling weight %g", d, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, errors.Wrapf(tilespace.ErrConstruction,
			"dimension %s has no positive sampling weight", d)
	}
	cumulative := make([]float64, len(d.Weights))
	var acc float64
	for ii, w := range d.Weights {
		acc += w / total
		cumulative[ii] = acc
	}
	cumulative[len(cumulative)-1] = 1 // Guard against rounding drift.
	return &weightedSampler{lower: d.Lower, cumulative: cumulative}, nil
}

func (s *weightedSampler) sample(rng *rand.Rand) int {
	u := rng.Float64()
	for ii, c := range s.cumulative {
		if u < c {
			return s.lower + ii
		}
	}
	return s.lower + len(s.cumulative) - 1
}

// keyHash mixes a bucket key into a seed (FNV-1a).
func keyHash(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
