// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"testing"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBucket = tilespace.BucketInfo{
	tilespace.MustNewDimension(32, 32, "S", false, tilespace.UniformWeights(1, 1)),
	tilespace.MustNewDimension(32, 63, "R", true, tilespace.UniformWeights(32, 0.03125)),
}

func TestWeightedSamplingDeterminism(t *testing.T) {
	ctx := context.Background()
	comp := measure.NewComputation("reduce_sum", 32, measure.DynamicSize)

	// Cost depends on the sampled tiles, so identical scores imply identical
	// sampling.
	costFn := func(_ measure.Computation, tiles []int) (float64, error) {
		return float64(tiles[0]*1000 + tiles[1]), nil
	}
	obj := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: costFn},
		Seed:     42,
		Trials:   16,
	}
	score1, tiles1, err := obj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	score2, tiles2, err := obj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Equal(t, score1, score2)
	assert.Equal(t, tiles1, tiles2)

	// A fresh objective with the same seed reproduces the result too.
	obj2 := &WeightedSamplingObjective{Measurer: &measure.Stub{CostFn: costFn}, Seed: 42, Trials: 16}
	score3, tiles3, err := obj2.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Equal(t, score1, score3)
	assert.Equal(t, tiles1, tiles3)
}

func TestWeightedSamplingOffsetsInRange(t *testing.T) {
	ctx := context.Background()
	comp := measure.NewComputation("reduce_sum", 32, measure.DynamicSize)
	obj := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: func(_ measure.Computation, tiles []int) (float64, error) {
			// Static axis always contributes its fixed offset; dynamic
			// offsets stay within the bucket bounds.
			require.Equal(t, 32, tiles[0])
			require.GreaterOrEqual(t, tiles[1], 32)
			require.LessOrEqual(t, tiles[1], 63)
			return 1, nil
		}},
		Seed:   7,
		Trials: 64,
	}
	score, tiles, err := obj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
	require.Len(t, tiles, 2)
}

func TestWeightedSamplingAggregation(t *testing.T) {
	ctx := context.Background()
	comp := measure.NewComputation("reduce_sum", 32, measure.DynamicSize)
	costFn := func(_ measure.Computation, tiles []int) (float64, error) {
		return float64(tiles[1]), nil
	}

	minObj := &WeightedSamplingObjective{Measurer: &measure.Stub{CostFn: costFn}, Seed: 1, Trials: 32}
	minScore, minTiles, err := minObj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Equal(t, float64(minTiles[1]), minScore, "min aggregation reports the best trial's cost")

	meanObj := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: costFn}, Seed: 1, Trials: 32, Aggregation: AggregationMean,
	}
	meanScore, meanTiles, err := meanObj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Equal(t, minTiles, meanTiles, "mean aggregation still reports the best trial's tiles")
	assert.GreaterOrEqual(t, meanScore, minScore)
}

func TestWeightedSamplingSoftFailures(t *testing.T) {
	ctx := context.Background()
	comp := measure.NewComputation("reduce_sum", 32, measure.DynamicSize)

	// Odd reduce tiles are "inexecutable": excluded, not fatal.
	obj := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: func(_ measure.Computation, tiles []int) (float64, error) {
			if tiles[1]%2 == 1 {
				return 0, errors.New("unaligned tile")
			}
			return float64(tiles[1]), nil
		}},
		Seed:   3,
		Trials: 64,
	}
	score, tiles, err := obj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Zero(t, tiles[1]%2)
	assert.Equal(t, float64(tiles[1]), score)

	// Every trial failing is a bucket-level measurement error.
	obj = &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: func(measure.Computation, []int) (float64, error) {
			return 0, errors.New("no device")
		}},
		Seed: 3,
	}
	_, _, err = obj.Evaluate(ctx, comp, testBucket)
	require.Error(t, err)
	assert.True(t, errors.Is(err, measure.ErrMeasurement))
}

func TestWeightedSamplingStaticOnlyBucket(t *testing.T) {
	ctx := context.Background()
	staticBucket := tilespace.BucketInfo{
		tilespace.MustNewDimension(128, 128, "S", false, tilespace.UniformWeights(1, 1)),
	}
	var calls int
	obj := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: func(measure.Computation, []int) (float64, error) {
			calls++
			return 2.5, nil
		}},
		Trials: 16,
	}
	score, tiles, err := obj.Evaluate(ctx, measure.NewComputation("c", 128), staticBucket)
	require.NoError(t, err)
	assert.Equal(t, 2.5, score)
	assert.Equal(t, []int{128}, tiles)
	assert.Equal(t, 1, calls, "a fully static bucket has a single candidate")
}

func TestWeightedSamplingBadWeights(t *testing.T) {
	ctx := context.Background()
	bucket := tilespace.BucketInfo{
		{Lower: 32, Upper: 63, Tag: "R", Dynamic: true, Weights: tilespace.UniformWeights(32, 0)},
	}
	obj := &WeightedSamplingObjective{Measurer: measure.NewStub(1)}
	_, _, err := obj.Evaluate(ctx, measure.NewComputation("c", measure.DynamicSize), bucket)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tilespace.ErrConstruction))
}

func TestExhaustiveObjective(t *testing.T) {
	ctx := context.Background()
	comp := measure.NewComputation("reduce_sum", 32, measure.DynamicSize)
	obj := &ExhaustiveObjective{
		Measurer: &measure.Stub{CostFn: func(_ measure.Computation, tiles []int) (float64, error) {
			// Unique minimum at R=48.
			diff := float64(tiles[1] - 48)
			return diff * diff, nil
		}},
	}
	score, tiles, err := obj.Evaluate(ctx, comp, testBucket)
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Equal(t, []int{32, 48}, tiles)
}
