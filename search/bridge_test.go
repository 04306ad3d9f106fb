// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gomlx/autotile/configdb"
	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWithSearchFallback(t *testing.T) {
	const target = "cuda_sm80"
	ctx := context.Background()
	db, err := configdb.OpenFile(filepath.Join(t.TempDir(), "configs.json"))
	require.NoError(t, err)

	var measurements atomic.Int32
	objective := &WeightedSamplingObjective{
		Measurer: &measure.Stub{CostFn: func(measure.Computation, []int) (float64, error) {
			measurements.Add(1)
			return 0.5, nil
		}},
		Seed: 11,
	}
	manager := schedule.New(
		schedule.WithDatabase(db),
		schedule.WithSearchFallback(AsSearchFn(objective, buildReduceSum)),
	)
	require.NoError(t, manager.SetPolicy(schedule.PolicyDatabase))

	// First call searches and persists.
	got, err := manager.GetConfig(ctx, target, testBucket)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Score)
	searched := measurements.Load()
	assert.Greater(t, searched, int32(0))

	// Second call is served from the database: no new measurements.
	cached, err := manager.GetConfig(ctx, target, testBucket)
	require.NoError(t, err)
	assert.Equal(t, got, cached)
	assert.Equal(t, searched, measurements.Load(), "cache hit must not measure")
}
