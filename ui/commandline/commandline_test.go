// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"context"
	"testing"

	"github.com/gomlx/autotile/measure"
	"github.com/gomlx/autotile/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReport(t *testing.T) {
	searcher := search.NewSearcher(
		&search.WeightedSamplingObjective{Measurer: measure.NewStub(0.25), Seed: 1},
		func(shape ...int64) (measure.Computation, error) {
			return measure.NewComputation("reduce_sum", shape...), nil
		},
		search.AxisRange{Tag: "S", Left: 32, Right: 32},
		search.AxisRange{Tag: "R", Left: 32, Right: 32, Dynamic: true},
	)
	AttachProgressBar(searcher)

	result, err := searcher.Search(context.Background())
	require.NoError(t, err)

	report := SearchReport(result)
	assert.Contains(t, report, "S")
	assert.Contains(t, report, "R")
	assert.Contains(t, report, "0.25")
	assert.Contains(t, report, "evaluated")
}
