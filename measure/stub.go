// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package measure

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

// Stub is a Measurer that never touches hardware: it reports CostFn(comp,
// tiles), or a constant cost when CostFn is nil. It is deterministic, which
// makes it the measurer of choice for tests and for exercising the search
// loop without a compilation backend.
type Stub struct {
	// Cost reported when CostFn is nil.
	Cost float64

	// CostFn, if set, computes the reported cost per trial.
	CostFn func(comp Computation, tiles []int) (float64, error)
}

var _ Measurer = &Stub{}

func init() {
	Register("stub", func(config string) Measurer {
		stub := &Stub{Cost: 1.0}
		if config != "" {
			if cost, err := strconv.ParseFloat(config, 64); err == nil {
				stub.Cost = cost
			}
		}
		return stub
	})
}

// NewStub returns a Stub measurer reporting the given constant cost.
func NewStub(cost float64) *Stub {
	return &Stub{Cost: cost}
}

// Measure implements Measurer.
func (s *Stub) Measure(ctx context.Context, comp Computation, tiles []int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrapf(ErrMeasurement, "stub measurer: %v", err)
	}
	if s.CostFn != nil {
		cost, err := s.CostFn(comp, tiles)
		if err != nil {
			return 0, errors.Wrapf(ErrMeasurement, "stub measurer cost function: %v", err)
		}
		return cost, nil
	}
	return s.Cost, nil
}
