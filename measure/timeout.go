// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package measure

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// WithTimeout wraps a Measurer so that any single trial taking longer than
// timeout fails with an error wrapping ErrMeasurement, i.e. a soft failure
// the search excludes instead of blocking on.
//
// The underlying Measure call keeps running in its goroutine until it honors
// the context cancellation; its late result is discarded.
func WithTimeout(m Measurer, timeout time.Duration) Measurer {
	return &timeoutMeasurer{wrapped: m, timeout: timeout}
}

type timeoutMeasurer struct {
	wrapped Measurer
	timeout time.Duration
}

type measureResult struct {
	cost float64
	err  error
}

// Measure implements Measurer.
func (t *timeoutMeasurer) Measure(ctx context.Context, comp Computation, tiles []int) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan measureResult, 1)
	go func() {
		cost, err := t.wrapped.Measure(ctx, comp, tiles)
		done <- measureResult{cost: cost, err: err}
	}()

	select {
	case res := <-done:
		return res.cost, res.err
	case <-ctx.Done():
		return 0, errors.Wrapf(ErrMeasurement,
			"trial for %q did not finish within %s", comp.Name(), t.timeout)
	}
}
