// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tilespace models the search space of a tile-size tuning problem.
//
// A tuning problem is described by one or more axes (Dimension), each an
// inclusive integer range of problem sizes with a per-offset sampling weight.
// A BucketInfo is one hyper-rectangular region of that space, the unit over
// which the searcher evaluates candidate tile configurations, and a TileConfig
// is the outcome of a search: one tile (block) size per axis plus the measured
// score, lower being better.
//
// The package also provides the tiling heuristic that partitions a scan range
// into buckets of geometrically increasing granularity -- see TileSizeFor and
// Buckets.
package tilespace

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// ErrConstruction is the cause of all errors returned for malformed
// Dimension or BucketInfo values. Test with errors.Is.
var ErrConstruction = errors.New("invalid search space construction")

// Target identifies the hardware (or simulator) a tile configuration was
// tuned for. Configurations are never shared across targets.
type Target string

// AUTOTILE_TARGET is the environment variable overriding DefaultTarget.
const AUTOTILE_TARGET = "AUTOTILE_TARGET"

// DefaultTarget returns the target configured in the AUTOTILE_TARGET
// environment variable, or "default" if it is not set.
func DefaultTarget() Target {
	if t, found := os.LookupEnv(AUTOTILE_TARGET); found && t != "" {
		return Target(t)
	}
	return "default"
}

// Dimension is one axis of the search space: an inclusive integer range
// [Lower, Upper] of problem sizes, a label (e.g. "S" for spatial, "R" for
// reduce), whether the axis size is only known at runtime (Dynamic), and one
// sampling weight per integer offset in the range.
//
// Weights need not be normalized; consumers normalize before sampling.
type Dimension struct {
	Lower, Upper int
	Tag          string
	Dynamic      bool
	Weights      []float64
}

// NewDimension returns a validated Dimension.
//
// It fails with an error wrapping ErrConstruction unless lower <= upper and
// len(weights) == upper-lower+1.
func NewDimension(lower, upper int, tag string, dynamic bool, weights []float64) (Dimension, error) {
	if lower > upper {
		return Dimension{}, errors.Wrapf(ErrConstruction,
			"dimension %q: lower bound %d > upper bound %d", tag, lower, upper)
	}
	if len(weights) != upper-lower+1 {
		return Dimension{}, errors.Wrapf(ErrConstruction,
			"dimension %q: got %d sampling weights for width %d (range [%d, %d])",
			tag, len(weights), upper-lower+1, lower, upper)
	}
	return Dimension{Lower: lower, Upper: upper, Tag: tag, Dynamic: dynamic, Weights: weights}, nil
}

// MustNewDimension is like NewDimension but panics (with a stack trace) on
// invalid input.
func MustNewDimension(lower, upper int, tag string, dynamic bool, weights []float64) Dimension {
	d, err := NewDimension(lower, upper, tag, dynamic, weights)
	if err != nil {
		exceptions.Panicf("tilespace.MustNewDimension: %+v", err)
	}
	return d
}

// UniformWeights returns a weight slice of the given width with every offset
// set to prob. It is the common case: a constant sampling probability over
// the whole axis range.
func UniformWeights(width int, prob float64) []float64 {
	weights := make([]float64, width)
	for ii := range weights {
		weights[ii] = prob
	}
	return weights
}

// Width returns the number of integer offsets in the axis range.
func (d Dimension) Width() int {
	return d.Upper - d.Lower + 1
}

// SampleWidth returns the number of offsets eligible for sampling: the full
// width for a dynamic axis, 1 for a static axis -- a static axis's true size
// is already fixed by the enclosing problem instance, so it collapses to the
// single representative offset Lower.
func (d Dimension) SampleWidth() int {
	if d.Dynamic {
		return d.Width()
	}
	return 1
}

// String implements fmt.Stringer.
func (d Dimension) String() string {
	kind := "static"
	if d.Dynamic {
		kind = "dynamic"
	}
	return fmt.Sprintf("%s[%d..%d %s]", d.Tag, d.Lower, d.Upper, kind)
}

// BucketInfo describes one hyper-rectangular region ("bucket") of the full
// search space, as an ordered sequence of Dimensions.
type BucketInfo []Dimension

// Validate checks every Dimension of the bucket. It returns an error wrapping
// ErrConstruction for an empty bucket or any malformed dimension.
func (b BucketInfo) Validate() error {
	if len(b) == 0 {
		return errors.Wrap(ErrConstruction, "bucket has no dimensions")
	}
	for _, d := range b {
		if _, err := NewDimension(d.Lower, d.Upper, d.Tag, d.Dynamic, d.Weights); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the canonical encoding of the bucket's (lower, upper, tag,
// dynamic) tuples, in axis order. Two buckets with the same key address the
// same configuration-database entry; sampling weights deliberately do not
// participate in the key.
func (b BucketInfo) Key() string {
	parts := make([]string, 0, len(b))
	for _, d := range b {
		kind := byte('s')
		if d.Dynamic {
			kind = 'd'
		}
		parts = append(parts, fmt.Sprintf("%s:%d-%d:%c", d.Tag, d.Lower, d.Upper, kind))
	}
	return strings.Join(parts, "/")
}

// String implements fmt.Stringer.
func (b BucketInfo) String() string {
	parts := make([]string, 0, len(b))
	for _, d := range b {
		parts = append(parts, d.String())
	}
	return "Bucket{" + strings.Join(parts, ", ") + "}"
}

// TileConfig is the outcome of a search: one tile/block size per Dimension of
// the bucket it was tuned for, and the score the winning configuration
// measured. Lower scores are better.
type TileConfig struct {
	Tiles []int   `json:"tiles"`
	Score float64 `json:"score"`
}

// String implements fmt.Stringer.
func (c TileConfig) String() string {
	parts := make([]string, 0, len(c.Tiles))
	for _, t := range c.Tiles {
		parts = append(parts, fmt.Sprintf("%d", t))
	}
	return fmt.Sprintf("TileConfig{[%s] score=%g}", strings.Join(parts, ", "), c.Score)
}
