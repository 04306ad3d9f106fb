// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package search

// BucketState is the lifecycle of one bucket within a search.
type BucketState uint8

//go:generate go tool enumer -type=BucketState -trimprefix=Bucket -transform=snake -output=gen_bucketstate_enumer.go state.go

const (
	// BucketPending: generated, not yet handed to the objective function.
	BucketPending BucketState = iota

	// BucketEvaluating: the objective function is measuring the bucket.
	BucketEvaluating

	// BucketScored: terminal, the bucket has a score and winning tiles.
	BucketScored

	// BucketFailed: terminal, the bucket could not be measured.
	BucketFailed
)

// IsTerminal returns whether the state is final (BucketScored or
// BucketFailed).
func (s BucketState) IsTerminal() bool {
	return s == BucketScored || s == BucketFailed
}
