// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package configdb persists tile configurations discovered by previous tuning
// runs, keyed by hardware target and bucket key (see tilespace.BucketInfo.Key).
//
// Two implementations are provided: a single-file JSON database (OpenFile),
// which round-trips entries exactly and writes atomically, and a SQLite
// database (OpenSQLite) for setups where many tuning processes share one
// store. Both are safe for concurrent readers; concurrent writers to the same
// (target, key) must be serialized by the caller -- last write wins otherwise.
package configdb

import (
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
)

// ErrDatabaseIO is the cause of all errors from reading or writing the
// backing store. Test with errors.Is. Callers (notably the schedule.Manager)
// are expected to fall back to the heuristic policy instead of failing.
var ErrDatabaseIO = errors.New("config database I/O failed")

// TileConfigMap holds every known configuration for one target, keyed by
// bucket key.
type TileConfigMap map[string]tilespace.TileConfig

// Entry is one persisted configuration with its provenance: which tuning run
// produced it and when. Entries are immutable once written for a given key;
// an explicit re-tune overwrites them.
type Entry struct {
	Target    tilespace.Target     `json:"target"`
	BucketKey string               `json:"bucket_key"`
	Config    tilespace.TileConfig `json:"config"`

	// RunID identifies the tuning run that produced the entry.
	RunID string `json:"run_id,omitempty"`

	// CreatedUnix is the write time in Unix seconds.
	CreatedUnix int64 `json:"created_unix,omitempty"`
}

// Database is the abstract store of tuned tile configurations.
type Database interface {
	// GetConfigs returns all known configurations for the target. An unknown
	// target yields an empty map, not an error.
	GetConfigs(target tilespace.Target) (TileConfigMap, error)

	// GetConfig returns the configuration for (target, bucketKey), and
	// whether one exists. A missing entry is not an error: it signals "no
	// cached entry -- must search".
	GetConfig(target tilespace.Target, bucketKey string) (tilespace.TileConfig, bool, error)

	// SetConfig stores the configuration for (target, bucketKey),
	// overwriting any previous entry.
	SetConfig(target tilespace.Target, bucketKey string, config tilespace.TileConfig) error

	// Close releases the backing store. The Database is invalid afterwards.
	Close() error
}
