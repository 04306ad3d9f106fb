// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package schedule selects how a tile configuration is produced for a given
// problem instance: recomputed from the tiling heuristic every time (the
// "default" policy) or looked up in a configuration database with a search
// fallback on miss (the "database" policy).
//
// A Manager is the explicit context object passed around by drivers; Default
// returns the lazily initialized process-wide instance for convenience call
// sites.
package schedule

import (
	"context"
	"sync"

	"github.com/gomlx/autotile/configdb"
	"github.com/gomlx/autotile/tilespace"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Recognized policy names.
const (
	// PolicyDefault always derives the configuration from the tiling
	// heuristic, ignoring any database.
	PolicyDefault = "default"

	// PolicyDatabase consults the configuration database first and falls
	// back to the search function (or the heuristic) on miss.
	PolicyDatabase = "database"
)

// ErrUnknownPolicy is the cause of SetPolicy errors for unrecognized policy
// names. Test with errors.Is.
var ErrUnknownPolicy = errors.New("unknown schedule policy")

// SearchFn runs a configuration search for the given bucket and returns the
// winning configuration. The schedule package deliberately only knows this
// signature; the search package provides implementations.
type SearchFn func(ctx context.Context, target tilespace.Target, bucket tilespace.BucketInfo) (tilespace.TileConfig, error)

// Manager produces tile configurations according to its current policy.
//
// GetConfig is safe for concurrent use. SetPolicy takes the same lock, but
// callers are responsible for not changing the policy while searches that
// already read it are in flight.
type Manager struct {
	mu       sync.RWMutex
	policy   string
	db       configdb.Database
	search   SearchFn
	readOnly bool
}

// ManagerOption configures a Manager created by New.
type ManagerOption func(*Manager)

// WithDatabase sets the configuration database consulted by the "database"
// policy. The Manager does not close it.
func WithDatabase(db configdb.Database) ManagerOption {
	return func(m *Manager) { m.db = db }
}

// WithSearchFallback sets the search invoked by the "database" policy on a
// cache miss. Without it, misses fall back to the heuristic configuration.
func WithSearchFallback(search SearchFn) ManagerOption {
	return func(m *Manager) { m.search = search }
}

// WithReadOnly disables writing freshly searched configurations back to the
// database.
func WithReadOnly() ManagerOption {
	return func(m *Manager) { m.readOnly = true }
}

// New returns a Manager with the "default" policy and the given options.
func New(options ...ManagerOption) *Manager {
	m := &Manager{policy: PolicyDefault}
	for _, option := range options {
		option(m)
	}
	return m
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide Manager, lazily created on first use with
// the "default" policy and no database. Prefer passing an explicit Manager
// where practical.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = New()
	})
	return defaultManager
}

// SetPolicy switches the Manager to the named policy. It fails with an error
// wrapping ErrUnknownPolicy for unrecognized names, leaving the current
// policy unchanged.
func (m *Manager) SetPolicy(name string) error {
	switch name {
	case PolicyDefault, PolicyDatabase:
	default:
		return errors.Wrapf(ErrUnknownPolicy, "%q (recognized: %q, %q)", name, PolicyDefault, PolicyDatabase)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy = name
	return nil
}

// Policy returns the current policy name.
func (m *Manager) Policy() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy
}

// GetConfig produces a tile configuration for the bucket according to the
// current policy.
//
// Under the "database" policy, a database I/O failure is logged and degrades
// to the "default" policy rather than failing the caller; only the search
// fallback itself can surface an error.
func (m *Manager) GetConfig(ctx context.Context, target tilespace.Target, bucket tilespace.BucketInfo) (tilespace.TileConfig, error) {
	if err := bucket.Validate(); err != nil {
		return tilespace.TileConfig{}, err
	}
	m.mu.RLock()
	policy, db, search, readOnly := m.policy, m.db, m.search, m.readOnly
	m.mu.RUnlock()

	if policy == PolicyDefault || db == nil {
		return HeuristicConfig(bucket), nil
	}

	key := bucket.Key()
	config, found, err := db.GetConfig(target, key)
	if err != nil {
		klog.Warningf("tile config database lookup for (%q, %q) failed, falling back to heuristic: %+v", target, key, err)
		return HeuristicConfig(bucket), nil
	}
	if found {
		klog.V(1).Infof("tile config cache hit for (%q, %q): %s", target, key, config)
		return config, nil
	}
	if search == nil {
		return HeuristicConfig(bucket), nil
	}

	config, err = search(ctx, target, bucket)
	if err != nil {
		return tilespace.TileConfig{}, err
	}
	if !readOnly {
		if err = db.SetConfig(target, key, config); err != nil {
			klog.Warningf("failed to store searched tile config for (%q, %q): %+v", target, key, err)
		}
	}
	return config, nil
}

// HeuristicConfig derives a tile configuration for the bucket purely from the
// breakpoint table, without any measurement: a dynamic axis gets
// TileSizeFor(lower) capped at the axis upper bound, a static axis gets its
// known size capped the same way. Heuristic configurations carry no measured
// score; Score is left zero.
func HeuristicConfig(bucket tilespace.BucketInfo) tilespace.TileConfig {
	tiles := make([]int, 0, len(bucket))
	for _, d := range bucket {
		tile := tilespace.TileSizeFor(d.Lower)
		if !d.Dynamic && d.Lower < tile {
			tile = d.Lower
		}
		if tile > d.Upper {
			tile = d.Upper
		}
		tiles = append(tiles, tile)
	}
	return tilespace.TileConfig{Tiles: tiles}
}
