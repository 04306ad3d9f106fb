// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package measure defines the interface a measurement backend needs to
// implement to score candidate tile configurations for the autotile engine.
//
// A Measurer compiles-and-runs (or simulates) the computation under tuning
// with a concrete tile configuration and reports its cost. Real backends live
// outside this module -- kernel compilation and hardware execution are
// collaborators, not part of the engine -- and register themselves by name,
// the same way GoMLX backends do. A deterministic "stub" measurer is
// registered by default for tests and dry runs.
package measure

import (
	"context"
	"os"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// DynamicSize is the sentinel shape value denoting an axis whose size is only
// determined at runtime.
const DynamicSize int64 = -1

// Computation is an opaque handle to the parameterized computation being
// tuned, built by an external graph-construction front end. The engine only
// inspects its shape parameters; everything else is for the Measurer.
type Computation interface {
	// Name identifies the computation, e.g. "reduce_sum".
	Name() string

	// ShapeParams returns the shape of the problem instance, one value per
	// axis, with DynamicSize (-1) marking runtime-variable axes.
	ShapeParams() []int64
}

// computation is the trivial value implementation of Computation, enough for
// drivers, tests and proxy-cost measurers.
type computation struct {
	name  string
	shape []int64
}

// NewComputation returns a plain Computation handle with the given name and
// shape parameters. Real front ends will provide their own richer handles.
func NewComputation(name string, shape ...int64) Computation {
	return &computation{name: name, shape: shape}
}

func (c *computation) Name() string         { return c.name }
func (c *computation) ShapeParams() []int64 { return c.shape }

// ErrMeasurement is the cause of all per-trial measurement failures. A trial
// failing with it is a soft failure: the objective function excludes the
// trial and continues. Test with errors.Is.
var ErrMeasurement = errors.New("measurement failed")

// Measurer executes (or estimates) the computation configured with the given
// per-axis tile sizes and returns its cost. Lower is better.
//
// Measure may block on external hardware; implementations must honor ctx
// cancellation. Errors wrapping ErrMeasurement are treated as soft, per-trial
// failures by the caller.
type Measurer interface {
	Measure(ctx context.Context, comp Computation, tiles []int) (cost float64, err error)
}

// Constructor takes a measurer-specific config string (possibly empty) and
// returns a Measurer.
type Constructor func(config string) Measurer

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register a measurer constructor under the given name. To be safe, call
// Register during package initialization.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// AUTOTILE_MEASURER is the environment variable with the default measurer
// configuration, formatted as "<name>:<config>" (the ":<config>" part is
// optional and measurer specific).
const AUTOTILE_MEASURER = "AUTOTILE_MEASURER"

// New returns the default Measurer: the AUTOTILE_MEASURER environment
// variable if set, otherwise the first registered measurer with an empty
// config. It panics if no measurer was registered.
func New() Measurer {
	if config, found := os.LookupEnv(AUTOTILE_MEASURER); found {
		return NewWithConfig(config)
	}
	return NewWithConfig("")
}

// NewWithConfig builds the measurer selected by config, formatted as
// "<name>:<config>". An empty name selects the first registered measurer. It
// panics if the name is unknown.
func NewWithConfig(config string) Measurer {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf("no registered measurers for autotile -- import a measurer package, e.g. the stub in github.com/gomlx/autotile/measure")
	}
	name := firstRegistered
	measurerConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		name = config[:idx]
		measurerConfig = config[idx+1:]
	} else if config != "" {
		name = config
		measurerConfig = ""
	}
	constructor, found := registeredConstructors[name]
	if !found {
		exceptions.Panicf("can't find measurer %q for configuration %q given", name, config)
	}
	return constructor(measurerConfig)
}
