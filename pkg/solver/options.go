// Copyright Quantrel Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package solver ties the translation pipeline to the SMT back end: it
// translates a problem, drives a solver over it, lifts models back into
// weighted instances, and enumerates further solutions by blocking previous
// ones.
package solver

import (
	"time"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/smt"
)

// Options configure one solve.
type Options struct {
	// Solver selects the external SMT solver.
	Solver smt.SolverKind
	// Domain selects integer or fuzzy weights.
	Domain circuit.Domain
	// Tnorm selects the fuzzy conjunction/disjunction pair.
	Tnorm circuit.Tnorm
	// BinaryPath optionally pins the solver executable; otherwise the
	// <SOLVER>_DIR environment variable and the working directory are tried.
	BinaryPath string
	// MaxWeight optionally bounds integer weights from above.
	MaxWeight *int64
	// Incremental requests a live solver session, when the solver supports
	// one.
	Incremental bool
	// Timeout bounds each solver call; zero means no deadline.
	Timeout time.Duration
}

// Config returns the factory configuration these options imply.
func (o Options) Config() circuit.Config {
	return circuit.Config{Domain: o.Domain, Tnorm: o.Tnorm}
}

// Validate rejects inconsistent option combinations.
func (o Options) Validate() error {
	if o.MaxWeight != nil {
		if o.Domain != circuit.Integer {
			return faults.NewTranslation(faults.InvalidBounds,
				"maximum weight is only meaningful in the integer domain")
		}

		if *o.MaxWeight < 1 {
			return faults.NewTranslation(faults.InvalidBounds,
				"maximum weight must be positive, got %d", *o.MaxWeight)
		}
	}

	return nil
}
