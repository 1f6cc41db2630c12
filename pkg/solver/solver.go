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
package solver

import (
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/instance"
)

// Solver decides satisfiability of relational formulas over finite bounds.
type Solver struct {
	options Options
}

// New constructs a solver with the given options.
func New(options Options) *Solver {
	return &Solver{options}
}

// Options returns the options of this solver.
func (s *Solver) Options() Options { return s.options }

// Solve decides the given problem, returning the first solution.  The
// iterator backing the solve is retained in the process-wide last-solve
// handle, so the enumerator can continue from it.
func (s *Solver) Solve(formula ast.Formula, bounds *instance.Bounds) (*Solution, error) {
	it, err := Iterate(formula, bounds, s.options)
	if err != nil {
		return nil, err
	}

	setLastSolve(it)

	return it.Next()
}

// SolveAll prepares an enumeration over every solution of the given problem.
func (s *Solver) SolveAll(formula ast.Formula, bounds *instance.Bounds) (*Iterator, error) {
	it, err := Iterate(formula, bounds, s.options)
	if err != nil {
		return nil, err
	}

	setLastSolve(it)

	return it, nil
}
