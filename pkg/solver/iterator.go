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
	"fmt"
	"time"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/quantrel/go-quantrel/pkg/translate"
	log "github.com/sirupsen/logrus"
)

// Iterator enumerates the solutions of a problem.  Each Next blocks the
// previous model and re-solves; the iterator terminates on unsat or unknown.
// The solver session stays live across Next calls.
type Iterator struct {
	options     Options
	translation *translate.Translation
	driver      *smt.Driver
	translTime  time.Duration
	// Number of trivial solutions produced so far, used to name the fresh
	// relation symbols that force progress past a trivially-sat problem.
	trivial int
	done    bool
}

// Iterate translates the given problem and prepares an iterator over its
// solutions.
func Iterate(formula ast.Formula, bounds *instance.Bounds, options Options) (*Iterator, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	it := &Iterator{options: options}
	if err := it.translate(formula, bounds); err != nil {
		return nil, err
	}

	return it, nil
}

func (it *Iterator) translate(formula ast.Formula, bounds *instance.Bounds) error {
	start := time.Now()

	tr, err := translate.Translate(formula, bounds, it.options.Config())
	if err != nil {
		return err
	}

	it.translTime += time.Since(start)
	it.translation = tr

	buildOpts := smt.BuildOptions{
		MaxWeight:   it.options.MaxWeight,
		Incremental: it.options.Incremental,
	}

	var spec *smt.Specification
	if tr.Trivial() {
		spec = smt.BuildTrivial(tr.Factory(), tr.TriviallySat(), buildOpts)
	} else {
		spec = smt.Build(tr.Factory(), tr.Root(), tr.FixedPoint(), buildOpts)
	}

	log.Debugf("translated in %s: %d primary variables, %d assertions",
		it.translTime, tr.NumPrimaryVariables(), spec.NumAssertions)

	it.driver = smt.NewDriver(spec, it.options.Solver, it.options.BinaryPath, it.options.Timeout)

	return nil
}

// HasNext reports whether another Next call may produce a solution.
func (it *Iterator) HasNext() bool { return !it.done }

// Next returns the next solution, or nil when the iterator is exhausted.
func (it *Iterator) Next() (*Solution, error) {
	if it.done {
		return nil, nil
	}

	if it.translation.Trivial() {
		return it.nextTrivial()
	}

	return it.nextNonTrivial()
}

// Free releases the solver session backing this iterator.
func (it *Iterator) Free() {
	if it.driver != nil {
		it.driver.Free()
	}

	it.done = true
}

// nextNonTrivial solves, lifts the model, and blocks it so the following
// Next yields a different solution or unsat.
func (it *Iterator) nextNonTrivial() (*Solution, error) {
	start := time.Now()

	result, err := it.driver.Solve()
	if err != nil {
		it.done = true
		it.driver.Free()

		return nil, err
	}

	solveTime := time.Since(start)
	stats := Statistics{
		TranslationTime:  it.translTime,
		SolvingTime:      solveTime,
		PrimaryVariables: it.translation.NumPrimaryVariables(),
		FunctionSymbols:  it.driver.NumberOfFunctionSymbols(),
		Assertions:       it.driver.NumberOfAssertions(),
	}

	switch result {
	case smt.Sat:
		inst, err := lift(it.translation, it.driver)
		if err != nil {
			it.done = true
			it.driver.Free()

			return nil, err
		}
		// Block every primary variable's current value.
		labels := make([]int, it.translation.NumPrimaryVariables())
		for i := range labels {
			labels[i] = i
		}

		if err := it.driver.ElimSolution(labels); err != nil {
			return nil, err
		}

		return &Solution{SatVerdict, inst, stats}, nil

	case smt.Unsat:
		it.done = true
		it.driver.Free()

		return &Solution{UnsatVerdict, nil, stats}, nil

	default:
		// Unknown terminates enumeration but is a verdict, not an error.
		it.done = true
		it.driver.Free()

		return &Solution{UnknownVerdict, nil, stats}, nil
	}
}

// nextTrivial reports the trivial verdict, then rebinds the problem so the
// following Next must make progress: every relation that may change is
// compared against a fresh symbol holding its current tuples.
func (it *Iterator) nextTrivial() (*Solution, error) {
	tr := it.translation
	stats := Statistics{TranslationTime: it.translTime}

	if !tr.TriviallySat() {
		it.done = true
		return &Solution{UnsatVerdict, nil, stats}, nil
	}

	bounds := tr.Bounds()
	inst := instance.NewInstance(bounds.Universe())

	for _, r := range bounds.Relations() {
		inst.Add(r, bounds.Lower(r).Clone())
	}

	it.trivial++

	newBounds := bounds.Clone()

	var changes []ast.Formula

	for _, r := range bounds.Relations() {
		lower, upper := bounds.Lower(r), bounds.Upper(r)

		if !lower.Equals(upper) { // r may change
			if lower.Size() == 0 {
				changes = append(changes, ast.NewMultFormula(ast.SomeMult, r))
			} else {
				name := fmt.Sprintf("%s_%d", r.Name(), it.trivial)

				var rmodel *ast.Relation
				if r.IsQuantitative() {
					rmodel = ast.NewQuantitativeRelation(name, r.Arity())
				} else {
					rmodel = ast.NewRelation(name, r.Arity())
				}

				if err := newBounds.BoundExactly(rmodel, lower); err != nil {
					return nil, err
				}

				changes = append(changes, ast.Not(ast.NewCompareFormula(ast.Equal, r, rmodel)))
			}
		}
	}

	if len(changes) == 0 {
		// Nothing can change, so the current trivial solution is the only
		// one.
		it.done = true
	} else if err := it.translate(ast.Or(changes...), newBounds); err != nil {
		return nil, err
	}

	return &Solution{SatVerdict, inst, stats}, nil
}
