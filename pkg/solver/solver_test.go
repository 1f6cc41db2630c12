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
	"testing"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fuzzyOptions() Options {
	return Options{
		Solver: smt.Z3,
		Domain: circuit.Fuzzy,
		Tnorm:  circuit.Godel,
	}
}

func exactProblem(t *testing.T) (*ast.Relation, *instance.Bounds) {
	u, err := instance.NewUniverse([]string{"a", "b"})
	require.NoError(t, err)

	r := ast.NewQuantitativeRelation("R", 1)

	tuples := instance.NewTupleSet(u, 1)
	index, err := tuples.IndexOf("a")
	require.NoError(t, err)
	tuples.AddWeighted(index, decimal.NewFromFloat(0.5))

	bounds := instance.NewBounds(u)
	require.NoError(t, bounds.BoundExactly(r, tuples))

	return r, bounds
}

func TestTrivialSat(t *testing.T) {
	r, bounds := exactProblem(t)
	s := New(fuzzyOptions())

	sol, err := s.Solve(ast.NewMultFormula(ast.SomeMult, r), bounds)
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.Equal(t, SatVerdict, sol.Verdict)
	require.NotNil(t, sol.Instance)

	tuples := sol.Instance.Tuples(r)
	require.NotNil(t, tuples)
	assert.Equal(t, 1, tuples.Size())
	assert.True(t, tuples.Weight(0).Equal(decimal.NewFromFloat(0.5)))
}

func TestTrivialUnsat(t *testing.T) {
	r, bounds := exactProblem(t)
	s := New(fuzzyOptions())

	sol, err := s.Solve(ast.NewMultFormula(ast.NoMult, r), bounds)
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.Equal(t, UnsatVerdict, sol.Verdict)
	assert.Nil(t, sol.Instance)
}

func TestTrivialEnumerationTerminates(t *testing.T) {
	r, bounds := exactProblem(t)

	it, err := Iterate(ast.NewMultFormula(ast.SomeMult, r), bounds, fuzzyOptions())
	require.NoError(t, err)

	sol, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Equal(t, SatVerdict, sol.Verdict)

	// Exact bounds admit exactly one instance: the enumeration ends.
	sol, err = it.Next()
	require.NoError(t, err)
	assert.Nil(t, sol)
	assert.False(t, it.HasNext())
}

func TestLastSolveHandle(t *testing.T) {
	ResetLastSolve()
	assert.Nil(t, LastSolve())

	r, bounds := exactProblem(t)
	s := New(fuzzyOptions())

	_, err := s.Solve(ast.NewMultFormula(ast.SomeMult, r), bounds)
	require.NoError(t, err)
	require.NotNil(t, LastSolve())

	ResetLastSolve()
	assert.Nil(t, LastSolve())
}

func TestOptionsValidation(t *testing.T) {
	opts := fuzzyOptions()
	max := int64(5)
	opts.MaxWeight = &max

	// A weight ceiling is an integer-domain concept.
	assert.Error(t, opts.Validate())

	opts.Domain = circuit.Integer
	assert.NoError(t, opts.Validate())

	bad := int64(0)
	opts.MaxWeight = &bad
	assert.Error(t, opts.Validate())
}

func TestStatisticsReported(t *testing.T) {
	r, bounds := exactProblem(t)
	s := New(fuzzyOptions())

	sol, err := s.Solve(ast.NewMultFormula(ast.SomeMult, r), bounds)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, sol.Stats.TranslationTime.Nanoseconds(), int64(0))
	assert.Equal(t, int64(0), sol.Stats.SolvingTime.Nanoseconds())
}
