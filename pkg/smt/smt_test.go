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
package smt

import (
	"strings"
	"testing"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fuzzyFactory() *circuit.Factory {
	return circuit.NewFactory(circuit.Config{Domain: circuit.Fuzzy, Tnorm: circuit.Godel})
}

func TestBuildDeclarations(t *testing.T) {
	f := fuzzyFactory()
	f.AddVariables(2)

	root := f.Or(f.Drop(f.Variable(0)), f.Drop(f.Variable(1)))
	spec := Build(f, root, nil, BuildOptions{})

	assert.Equal(t, LogicFuzzy, spec.Logic)
	assert.Equal(t, 2, spec.NumVariables)
	assert.Contains(t, spec.Body, "(declare-fun v0 () Real)")
	assert.Contains(t, spec.Body, "(declare-fun v1 () Real)")
	// Fuzzy primary variables live in [0, 1].
	assert.Contains(t, spec.Body, "(assert (and (>= v0 0.0) (<= v0 1.0)))")
	assert.Equal(t, "v0", spec.NumFS[0])
	assert.Equal(t, "v1", spec.NumFS[1])
	assert.Greater(t, spec.NumAssertions, 2)
}

func TestBuildIntegerLogicAndMaxWeight(t *testing.T) {
	f := circuit.NewFactory(circuit.Config{Domain: circuit.Integer})
	f.AddVariables(1)

	max := int64(7)
	root := f.Drop(f.Variable(0))
	spec := Build(f, root, nil, BuildOptions{MaxWeight: &max})

	assert.Equal(t, LogicInteger, spec.Logic)
	assert.Contains(t, spec.Body, "(declare-fun v0 () Int)")
	assert.Contains(t, spec.Body, "(assert (<= v0 7))")
}

func TestBuildVariableConstraints(t *testing.T) {
	f := fuzzyFactory()
	v := f.FreshVariable()
	v.SetConstraint(circuit.NonZero)

	w := f.FreshVariable()
	f.ToBool(w)

	root := f.Lt(v, w)
	spec := Build(f, root, nil, BuildOptions{})

	assert.Contains(t, spec.Body, "(assert (distinct v0 0.0))")
	assert.Contains(t, spec.Body, "(assert (or (= v1 0.0) (= v1 1.0)))")
}

func TestBuildSharesGates(t *testing.T) {
	f := fuzzyFactory()
	f.AddVariables(2)

	sum := f.Plus(f.Variable(0), f.Variable(1))
	// The same gate feeds two comparisons; it must be defined exactly once.
	root := f.And(f.Gte(sum, circuit.Zero), f.Lte(sum, circuit.One))
	spec := Build(f, root, nil, BuildOptions{})

	assert.Equal(t, 1, strings.Count(spec.Body, "(define-fun g2 "))
	assert.Contains(t, spec.Body, "(+ v0 v1)")
}

func TestBuildDivisionGuard(t *testing.T) {
	f := fuzzyFactory()
	f.AddVariables(2)

	div := f.Divide(f.Variable(0), f.Variable(1))
	root := f.Eq(div, f.Constant(decimal.NewFromFloat(0.5)))
	spec := Build(f, root, nil, BuildOptions{})

	assert.Contains(t, spec.Body, "(assert (not ")
}

func TestBuildTrivial(t *testing.T) {
	f := fuzzyFactory()
	spec := BuildTrivial(f, true, BuildOptions{})

	assert.True(t, spec.Trivial)
	assert.True(t, spec.TrivialValue)
	assert.Empty(t, spec.Body)
}

func TestParseModelWrapped(t *testing.T) {
	m, err := parseModel(`(model
  (define-fun v0 () Real 0.5)
  (define-fun v1 () Real (/ 1.0 3.0))
  (define-fun v2 () Int (- 2))
  (define-fun v3 () Bool true)
)`)
	require.NoError(t, err)

	assert.True(t, m.nums[0].Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, m.nums[1].Round(6).Equal(decimal.NewFromFloat(0.333333)))
	assert.Equal(t, "(/ 1.0 3.0)", m.fractions[1])
	assert.True(t, m.nums[2].Equal(decimal.NewFromInt(-2)))
	assert.True(t, m.bools[3])
}

func TestParseModelBareDefinitions(t *testing.T) {
	m, err := parseModel(`(
  (define-fun v7 () Real 0.25)
)`)
	require.NoError(t, err)
	assert.True(t, m.nums[7].Equal(decimal.NewFromFloat(0.25)))
}

func TestParseModelMultiLineDefinition(t *testing.T) {
	m, err := parseModel("(model\n(define-fun v4\n  ()\n  Real\n  0.125)\n)")
	require.NoError(t, err)
	assert.True(t, m.nums[4].Equal(decimal.NewFromFloat(0.125)))
}

func TestParseModelIgnoresForeignSymbols(t *testing.T) {
	m, err := parseModel(`(model (define-fun skolem () Bool false))`)
	require.NoError(t, err)
	assert.Empty(t, m.bools)
	assert.Empty(t, m.nums)
}

func TestElimSolutionBlocksValues(t *testing.T) {
	spec := &Specification{
		Logic: LogicFuzzy,
		NumFS: map[int]string{0: "v0", 1: "v1"},
	}

	d := NewDriver(spec, Z3, "", 0)
	d.solved = true
	d.model = newModel()
	d.model.nums[0] = decimal.NewFromFloat(0.5)
	d.model.nums[1] = decimal.RequireFromString("0.3333333333333333")
	d.model.fractions[1] = "(/ 1.0 3.0)"

	require.NoError(t, d.ElimSolution([]int{1, 0}))

	blocking := d.ignore.String()
	// Labels are blocked in ascending order; fractions reuse the exact
	// solver syntax.
	assert.Equal(t, "(assert (not (and (= v0 0.5) (= v1 (/ 1.0 3.0)))))\n", blocking)
}

func TestElimSolutionWithoutSolve(t *testing.T) {
	spec := &Specification{Logic: LogicFuzzy, NumFS: map[int]string{}}
	d := NewDriver(spec, Z3, "", 0)

	assert.Error(t, d.ElimSolution([]int{0}))
}

func TestBinaryResolution(t *testing.T) {
	spec := &Specification{Logic: LogicFuzzy, NumFS: map[int]string{}}

	d := NewDriver(spec, Yices, "/opt/yices/bin/yices", 0)
	assert.Equal(t, "/opt/yices/bin/yices", d.resolveBinary())

	d = NewDriver(spec, Yices, "", 0)
	t.Setenv("Yices_DIR", "/usr/local/bin/yices-smt2")
	assert.Equal(t, "/usr/local/bin/yices-smt2", d.resolveBinary())

	t.Setenv("Yices_DIR", "")
	assert.Equal(t, "./yices", d.resolveBinary())
}

func TestUnreachableSolver(t *testing.T) {
	f := fuzzyFactory()
	f.AddVariables(1)

	spec := Build(f, f.Drop(f.Variable(0)), nil, BuildOptions{})
	d := NewDriver(spec, Z3, "/nonexistent/z3-binary", 0)

	_, err := d.Solve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestSolverProfiles(t *testing.T) {
	tests := []struct {
		kind        SolverKind
		incremental bool
		flag        string
	}{
		{Z3, true, "-in"},
		{MathSAT, false, ""},
		{CVC4, false, "--lang"},
		{Yices, true, "--incremental"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			prof := tt.kind.profile()
			assert.Equal(t, tt.incremental, prof.incremental)

			args := prof.command(true)
			if tt.flag == "" {
				assert.Empty(t, args)
			} else {
				assert.Contains(t, args, tt.flag)
			}

			assert.Contains(t, prof.header(LogicFuzzy), "(set-logic QF_UFLRA)")
			assert.Contains(t, prof.header(LogicFuzzy), ":produce-models")
		})
	}
}
