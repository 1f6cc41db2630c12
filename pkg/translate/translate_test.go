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
package translate

import (
	"errors"
	"testing"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var godel = circuit.Config{Domain: circuit.Fuzzy, Tnorm: circuit.Godel}

func universe(t *testing.T, atoms ...string) *instance.Universe {
	u, err := instance.NewUniverse(atoms)
	require.NoError(t, err)

	return u
}

func tuples(t *testing.T, u *instance.Universe, arity int, weighted map[string]string) *instance.TupleSet {
	ts := instance.NewTupleSet(u, arity)

	for atom, weight := range weighted {
		index, err := ts.IndexOf(atom)
		require.NoError(t, err)

		if weight == "" {
			ts.Add(index)
		} else {
			w, err := decimal.NewFromString(weight)
			require.NoError(t, err)
			ts.AddWeighted(index, w)
		}
	}

	return ts
}

func TestLeafInterpreterAllocation(t *testing.T) {
	u := universe(t, "a", "b", "c")
	r := ast.NewQuantitativeRelation("R", 1)
	s := ast.NewQuantitativeRelation("S", 1)

	bounds := instance.NewBounds(u)
	require.NoError(t, bounds.Bound(r, instance.NewTupleSet(u, 1), tuples(t, u, 1, map[string]string{"a": "", "b": ""})))
	require.NoError(t, bounds.Bound(s, instance.NewTupleSet(u, 1), tuples(t, u, 1, map[string]string{"c": ""})))

	li := Exact(bounds, godel)

	vr, ok := li.Vars(r)
	require.True(t, ok)
	assert.Equal(t, VarRange{0, 1}, vr)

	vs, ok := li.Vars(s)
	require.True(t, ok)
	assert.Equal(t, VarRange{2, 2}, vs)

	assert.Equal(t, 3, li.Factory().NumVariables())

	// Every upper-bound cell holds its allocated variable.
	m := li.Interpret(r)
	assert.Equal(t, 2, m.Density())
	assert.Equal(t, 0, m.Get(0).Label())
	assert.Equal(t, 1, m.Get(1).Label())
}

func TestLeafInterpreterLowerBounds(t *testing.T) {
	u := universe(t, "a", "b")
	quant := ast.NewQuantitativeRelation("Q", 1)
	boolean := ast.NewRelation("B", 1)

	lower := tuples(t, u, 1, map[string]string{"a": ""})
	upper := tuples(t, u, 1, map[string]string{"a": "", "b": ""})

	bounds := instance.NewBounds(u)
	require.NoError(t, bounds.Bound(quant, lower, upper))
	require.NoError(t, bounds.Bound(boolean, lower, upper))

	li := Exact(bounds, godel)

	// Quantitative lower cells hold a non-zero variable.
	q := li.Interpret(quant)
	qa, ok := q.Get(0).(*circuit.NumVar)
	require.True(t, ok)
	assert.True(t, qa.IsTrue())

	// Boolean lower cells are pinned to one.
	b := li.Interpret(boolean)
	assert.Same(t, circuit.Num(circuit.One), b.Get(0))
	// Boolean upper cells pair a {0,1} variable with its boolean side.
	_, ok = b.Get(1).(*circuit.BinaryValue)
	assert.True(t, ok)
	assert.True(t, b.IsBoolean())
}

func TestInterpretConstants(t *testing.T) {
	u := universe(t, "a", "b", "1")
	bounds := instance.NewBounds(u)
	li := Exact(bounds, godel)

	univ := li.InterpretConst(ast.Univ)
	assert.Equal(t, 3, univ.Density())

	iden := li.InterpretConst(ast.Iden)
	assert.Equal(t, 3, iden.Density())
	assert.Same(t, circuit.Num(circuit.One), iden.Get(0))
	assert.Same(t, circuit.Num(circuit.One), iden.Get(4))

	none := li.InterpretConst(ast.None)
	assert.Equal(t, 0, none.Density())

	// Atoms whose name denotes an integer populate INTS.
	ints := li.InterpretConst(ast.Ints)
	assert.Equal(t, 1, ints.Density())
	assert.Same(t, circuit.Num(circuit.One), ints.Get(2))
}

func TestEvaluateMultiplicity(t *testing.T) {
	u := universe(t, "a", "b", "c")
	r := ast.NewQuantitativeRelation("R", 1)

	inst := instance.NewInstance(u)
	inst.Add(r, tuples(t, u, 1, map[string]string{"a": "0.5", "b": "0.2"}))

	value, err := Evaluate(ast.NewMultFormula(ast.SomeMult, r), inst, godel)
	require.NoError(t, err)
	assert.True(t, value)

	value, err = Evaluate(ast.NewMultFormula(ast.NoMult, r), inst, godel)
	require.NoError(t, err)
	assert.False(t, value)

	value, err = Evaluate(ast.NewMultFormula(ast.LoneMult, r), inst, godel)
	require.NoError(t, err)
	assert.False(t, value)
}

func TestEvaluateCardinality(t *testing.T) {
	u := universe(t, "a", "b", "c")
	r := ast.NewQuantitativeRelation("R", 1)

	inst := instance.NewInstance(u)
	inst.Add(r, tuples(t, u, 1, map[string]string{"a": "0.5", "b": "0.2"}))

	m, err := EvaluateExpr(ast.NewUnaryExpr(ast.Cardinality, r), inst, godel)
	require.NoError(t, err)

	c, ok := m.First().(*circuit.NumConst)
	require.True(t, ok)
	assert.True(t, c.Value().Equal(decimal.NewFromFloat(0.7)))
}

func TestEvaluateQuantifier(t *testing.T) {
	u := universe(t, "a", "b")
	r := ast.NewQuantitativeRelation("R", 2)

	ts := instance.NewTupleSet(u, 2)
	require.NoError(t, ts.AddTuple("a", "a"))
	require.NoError(t, ts.AddTuple("b", "b"))

	inst := instance.NewInstance(u)
	inst.Add(r, ts)

	x := ast.NewVariable("x")
	// all x: univ | some x.R
	body := ast.NewMultFormula(ast.SomeMult, ast.NewBinaryExpr(ast.Join, x, r))
	formula := ast.NewQuantFormula(ast.All, []*ast.Decl{ast.NewDecl(x, ast.Univ)}, body)

	value, err := Evaluate(formula, inst, godel)
	require.NoError(t, err)
	assert.True(t, value)

	// some x: univ | no x.R is false since every atom has a successor.
	formula = ast.NewQuantFormula(ast.Exists, []*ast.Decl{ast.NewDecl(x, ast.Univ)},
		ast.NewMultFormula(ast.NoMult, ast.NewBinaryExpr(ast.Join, x, r)))

	value, err = Evaluate(formula, inst, godel)
	require.NoError(t, err)
	assert.False(t, value)
}

func TestEvaluateComprehension(t *testing.T) {
	u := universe(t, "a", "b")
	r := ast.NewRelation("R", 1)

	inst := instance.NewInstance(u)
	inst.Add(r, tuples(t, u, 1, map[string]string{"a": ""}))

	x := ast.NewVariable("x")
	// { x: univ | x in R } = R
	comp := ast.NewComprehension(
		[]*ast.Decl{ast.NewDecl(x, ast.Univ)},
		ast.NewCompareFormula(ast.Subset, x, r))

	value, err := Evaluate(ast.NewCompareFormula(ast.Equal, comp, r), inst, godel)
	require.NoError(t, err)
	assert.True(t, value)
}

func TestEvaluateClosureRoundTrip(t *testing.T) {
	u := universe(t, "a", "b", "c")
	r := ast.NewQuantitativeRelation("R", 2)

	ts := instance.NewTupleSet(u, 2)
	index, err := ts.IndexOf("a", "b")
	require.NoError(t, err)
	ts.AddWeighted(index, decimal.NewFromFloat(0.3))

	index, err = ts.IndexOf("b", "c")
	require.NoError(t, err)
	ts.AddWeighted(index, decimal.NewFromFloat(0.4))

	inst := instance.NewInstance(u)
	inst.Add(r, ts)

	closure := ast.NewUnaryExpr(ast.Closure, r)

	m, err := EvaluateExpr(closure, inst, godel)
	require.NoError(t, err)

	ac, ok := m.Get(2).(*circuit.NumConst)
	require.True(t, ok)
	assert.True(t, ac.Value().Equal(decimal.NewFromFloat(0.3)))

	// R is a subset of its own closure.
	value, err := Evaluate(ast.NewCompareFormula(ast.Subset, r, closure), inst, godel)
	require.NoError(t, err)
	assert.True(t, value)
}

func TestTranslateProducesVariables(t *testing.T) {
	u := universe(t, "a", "b")
	r := ast.NewQuantitativeRelation("R", 1)

	bounds := instance.NewBounds(u)
	require.NoError(t, bounds.Bound(r, instance.NewTupleSet(u, 1),
		tuples(t, u, 1, map[string]string{"a": "", "b": ""})))

	tr, err := Translate(ast.NewMultFormula(ast.SomeMult, r), bounds, godel)
	require.NoError(t, err)

	assert.False(t, tr.Trivial())
	assert.Equal(t, 2, tr.NumPrimaryVariables())

	vr, ok := tr.PrimaryVars(r)
	require.True(t, ok)
	assert.Equal(t, VarRange{0, 1}, vr)
}

func TestTranslateTrivial(t *testing.T) {
	u := universe(t, "a", "b")
	r := ast.NewQuantitativeRelation("R", 1)

	exact := tuples(t, u, 1, map[string]string{"a": "0.5"})

	bounds := instance.NewBounds(u)
	require.NoError(t, bounds.BoundExactly(r, exact))

	tr, err := Translate(ast.NewMultFormula(ast.SomeMult, r), bounds, godel)
	require.NoError(t, err)

	assert.True(t, tr.Trivial())
	assert.True(t, tr.TriviallySat())

	tr, err = Translate(ast.NewMultFormula(ast.NoMult, r), bounds, godel)
	require.NoError(t, err)

	assert.True(t, tr.Trivial())
	assert.False(t, tr.TriviallySat())
}

func TestUnboundRelation(t *testing.T) {
	u := universe(t, "a")
	r := ast.NewQuantitativeRelation("R", 1)
	bounds := instance.NewBounds(u)

	_, err := Translate(ast.NewMultFormula(ast.SomeMult, r), bounds, godel)
	require.Error(t, err)

	var fault *faults.Translation
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, faults.UnboundLeaf, fault.Kind)
}

func TestHigherOrderDeclaration(t *testing.T) {
	u := universe(t, "a")
	r := ast.NewRelation("R", 1)

	bounds := instance.NewBounds(u)
	exact := tuples(t, u, 1, map[string]string{"a": ""})
	require.NoError(t, bounds.BoundExactly(r, exact))

	x := ast.NewVariable("x")
	decl := ast.NewDeclMult(x, ast.SomeOf, r)
	formula := ast.NewQuantFormula(ast.All, []*ast.Decl{decl}, ast.TrueFormula)

	_, err := Translate(formula, bounds, godel)
	require.Error(t, err)

	var fault *faults.Translation
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, faults.HigherOrder, fault.Kind)
}

func TestCacheSharedNode(t *testing.T) {
	u := universe(t, "a", "b")
	r := ast.NewRelation("R", 1)

	inst := instance.NewInstance(u)
	inst.Add(r, tuples(t, u, 1, map[string]string{"a": ""}))

	// The same subexpression occurs twice; the annotated tree must mark it
	// shared so its translation is reused.
	shared := ast.NewBinaryExpr(ast.Union, r, ast.Univ)
	formula := ast.And(
		ast.NewMultFormula(ast.SomeMult, shared),
		ast.NewCompareFormula(ast.Subset, r, shared))

	annotated := ast.Annotate(formula)
	assert.True(t, annotated.Shared(shared))

	value, err := Evaluate(formula, inst, godel)
	require.NoError(t, err)
	assert.True(t, value)
}

func TestEnvironmentPolarity(t *testing.T) {
	env := EmptyEnv()
	assert.Equal(t, PolarityAll, env.Polarity())

	env.FlipPolarity()
	assert.Equal(t, PolaritySome, env.Polarity())

	env.FlipPolarity()
	assert.Equal(t, PolarityAll, env.Polarity())
}
