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
package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedNodeDetection(t *testing.T) {
	r := NewRelation("R", 1)
	shared := NewBinaryExpr(Union, r, Univ)

	formula := And(
		NewMultFormula(SomeMult, shared),
		NewCompareFormula(Subset, r, shared))

	a := Annotate(formula)

	assert.True(t, a.Shared(shared))
	// The relation leaf occurs three times.
	assert.True(t, a.Shared(r))
	assert.False(t, a.Shared(formula))
}

func TestFreeVariables(t *testing.T) {
	r := NewRelation("R", 2)
	x := NewVariable("x")
	y := NewVariable("y")

	join := NewBinaryExpr(Join, x, r)
	body := NewCompareFormula(Subset, y, join)
	inner := NewQuantFormula(Exists, []*Decl{NewDecl(y, Univ)}, body)
	outer := NewQuantFormula(All, []*Decl{NewDecl(x, Univ)}, inner)

	a := Annotate(outer)

	// join has x free; body has both x and y.
	assert.Equal(t, []*Variable{x}, a.FreeVars(join))
	require.Len(t, a.FreeVars(body), 2)
	// The inner quantifier binds y, leaving x.
	assert.Equal(t, []*Variable{x}, a.FreeVars(inner))
	// The outer quantifier closes the formula.
	assert.Empty(t, a.FreeVars(outer))
}

func TestArity(t *testing.T) {
	r := NewRelation("R", 2)
	s := NewRelation("S", 1)

	assert.Equal(t, 2, r.Arity())
	assert.Equal(t, 1, NewBinaryExpr(Join, s, r).Arity())
	assert.Equal(t, 3, NewBinaryExpr(Product, s, r).Arity())
	assert.Equal(t, 2, NewUnaryExpr(Transpose, r).Arity())
	assert.Equal(t, 2, NewUnaryExpr(Closure, r).Arity())
	assert.Equal(t, 1, NewUnaryExpr(Cardinality, s).Arity())
	assert.Equal(t, 2, Iden.Arity())
	assert.Equal(t, 1, Univ.Arity())

	x := NewVariable("x")
	y := NewVariable("y")
	comp := NewComprehension(
		[]*Decl{NewDecl(x, Univ), NewDecl(y, Univ)}, TrueFormula)
	assert.Equal(t, 2, comp.Arity())
}
