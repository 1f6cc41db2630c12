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
package problem

import (
	"testing"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
; a small fuzzy problem
(universe a b c)
(relation R 2 quantitative
  (lower (a b 0.3))
  (upper (b c 0.4) (a c)))
(relation S 1
  (upper (a) (b)))
(option solver Yices)
(option domain FUZZY)
(option tnorm Lukasiewicz)
(formula (and (some R) (in S (+ S S))))
`

func TestParseSample(t *testing.T) {
	p, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Universe.Size())
	assert.Equal(t, smt.Yices, p.Options.Solver)
	assert.Equal(t, circuit.Fuzzy, p.Options.Domain)
	assert.Equal(t, circuit.Lukasiewicz, p.Options.Tnorm)

	relations := p.Bounds.Relations()
	require.Len(t, relations, 2)

	r := relations[0]
	assert.Equal(t, "R", r.Name())
	assert.Equal(t, 2, r.Arity())
	assert.True(t, r.IsQuantitative())

	lower, upper := p.Bounds.Lower(r), p.Bounds.Upper(r)
	assert.Equal(t, 1, lower.Size())
	// Lower tuples are implied into the upper bound.
	assert.Equal(t, 3, upper.Size())

	index, err := lower.IndexOf("a", "b")
	require.NoError(t, err)
	assert.True(t, lower.Weight(index).Equal(decimal.NewFromFloat(0.3)))

	index, err = upper.IndexOf("b", "c")
	require.NoError(t, err)
	assert.True(t, upper.Weight(index).Equal(decimal.NewFromFloat(0.4)))

	s := relations[1]
	assert.False(t, s.IsQuantitative())
	assert.Equal(t, 0, p.Bounds.Lower(s).Size())

	_, ok := p.Formula.(*ast.NaryFormula)
	assert.True(t, ok)
}

func TestParseQuantifiedFormula(t *testing.T) {
	p, err := Parse(`
(universe a b)
(relation R 2 (upper (a b) (b a)))
(formula (all ((x univ)) (some (. x R))))
`)
	require.NoError(t, err)

	quant, ok := p.Formula.(*ast.QuantFormula)
	require.True(t, ok)
	assert.Equal(t, ast.All, quant.Quantifier())
	require.Len(t, quant.Decls(), 1)
	assert.Equal(t, "x", quant.Decls()[0].Variable().Name())
}

func TestParseComprehension(t *testing.T) {
	p, err := Parse(`
(universe a b)
(relation R 1 (upper (a)))
(formula (= R (set ((x univ)) (in x R))))
`)
	require.NoError(t, err)

	cmp, ok := p.Formula.(*ast.CompareFormula)
	require.True(t, ok)

	_, ok = cmp.Right().(*ast.Comprehension)
	assert.True(t, ok)
}

func TestParseNumericLiteral(t *testing.T) {
	p, err := Parse(`
(universe a)
(relation R 1 quantitative (upper (a)))
(formula (>= (# R) 2))
`)
	require.NoError(t, err)

	cmp, ok := p.Formula.(*ast.CompareFormula)
	require.True(t, ok)

	lit, ok := cmp.Right().(*ast.ConstInt)
	require.True(t, ok)
	assert.True(t, lit.Value().Equal(decimal.NewFromInt(2)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no universe", `(formula (some univ))`},
		{"unknown atom", `(universe a) (relation R 1 (upper (z))) (formula (some R))`},
		{"bad arity", `(universe a) (relation R x (upper (a))) (formula (some R))`},
		{"unknown option", `(universe a) (option colour blue) (formula (some univ))`},
		{"no formula", `(universe a)`},
		{"expression formula", `(universe a) (formula univ)`},
		{"unknown operator", `(universe a) (formula (frobnicate univ))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			assert.Error(t, err)
		})
	}
}
