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
package circuit

import (
	"testing"

	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fuzzy(t Tnorm) *Factory {
	return NewFactory(Config{Domain: Fuzzy, Tnorm: t})
}

func integer() *Factory {
	return NewFactory(Config{Domain: Integer})
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestConstantInterning(t *testing.T) {
	f := fuzzy(Godel)

	assert.Same(t, Zero, Num(f.Constant(decimal.Zero)))
	assert.Same(t, One, Num(f.Constant(dec("1.0"))))
	// Equal values intern to the same node.
	assert.Same(t, f.Constant(dec("0.5")), f.Constant(dec("0.50")))
	// Shared constants cross factories.
	assert.Same(t, f.Constant(decimal.Zero), fuzzy(Product).Constant(decimal.Zero))
}

func TestIdentityElimination(t *testing.T) {
	f := fuzzy(Godel)
	x := f.FreshVariable()

	assert.Same(t, Num(x), f.Plus(x, Zero))
	assert.Same(t, Num(x), f.Plus(Zero, x))
	assert.Same(t, Num(x), f.Times(x, One))
	assert.Same(t, Num(x), f.Minus(x, Zero))
	assert.Same(t, Num(x), f.Divide(x, One))
	assert.Same(t, Zero, f.Times(x, Zero))
	assert.Same(t, Num(x), f.Min(x, x))
	assert.Same(t, Num(x), f.Max(x, x))
}

func TestIteCollapse(t *testing.T) {
	f := fuzzy(Godel)
	x := f.FreshVariable()
	y := f.FreshVariable()
	c := f.Lt(x, y)

	assert.Same(t, Num(x), f.Ite(True, x, y))
	assert.Same(t, Num(y), f.Ite(False, x, y))
	assert.Same(t, Num(x), f.Ite(c, x, x))
}

func TestNegationFusion(t *testing.T) {
	f := fuzzy(Godel)
	x := f.FreshVariable()

	assert.Same(t, Num(x), f.Negate(f.Negate(x)))

	abs := f.Abs(x)
	assert.Same(t, abs, f.Abs(abs))

	sgn := f.Signum(x)
	assert.Same(t, sgn, f.Signum(sgn))

	eq := f.Eq(x, Zero)
	assert.Same(t, eq, f.Not(f.Not(eq)))
}

func TestConstantFolding(t *testing.T) {
	f := fuzzy(Godel)

	assert.True(t, constEq(f.Plus(f.Constant(dec("0.25")), f.Constant(dec("0.5"))), "0.75"))
	assert.True(t, constEq(f.Minus(f.Constant(dec("0.5")), f.Constant(dec("0.2"))), "0.3"))
	assert.True(t, constEq(f.Times(f.Constant(dec("0.5")), f.Constant(dec("0.5"))), "0.25"))
	assert.True(t, constEq(f.Divide(f.Constant(dec("0.5")), f.Constant(dec("2"))), "0.25"))

	assert.Same(t, True, Bool(f.Lt(f.Constant(dec("0.2")), f.Constant(dec("0.3")))))
	assert.Same(t, False, Bool(f.Gt(f.Constant(dec("0.2")), f.Constant(dec("0.3")))))
	assert.Same(t, True, Bool(f.Eq(f.Constant(dec("0.2")), f.Constant(dec("0.2")))))
}

func TestIntegerFolding(t *testing.T) {
	f := integer()

	assert.True(t, constEq(f.Divide(f.IntConstant(7), f.IntConstant(2)), "3"))
	assert.True(t, constEq(f.Modulo(f.IntConstant(7), f.IntConstant(2)), "1"))
	assert.True(t, constEq(f.Negate(f.IntConstant(3)), "-3"))
	assert.True(t, constEq(f.Abs(f.IntConstant(-3)), "3"))
	assert.True(t, constEq(f.Signum(f.IntConstant(-3)), "-1"))
}

func TestConstantDivisionByZero(t *testing.T) {
	f := integer()

	defer func() {
		fault, ok := recover().(*faults.Translation)
		require.True(t, ok)
		assert.Equal(t, faults.Arithmetic, fault.Kind)
	}()

	f.Divide(f.IntConstant(3), Zero)
}

func TestTnormTables(t *testing.T) {
	a, b := "0.5", "0.6"

	tests := []struct {
		tnorm   Tnorm
		tnormed string
		conorm  string
	}{
		{Godel, "0.5", "0.6"},
		{Lukasiewicz, "0.1", "1"},
		{Product, "0.3", "0.8"},
		{Einstein, "0.25", "0.8461538461538462"},
		{AddMin, "0.5", "1"},
		{MaxProduct, "0.3", "0.6"},
	}

	for _, tt := range tests {
		t.Run(tt.tnorm.String(), func(t *testing.T) {
			f := fuzzy(tt.tnorm)
			va, vb := f.Constant(dec(a)), f.Constant(dec(b))

			assert.True(t, constEq(f.Tnorm(va, vb), tt.tnormed), "tnorm")
			assert.True(t, constEq(f.Tconorm(va, vb), tt.conorm), "tconorm")
		})
	}
}

func TestDrasticTnorm(t *testing.T) {
	f := fuzzy(Drastic)

	half := f.Constant(dec("0.5"))
	assert.Same(t, Num(half), f.Tnorm(half, One))
	assert.True(t, constEq(f.Tnorm(half, f.Constant(dec("0.6"))), "0"))
	assert.Same(t, Num(half), f.Tconorm(half, Zero))
	assert.True(t, constEq(f.Tconorm(half, f.Constant(dec("0.6"))), "1"))
}

func TestZeroGuard(t *testing.T) {
	f := integer()
	x := f.FreshVariable()

	// Zero short-circuits the guarded minimum and maximum.
	assert.Same(t, Zero, f.MinZero(Zero, x))
	assert.Same(t, Num(x), f.MaxZero(Zero, x))
	assert.Same(t, Num(x), f.MaxZero(x, Zero))
}

func TestBooleanConnectives(t *testing.T) {
	f := fuzzy(Godel)
	x := f.FreshVariable()
	b := f.Neq(x, Zero)

	assert.Same(t, False, f.And(b, False))
	assert.Same(t, b, f.And(b, True))
	assert.Same(t, True, f.Or(b, True))
	assert.Same(t, b, f.Or(b, False))
	assert.Same(t, True, f.Implies(False, b))
}

func TestLiftDrop(t *testing.T) {
	f := fuzzy(Godel)

	assert.Same(t, Zero, f.Lift(False))
	assert.Same(t, True, f.Drop(One))
	assert.Same(t, False, f.Drop(Zero))
	assert.Same(t, One, f.ToBinary(True))
	assert.Same(t, Zero, f.ToBinary(False))

	v := f.FreshVariable()
	bv := f.ToBool(v)
	assert.Len(t, v.Allowed(), 2)
	assert.Equal(t, v.Label(), bv.Label())
	assert.Same(t, Num(v), f.DropNum(bv))
}

func TestPrimaryVariableAllocation(t *testing.T) {
	f := fuzzy(Godel)
	f.AddVariables(3)

	assert.Equal(t, 3, f.NumVariables())
	assert.Equal(t, 3, f.MaxVariable())

	vars := f.Variables()
	require.Len(t, vars, 3)

	for i, v := range vars {
		assert.Equal(t, i, v.Label())
		assert.Same(t, v, f.Variable(i))
	}
}

func TestDivisionDetector(t *testing.T) {
	f := fuzzy(Godel)
	x := f.FreshVariable()
	y := f.FreshVariable()

	root := f.Eq(f.Divide(x, y), f.Constant(dec("0.5")))
	detector := DetectDivision(f, root)

	assert.True(t, detector.HasDivision())
	assert.NotSame(t, False, detector.DivisionByZero())

	// No division, no guard.
	clean := DetectDivision(f, f.Eq(x, y))
	assert.False(t, clean.HasDivision())
	assert.Same(t, False, clean.DivisionByZero())
}

// constEq checks a value folded to the given constant.
func constEq(v Num, expected string) bool {
	c, ok := v.(*NumConst)
	return ok && c.Value().Equal(dec(expected))
}
