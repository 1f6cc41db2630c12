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
package matrix

import (
	"testing"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func godel() *circuit.Factory {
	return circuit.NewFactory(circuit.Config{Domain: circuit.Fuzzy, Tnorm: circuit.Godel})
}

func integer() *circuit.Factory {
	return circuit.NewFactory(circuit.Config{Domain: circuit.Integer})
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

// constMatrix builds a matrix of constants from a sparse index -> value map.
func constMatrix(f *circuit.Factory, dims Dimensions, cells map[int]string) *Matrix {
	m := New(dims, f)
	for i, v := range cells {
		m.Set(i, f.Constant(dec(v)))
	}

	return m
}

func cellValue(t *testing.T, m *Matrix, index int) decimal.Decimal {
	c, ok := m.Get(index).(*circuit.NumConst)
	require.True(t, ok, "cell %d is not constant", index)

	return c.Value()
}

func TestPlusIdentity(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(3, 1), map[int]string{0: "0.5", 2: "0.2"})
	empty := New(Square(3, 1), f)

	sum := a.Plus(empty)
	assert.Equal(t, 2, sum.Density())
	assert.True(t, cellValue(t, sum, 0).Equal(dec("0.5")))
	assert.True(t, cellValue(t, sum, 2).Equal(dec("0.2")))
}

func TestUnionIdentity(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(3, 1), map[int]string{0: "0.5", 2: "0.2"})
	empty := New(Square(3, 1), f)

	union := a.Union(empty)
	assert.Equal(t, 2, union.Density())
	assert.True(t, cellValue(t, union, 0).Equal(dec("0.5")))
}

func TestTransposeInvolution(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(3, 2), map[int]string{1: "0.3", 5: "0.4", 6: "0.9"})

	back := a.Transpose().Transpose()
	assert.Equal(t, a.Density(), back.Density())

	for i, v := range a.All() {
		assert.Same(t, v, back.Get(i), "cell %d", i)
	}
}

func TestBoundedAddition(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.7"})
	b := constMatrix(f, Square(2, 1), map[int]string{0: "0.6"})

	// 0.7 + 0.6 saturates at 1 in the fuzzy domain.
	sum := a.Plus(b)
	assert.Same(t, circuit.Num(circuit.One), sum.Get(0))
}

func TestIntersectionUnion(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.7", 1: "0.2"})
	b := constMatrix(f, Square(2, 1), map[int]string{0: "0.4"})

	meet := a.Intersection(b)
	assert.Equal(t, 1, meet.Density())
	assert.True(t, cellValue(t, meet, 0).Equal(dec("0.4")))

	join := a.Union(b)
	assert.True(t, cellValue(t, join, 0).Equal(dec("0.7")))
	assert.True(t, cellValue(t, join, 1).Equal(dec("0.2")))
}

func TestDifference(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.7"})
	b := constMatrix(f, Square(2, 1), map[int]string{0: "0.4"})

	// 0.7 - min(0.7, 0.4) = 0.3 under Godel.
	diff := a.Difference(b)
	assert.True(t, cellValue(t, diff, 0).Equal(dec("0.3")))
}

func TestCrossProduct(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.5"})
	b := constMatrix(f, Square(2, 1), map[int]string{1: "0.3"})

	cross := a.Cross(b)
	assert.Equal(t, 4, cross.Dimensions().Capacity())
	// Fuzzy cross combines by tnorm: min(0.5, 0.3) at (0,1).
	assert.True(t, cellValue(t, cross, 1).Equal(dec("0.3")))
}

func TestDotComposition(t *testing.T) {
	f := godel()
	// Sanchez-style diagnosis: symptoms {Temp, Cough, Hdche} against four
	// diagnoses; scores are max-min compositions.
	symptoms := constMatrix(f, Rectangular([]int{3}), map[int]string{0: "0.8", 1: "0.6", 2: "0.4"})
	expert := constMatrix(f, Rectangular([]int{3, 4}), map[int]string{
		// Temp row
		0: "0.9", 1: "0.3", 2: "0.2", 3: "0.1",
		// Cough row
		4: "0.7", 5: "0.5", 6: "0.1", 7: "0.2",
		// Hdche row
		8: "0.3", 9: "0.6", 10: "0.2", 11: "0.1",
	})

	scores := symptoms.Dot(expert)
	require.Equal(t, 4, scores.Dimensions().Capacity())

	// Malaria: max(min(.8,.9), min(.6,.7), min(.4,.3)) = 0.8.
	assert.True(t, cellValue(t, scores, 0).Equal(dec("0.8")))
	// Typhoid: max(.3, .5, .4) = 0.5.
	assert.True(t, cellValue(t, scores, 1).Equal(dec("0.5")))
	// The remaining diagnoses stay strictly below Malaria.
	assert.True(t, cellValue(t, scores, 2).LessThan(dec("0.8")))
	assert.True(t, cellValue(t, scores, 3).LessThan(dec("0.8")))
}

func TestClosure(t *testing.T) {
	f := godel()
	// a->b with 0.3 and b->c with 0.4 yields a->c with 0.3.
	a := constMatrix(f, Square(3, 2), map[int]string{1: "0.3", 5: "0.4"})

	closure := a.Closure()
	assert.True(t, cellValue(t, closure, 1).Equal(dec("0.3")))
	assert.True(t, cellValue(t, closure, 5).Equal(dec("0.4")))
	assert.True(t, cellValue(t, closure, 2).Equal(dec("0.3")))
}

func TestClosureMonotone(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(4, 2), map[int]string{1: "0.3", 6: "0.4", 11: "0.2"})

	closure := a.Closure()
	for i := range a.All() {
		assert.NotSame(t, circuit.Num(circuit.Zero), closure.Get(i), "support must be preserved at %d", i)
	}
}

func TestReflexiveClosureContainsIdentity(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(3, 2), map[int]string{1: "0.3"})

	var fpEq []circuit.Bool

	closure := a.ReflexiveClosure(&fpEq)

	for i := 0; i < 3; i++ {
		diagonal := closure.Get(i*3 + i)
		assert.NotEqual(t, circuit.Zero, diagonal, "diagonal %d", i)
	}
}

func TestCardinality(t *testing.T) {
	// Fuzzy sum mode: 0.5 + 0.2 = 0.7.
	f := godel()
	r := constMatrix(f, Square(3, 1), map[int]string{0: "0.5", 1: "0.2"})
	assert.True(t, cellValue(t, r.Cardinality(), 0).Equal(dec("0.7")))

	// Integer count mode: two tuples regardless of weight.
	fi := integer()
	ri := constMatrix(fi, Square(3, 1), map[int]string{0: "3", 1: "2"})
	assert.True(t, cellValue(t, ri.Cardinality(), 0).Equal(dec("2")))
}

func TestAlphaCut(t *testing.T) {
	f := godel()
	r := constMatrix(f, Square(3, 1), map[int]string{0: "0.5", 1: "0.2"})

	cut := r.AlphaCut(f.Constant(dec("0.3")))
	assert.Equal(t, 1, cut.Density())
	assert.Same(t, circuit.Num(circuit.One), cut.Get(0))
}

func TestMultiplicities(t *testing.T) {
	f := godel()
	empty := New(Square(3, 1), f)
	one := constMatrix(f, Square(3, 1), map[int]string{1: "0.4"})
	two := constMatrix(f, Square(3, 1), map[int]string{0: "0.5", 1: "0.2"})

	assert.Same(t, circuit.False, empty.Some())
	assert.Same(t, circuit.True, empty.None())
	assert.Same(t, circuit.True, one.Some())
	assert.Same(t, circuit.True, one.One())
	assert.Same(t, circuit.True, one.Lone())
	assert.Same(t, circuit.False, two.One())
	assert.Same(t, circuit.False, two.None())
}

func TestComparisons(t *testing.T) {
	f := godel()
	small := constMatrix(f, Square(2, 1), map[int]string{0: "0.2"})
	large := constMatrix(f, Square(2, 1), map[int]string{0: "0.5"})

	assert.Same(t, circuit.True, small.Subset(large))
	assert.Same(t, circuit.False, large.Subset(small))
	assert.Same(t, circuit.True, small.Lt(large))
	assert.Same(t, circuit.True, small.Lte(large))
	assert.Same(t, circuit.False, small.Gt(large))
	assert.Same(t, circuit.True, small.Eq(small.Clone()))
	assert.Same(t, circuit.False, small.Eq(large))
}

func TestOverride(t *testing.T) {
	f := godel()
	// Row 0 of other is zero, row 1 is not.
	a := constMatrix(f, Square(2, 2), map[int]string{0: "0.5", 2: "0.6", 3: "0.7"})
	b := constMatrix(f, Square(2, 2), map[int]string{2: "0.9"})

	result := a.Override(b)
	// Row 0 keeps a's cells.
	assert.True(t, cellValue(t, result, 0).Equal(dec("0.5")))
	// Row 1 is replaced wholesale by b's row.
	assert.True(t, cellValue(t, result, 2).Equal(dec("0.9")))
	assert.Same(t, circuit.Num(circuit.Zero), result.Get(3))
}

func TestDivideByAbsentCell(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.5"})
	empty := New(Square(2, 1), f)

	assert.Panics(t, func() { a.Divide(empty) })
	assert.Panics(t, func() { a.Modulo(empty) })
}

func TestFactoryMixing(t *testing.T) {
	a := constMatrix(godel(), Square(2, 1), map[int]string{0: "0.5"})
	b := constMatrix(godel(), Square(2, 1), map[int]string{0: "0.5"})

	assert.Panics(t, func() { a.Plus(b) })
}

func TestDomainRangeRestriction(t *testing.T) {
	f := godel()
	r := constMatrix(f, Square(2, 2), map[int]string{0: "0.5", 3: "0.6"})
	s := constMatrix(f, Square(2, 1), map[int]string{0: "1"})

	domain := r.Domain(s)
	assert.True(t, cellValue(t, domain, 0).Equal(dec("0.5")))
	assert.Same(t, circuit.Num(circuit.Zero), domain.Get(3))

	rng := r.Range(s)
	assert.True(t, cellValue(t, rng, 0).Equal(dec("0.5")))
	assert.Same(t, circuit.Num(circuit.Zero), rng.Get(3))
}

func TestChoice(t *testing.T) {
	f := godel()
	a := constMatrix(f, Square(2, 1), map[int]string{0: "0.5"})
	b := constMatrix(f, Square(2, 1), map[int]string{1: "0.3"})

	assert.True(t, cellValue(t, a.Choice(circuit.True, b), 0).Equal(dec("0.5")))
	assert.True(t, cellValue(t, a.Choice(circuit.False, b), 1).Equal(dec("0.3")))
}
