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
	"sort"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
)

// bound clamps a scalar to at most one in the fuzzy domain, where every
// weight lives in [0, 1].  Integer values pass through.
func (m *Matrix) bound(v circuit.Num) circuit.Num {
	if m.factory.Domain() == circuit.Fuzzy {
		f := m.factory
		return f.Ite(f.Gte(v, circuit.One), circuit.One, v)
	}

	return v
}

// timesFn selects the multiplication best exploiting the boolean invariant of
// either operand: and for boolean cells, a guarded choice for mixed cells,
// and plain multiplication otherwise.
func (m *Matrix) timesFn(isB1, isB2 bool) func(a, b circuit.Num) circuit.Num {
	f := m.factory

	switch {
	case isB1 && isB2:
		return func(a, b circuit.Num) circuit.Num {
			return f.ToBinary(f.And(m.toBool(a), m.toBool(b)))
		}
	case isB1 || isB2:
		return func(a, b circuit.Num) circuit.Num {
			if isB1 {
				return f.Guard(m.toBool(a), toNum(b))
			}

			return f.Guard(m.toBool(b), toNum(a))
		}
	default:
		return func(a, b circuit.Num) circuit.Num {
			return f.Times(toNum(a), toNum(b))
		}
	}
}

// Plus returns the cellwise bounded addition of this and the other matrix.
func (m *Matrix) Plus(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	ret := New(m.dims, f)

	for i, v0 := range m.All() {
		if v1 := other.cells.get(i); v1 != nil {
			ret.fastSet(i, m.bound(f.Plus(toNum(v0), toNum(v1))))
		} else {
			ret.fastSet(i, toNum(v0))
		}
	}

	for i, v1 := range other.All() {
		if m.cells.get(i) == nil {
			ret.fastSet(i, toNum(v1))
		}
	}

	return ret
}

// Minus returns the cellwise bounded subtraction of this and the other
// matrix: each cell is max(0, a-b), with negation propagated where this
// matrix is absent.
func (m *Matrix) Minus(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	ret := New(m.dims, f)

	for i, v0 := range m.All() {
		if v1 := other.cells.get(i); v1 != nil {
			r := f.Minus(toNum(v0), toNum(v1))
			r = f.Ite(f.Lt(r, circuit.Zero), circuit.Zero, r)
			ret.fastSet(i, r)
		} else {
			ret.fastSet(i, toNum(v0))
		}
	}

	for i, v1 := range other.All() {
		if m.cells.get(i) == nil {
			ret.fastSet(i, f.Negate(toNum(v1)))
		}
	}

	return ret
}

// Difference returns the relational difference of this and the other matrix:
// wherever this matrix is non-zero, its value less the conjunction of both.
func (m *Matrix) Difference(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	isB := m.binary && other.binary

	ret := New(m.dims, f)
	ret.binary = isB

	for i, v0 := range m.All() {
		v1 := other.cells.get(i)
		if v1 == nil {
			ret.fastSet(i, toNum(v0))
			continue
		}

		if isB {
			ret.fastSet(i, f.ToBinary(f.And(m.toBool(v0), f.Not(m.toBool(v1)))))
		} else {
			n0, n1 := toNum(v0), toNum(v1)
			ret.fastSet(i, f.Guard(f.Neq(n0, circuit.Zero), f.Minus(n0, f.Tnorm(n0, n1))))
		}
	}

	return ret
}

// Product returns the Hadamard product of this and the other matrix.
func (m *Matrix) Product(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	isB := m.binary && other.binary
	times := m.timesFn(m.binary, other.binary)

	ret := New(m.dims, m.factory)
	ret.binary = isB

	for i, v0 := range m.All() {
		if v1 := other.cells.get(i); v1 != nil {
			ret.fastSet(i, times(v0, v1))
		}
	}

	return ret
}

// Scale returns this matrix with every element multiplied by the given
// scalar.
func (m *Matrix) Scale(scalar *circuit.NumConst) *Matrix {
	if scalar == circuit.One {
		return m.Clone()
	}

	ret := New(m.dims, m.factory)
	if scalar == circuit.Zero {
		return ret
	}

	for i, v := range m.All() {
		ret.fastSet(i, m.factory.Times(toNum(v), scalar))
	}

	return ret
}

// Divide returns the Hadamard bounded division of this and the other matrix.
// A structurally absent denominator cell is a constant zero, which is
// rejected here; a symbolic zero denominator is excluded by the circuit-level
// division guard.
func (m *Matrix) Divide(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	ret := New(m.dims, f)

	for i, v0 := range m.All() {
		v1 := other.cells.get(i)
		if v1 == nil {
			panic(faults.NewTranslation(faults.Arithmetic, "division by zero at index %d", i))
		}

		ret.fastSet(i, m.bound(f.Divide(toNum(v0), toNum(v1))))
	}

	return ret
}

// Modulo returns the cellwise remainder of this and the other matrix.
func (m *Matrix) Modulo(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	ret := New(m.dims, f)

	for i, v0 := range m.All() {
		v1 := other.cells.get(i)
		if v1 == nil {
			panic(faults.NewTranslation(faults.Arithmetic, "modulo by zero at index %d", i))
		}

		ret.fastSet(i, f.Modulo(toNum(v0), toNum(v1)))
	}

	return ret
}

// Intersection returns the cellwise conjunction (tnorm) of this and the other
// matrix.
func (m *Matrix) Intersection(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	isB := m.binary && other.binary

	ret := New(m.dims, f)
	ret.binary = isB

	for i, v0 := range m.All() {
		if v1 := other.cells.get(i); v1 != nil {
			if isB {
				ret.fastSet(i, f.ToBinary(f.And(m.toBool(v0), m.toBool(v1))))
			} else {
				ret.fastSet(i, f.Tnorm(toNum(v0), toNum(v1)))
			}
		}
	}

	return ret
}

// Union returns the cellwise disjunction (tconorm) of this and the other
// matrix.
func (m *Matrix) Union(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	isB := m.binary && other.binary

	ret := New(m.dims, f)
	ret.binary = isB

	for i, v0 := range m.All() {
		v1 := other.cells.get(i)

		switch {
		case v1 == nil && isB:
			ret.fastSet(i, v0)
		case v1 == nil:
			ret.fastSet(i, toNum(v0))
		case isB:
			ret.fastSet(i, f.ToBinary(f.Or(m.toBool(v0), m.toBool(v1))))
		default:
			ret.fastSet(i, f.Tconorm(toNum(v0), toNum(v1)))
		}
	}

	for i, v1 := range other.All() {
		if m.cells.get(i) == nil {
			if isB {
				ret.fastSet(i, v1)
			} else {
				ret.fastSet(i, toNum(v1))
			}
		}
	}

	return ret
}

// LeftIntersection returns the cellwise maximum of this and the other matrix,
// gated on the non-zero support of this (left) operand.
func (m *Matrix) LeftIntersection(other *Matrix) *Matrix {
	return m.supportIntersection(other, m)
}

// RightIntersection returns the cellwise maximum of this and the other
// matrix, gated on the non-zero support of the other (right) operand.
func (m *Matrix) RightIntersection(other *Matrix) *Matrix {
	return m.supportIntersection(other, other)
}

// supportIntersection iterates the support of the gating matrix, keeping the
// maximum of the two cells wherever both are non-zero.
func (m *Matrix) supportIntersection(other, gate *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	ret := New(m.dims, f)

	opposite := other
	if gate == other {
		opposite = m
	}

	for i, v0 := range gate.All() {
		v1 := opposite.cells.get(i)
		if v1 == nil {
			continue
		}

		n0, n1 := toNum(v0), toNum(v1)
		nonZero := f.And(f.Neq(n0, circuit.Zero), f.Neq(n1, circuit.Zero))

		if nonZero != circuit.False {
			ret.fastSet(i, f.Ite(nonZero, f.Max(n0, n1), circuit.Zero))
		}
	}

	return ret
}

// Domain restricts this matrix to the rows whose first-dimension index is in
// the non-zero support of the given vector.
func (m *Matrix) Domain(other *Matrix) *Matrix {
	checkFactory(m, other)

	if other.dims.NumDimensions() > 1 {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"domain restriction requires a vector, got dimensions %s", other.dims))
	}

	f := m.factory
	ret := New(m.dims, f)
	rowSize := m.dims.Capacity() / m.dims.Dimension(0)

	for i, occ := range other.All() {
		cond := m.occurrence(other, occ)
		for p := i * rowSize; p < (i+1)*rowSize; p++ {
			if cell := m.cells.get(p); cell != nil {
				ret.fastSet(p, f.Guard(cond, toNum(cell)))
			}
		}
	}

	return ret
}

// Range restricts this matrix to the columns whose last-dimension index is in
// the non-zero support of the given vector.
func (m *Matrix) Range(other *Matrix) *Matrix {
	checkFactory(m, other)

	if other.dims.NumDimensions() > 1 {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"range restriction requires a vector, got dimensions %s", other.dims))
	}

	f := m.factory
	ret := New(m.dims, f)
	last := m.dims.Dimension(m.dims.NumDimensions() - 1)

	for i, occ := range other.All() {
		cond := m.occurrence(other, occ)
		for p := i; p < m.dims.Capacity(); p += last {
			if cell := m.cells.get(p); cell != nil {
				ret.fastSet(p, f.Guard(cond, toNum(cell)))
			}
		}
	}

	return ret
}

// occurrence reads a cell of a restriction vector as a truth value.
func (m *Matrix) occurrence(vec *Matrix, v circuit.Num) circuit.Bool {
	if vec.binary {
		return m.toBool(v)
	}

	return m.factory.Neq(toNum(v), circuit.Zero)
}

// Cross returns the Kronecker (cross) product of this and the other matrix.
// In the fuzzy domain cells combine by tnorm, elsewhere by multiplication.
func (m *Matrix) Cross(other *Matrix) *Matrix {
	checkFactory(m, other)

	f := m.factory
	isB := m.binary && other.binary
	times := m.timesFn(m.binary, other.binary)

	ret := New(m.dims.Cross(other.dims), f)
	ret.binary = isB

	ocap := other.dims.Capacity()

	for i, v0 := range m.All() {
		base := ocap * i
		for j, v1 := range other.All() {
			var product circuit.Num
			if f.Domain() == circuit.Fuzzy {
				product = f.Tnorm(toNum(v0), toNum(v1))
			} else {
				product = times(v0, v1)
			}

			ret.fastSet(base+j, product)
		}
	}

	return ret
}

// MultiDot returns the standard matrix multiplication of this and the other
// matrix, with the factory's addition and multiplication.
func (m *Matrix) MultiDot(other *Matrix) *Matrix {
	checkFactory(m, other)

	f := m.factory
	ret := New(m.dims.Dot(other.dims), f)

	if m.cells.size() == 0 || other.cells.size() == 0 {
		return ret
	}

	times := m.timesFn(m.binary, other.binary)
	b := other.dims.Dimension(0)
	c := other.dims.Capacity() / b

	sums := make(map[int]*circuit.NumAccumulator)

	for i, v0 := range m.All() {
		rowHead := (i % b) * c
		for j, v1 := range other.Between(rowHead, rowHead+c-1) {
			product := times(v0, v1)
			if product == circuit.Zero {
				continue
			}

			k := (i/b)*c + j%c
			if sums[k] == nil {
				sums[k] = circuit.NewNumAccumulator(circuit.PLUS)
			}

			sums[k].Add(product)
		}
	}

	indices := make([]int, 0, len(sums))
	for k := range sums {
		indices = append(indices, k)
	}

	sort.Ints(indices)

	for _, k := range indices {
		ret.fastSet(k, f.Accumulate(sums[k]))
	}

	return ret
}

// Dot returns the join-meet (min-max) product of this and the other matrix.
func (m *Matrix) Dot(other *Matrix) *Matrix {
	checkFactory(m, other)

	f := m.factory
	isB := m.binary && other.binary

	ret := New(m.dims.Dot(other.dims), f)
	ret.binary = isB

	if m.cells.size() == 0 || other.cells.size() == 0 {
		return ret
	}

	var addition, multiplication func(a, b circuit.Num) circuit.Num

	if isB {
		addition = func(a, b circuit.Num) circuit.Num {
			return f.ToBinary(f.Or(m.toBool(a), m.toBool(b)))
		}
		multiplication = func(a, b circuit.Num) circuit.Num {
			return f.ToBinary(f.And(m.toBool(a), m.toBool(b)))
		}
	} else {
		addition = func(a, b circuit.Num) circuit.Num { return f.Join(toNum(a), toNum(b)) }
		multiplication = func(a, b circuit.Num) circuit.Num { return f.Meet(toNum(a), toNum(b)) }
	}

	b := other.dims.Dimension(0)
	c := other.dims.Capacity() / b

	for i, v0 := range m.All() {
		rowHead := (i % b) * c
		for j, v1 := range other.Between(rowHead, rowHead+c-1) {
			product := multiplication(v0, v1)
			if product == circuit.Zero {
				continue
			}

			k := (i/b)*c + j%c
			if existing := ret.cells.get(k); existing != nil {
				ret.fastSet(k, addition(existing, product))
			} else {
				ret.fastSet(k, product)
			}
		}
	}

	return ret
}

// Transpose returns this matrix with its last two dimensions permuted.
func (m *Matrix) Transpose() *Matrix {
	if m.dims.NumDimensions() != 2 {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"transpose requires two dimensions, got %s", m.dims))
	}

	ret := New(m.dims.Transpose(), m.factory)
	ret.binary = m.binary

	rows, cols := m.dims.Dimension(0), m.dims.Dimension(1)
	for i, v := range m.All() {
		ret.fastSet((i%cols)*rows+(i/cols), v)
	}

	return ret
}

// Drop perceives this matrix from the boolean point of view in a numeric
// context.
func (m *Matrix) Drop() *Matrix {
	if m.binary {
		return m.Clone()
	}

	f := m.factory
	ret := NewBinary(m.dims, f)

	for i, v := range m.All() {
		ret.fastSet(i, f.ToBinary(f.Drop(v)))
	}

	return ret
}

// AlphaCut returns the boolean matrix of cells whose membership degree is at
// least alpha.
func (m *Matrix) AlphaCut(alpha *circuit.NumConst) *Matrix {
	if m.binary {
		return m.Clone()
	}

	f := m.factory
	ret := NewBinary(m.dims, f)

	for i, v := range m.All() {
		if cut := f.Gte(toNum(v), alpha); cut != circuit.False {
			ret.fastSet(i, f.ToBinary(cut))
		}
	}

	return ret
}

// Choice returns this matrix when the condition holds and the other matrix
// otherwise, cellwise.
func (m *Matrix) Choice(condition circuit.Bool, other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	if condition == circuit.True {
		return m.Clone()
	} else if condition == circuit.False {
		return other.Clone()
	}

	f := m.factory
	ret := New(m.dims, f)
	ret.binary = m.binary && other.binary

	for i, v0 := range m.All() {
		if v1 := other.cells.get(i); v1 != nil {
			ret.fastSet(i, f.Ite(condition, toNum(v0), toNum(v1)))
		} else {
			ret.fastSet(i, f.Guard(condition, toNum(v0)))
		}
	}

	for i, v1 := range other.All() {
		if m.cells.get(i) == nil {
			ret.fastSet(i, f.Guard(f.Not(condition), toNum(v1)))
		}
	}

	return ret
}

// Project returns this matrix projected onto the given columns.  Non-constant
// columns iterate over the universe under a guard formula.
func (m *Matrix) Project(columns []circuit.Num) *Matrix {
	if !m.dims.IsSquare() {
		panic(faults.NewTranslation(faults.InvalidBounds, "projection requires square dimensions"))
	}

	rdnum := len(columns)
	if rdnum < 1 {
		panic(faults.NewTranslation(faults.InvalidBounds, "projection requires at least one column"))
	}

	f := m.factory
	rdims := Square(m.dims.Dimension(0), rdnum)
	ret := New(rdims, f)

	tdnum := m.dims.NumDimensions()
	tvector := make([]int, tdnum)
	ivector := make([]int, rdnum)
	rvector := make([]int, rdnum)
	isConst := make([]bool, rdnum)

	nVarCols := 1

	// Pin down constant columns to avoid iterating them.
	for i, col := range columns {
		if c, ok := col.(*circuit.NumConst); ok {
			value := int(c.Value().IntPart())
			if value < 0 || value >= tdnum {
				return ret
			}

			isConst[i] = true
			ivector[i] = value
		} else {
			nVarCols *= tdnum
		}
	}

	for i := 0; i < nVarCols; i++ {
		colVal := circuit.True

		for j := 0; j < rdnum; j++ {
			// A non-constant column must be able to take on value ivector[j].
			if !isConst[j] {
				colVal = f.And(colVal, f.Eq(columns[j], f.IntConstant(int64(ivector[j]))))
			}
		}

		if colVal != circuit.False {
			for e, v := range m.All() {
				m.dims.Vector(e, tvector)
				for j := 0; j < rdnum; j++ {
					rvector[j] = tvector[ivector[j]]
				}

				rindex := rdims.Index(rvector)
				cond := f.And(m.toBool(v), colVal)
				ret.fastSet(rindex, f.Ite(cond, toNum(v), ret.fastGet(rindex)))
			}
		}
		// Advance the non-constant columns.
		for j := rdnum - 1; j >= 0; j-- {
			if !isConst[j] {
				if ivector[j]+1 == tdnum {
					ivector[j] = 0
				} else {
					ivector[j]++
					break
				}
			}
		}
	}

	return ret
}

// Override returns this matrix overridden by the other: for each row, if the
// other's row is entirely zero this matrix's row is kept, and otherwise the
// other's row wins.
func (m *Matrix) Override(other *Matrix) *Matrix {
	checkFactory(m, other)
	checkDimensions(m, other)

	if other.cells.size() == 0 {
		return m.Clone()
	}

	f := m.factory
	ret := New(m.dims, f)
	ret.binary = m.binary && other.binary

	for i, v1 := range other.All() {
		ret.fastSet(i, v1)
	}

	rowLength := m.dims.Capacity() / m.dims.Dimension(0)
	row := -1

	var rowZero circuit.Bool

	for i, v0 := range m.All() {
		if r := i / rowLength; r != row {
			row = r
			// The other's row is zero when every cell within it is zero.
			rowZero = circuit.True
			for _, v1 := range other.Between(row*rowLength, (row+1)*rowLength-1) {
				rowZero = f.And(rowZero, f.Eq(toNum(v1), circuit.Zero))
			}
		}

		if rowZero == circuit.True {
			ret.fastSet(i, toNum(v0))
		} else if rowZero != circuit.False {
			ret.fastSet(i, f.Ite(rowZero, toNum(v0), toNum(ret.fastGet(i))))
		}
	}

	return ret
}

// KhatriRao returns the column-wise Kronecker product of this and the other
// matrix.
func (m *Matrix) KhatriRao(other *Matrix) *Matrix {
	checkFactory(m, other)

	if !m.dims.IsSquare() || !other.dims.IsSquare() || m.dims.Dimension(0) != other.dims.Dimension(0) {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"khatri-rao requires square matrices over the same universe"))
	}

	u := m.dims.Dimension(0)
	mm := m.dims.NumDimensions() - 1
	n := other.dims.NumDimensions() - 1

	f := m.factory
	ret := New(Square(u, mm+n+1), f)

	pow := 1
	for i := 0; i < n; i++ {
		pow *= u
	}

	for i0, v0 := range m.All() {
		a := i0 % u
		for i1, v1 := range other.All() {
			// Cells must share their final column.
			if a == i1%u {
				ret.Set(i0*pow+i1-a*pow, f.Times(toNum(v0), toNum(v1)))
			}
		}
	}

	return ret
}

// Negate returns this matrix with every element negated.
func (m *Matrix) Negate() *Matrix {
	ret := New(m.dims, m.factory)
	for i, v := range m.All() {
		ret.fastSet(i, m.factory.Negate(toNum(v)))
	}

	return ret
}

// Abs returns this matrix with the absolute value of every element.
func (m *Matrix) Abs() *Matrix {
	ret := New(m.dims, m.factory)
	for i, v := range m.All() {
		ret.fastSet(i, m.factory.Abs(toNum(v)))
	}

	return ret
}

// Signum returns this matrix with the sign of every element.
func (m *Matrix) Signum() *Matrix {
	ret := New(m.dims, m.factory)
	for i, v := range m.All() {
		ret.fastSet(i, m.factory.Signum(toNum(v)))
	}

	return ret
}
