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
)

// mergedIndices returns the union of the present indices of two matrices, in
// ascending order.  Indices present in only one matrix compare against an
// implicit zero in the other.
func mergedIndices(m, n *Matrix) []int {
	seen := make(map[int]struct{}, m.Density()+n.Density())

	for i := range m.All() {
		seen[i] = struct{}{}
	}

	for i := range n.All() {
		seen[i] = struct{}{}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}

	sort.Ints(indices)

	return indices
}

// cmpGate accumulates the cellwise comparison of two matrices under the given
// n-ary gate.
func (m *Matrix) cmpGate(gate circuit.NaryOp, op circuit.CmpOp, other *Matrix) circuit.Bool {
	f := m.factory
	acc := circuit.NewBoolAccumulator(gate)

	dominator := circuit.False
	if gate == circuit.OR {
		dominator = circuit.True
	}

	for _, i := range mergedIndices(m, other) {
		cmp := f.Cmp(op, toNum(m.fastGet(i)), toNum(other.fastGet(i)))
		if acc.Add(cmp) == dominator {
			return dominator
		}
	}

	return f.AccumulateBool(acc)
}

// compare builds the comparison of two matrices.  Equality and the weak
// orders require every cell pair to obey the operator; the strict orders
// additionally require at least one strict cell.
func (m *Matrix) compare(op circuit.CmpOp, other *Matrix) circuit.Bool {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory

	if m.cells.size() == 0 && other.cells.size() == 0 {
		return circuit.BoolConstant(op != circuit.GT && op != circuit.LT)
	}

	ret := circuit.True

	switch op {
	case circuit.GT:
		ret = m.cmpGate(circuit.AND, circuit.GTE, other)
	case circuit.LT:
		ret = m.cmpGate(circuit.AND, circuit.LTE, other)
	}

	if ret == circuit.False {
		return ret
	}

	if op == circuit.GT || op == circuit.LT {
		return f.And(ret, m.cmpGate(circuit.OR, op, other))
	}

	return m.cmpGate(circuit.AND, op, other)
}

// Eq states that this matrix equals the other, cellwise.
func (m *Matrix) Eq(other *Matrix) circuit.Bool { return m.compare(circuit.EQ, other) }

// Lt states that this matrix is strictly below the other.
func (m *Matrix) Lt(other *Matrix) circuit.Bool { return m.compare(circuit.LT, other) }

// Lte states that this matrix is cellwise at most the other.
func (m *Matrix) Lte(other *Matrix) circuit.Bool { return m.compare(circuit.LTE, other) }

// Gt states that this matrix is strictly above the other.
func (m *Matrix) Gt(other *Matrix) circuit.Bool { return m.compare(circuit.GT, other) }

// Gte states that this matrix is cellwise at least the other.
func (m *Matrix) Gte(other *Matrix) circuit.Bool { return m.compare(circuit.GTE, other) }

// Subset states that the entries of this matrix are a subset of the entries
// of the other: wherever this is non-zero, the other is non-zero and at least
// as large.
func (m *Matrix) Subset(other *Matrix) circuit.Bool {
	checkFactory(m, other)
	checkDimensions(m, other)

	f := m.factory
	acc := circuit.NewBoolAccumulator(circuit.AND)

	for i, v0 := range m.All() {
		v1 := other.fastGet(i)

		var isIn circuit.Bool

		if m.binary && other.binary {
			isIn = f.Or(f.Not(m.toBool(v0)), m.toBool(v1))
		} else {
			n0, n1 := toNum(v0), toNum(v1)
			isIn = f.Implies(
				f.Neq(n0, circuit.Zero),
				f.And(f.Neq(n1, circuit.Zero), f.Lte(n0, n1)))
		}

		if acc.Add(isIn) == circuit.False {
			return circuit.False
		}
	}

	return f.AccumulateBool(acc)
}

// compareValue states that every non-zero cell of this matrix obeys the
// operator against the given scalar.  The empty matrix satisfies this
// vacuously.
func (m *Matrix) compareValue(op circuit.CmpOp, v circuit.Num) circuit.Bool {
	f := m.factory
	acc := circuit.NewBoolAccumulator(circuit.AND)

	for _, cell := range m.All() {
		if acc.Add(f.Cmp(op, toNum(cell), v)) == circuit.False {
			return circuit.False
		}
	}

	return f.AccumulateBool(acc)
}

// EqValue states that every non-zero cell equals the given scalar.
func (m *Matrix) EqValue(v circuit.Num) circuit.Bool { return m.compareValue(circuit.EQ, v) }

// NeqValue states that some non-zero cell differs from the given scalar.
func (m *Matrix) NeqValue(v circuit.Num) circuit.Bool {
	return m.factory.Not(m.EqValue(v))
}

// LtValue states that every non-zero cell is below the given scalar.
func (m *Matrix) LtValue(v circuit.Num) circuit.Bool { return m.compareValue(circuit.LT, v) }

// LteValue states that every non-zero cell is at most the given scalar.
func (m *Matrix) LteValue(v circuit.Num) circuit.Bool { return m.compareValue(circuit.LTE, v) }

// GtValue states that every non-zero cell is above the given scalar.
func (m *Matrix) GtValue(v circuit.Num) circuit.Bool { return m.compareValue(circuit.GT, v) }

// GteValue states that every non-zero cell is at least the given scalar.
func (m *Matrix) GteValue(v circuit.Num) circuit.Bool { return m.compareValue(circuit.GTE, v) }

// ===================================================================
// Cardinality and multiplicities
// ===================================================================

// sumCells accumulates the given reading of every present cell.
func (m *Matrix) sumCells(read func(circuit.Num) circuit.Num) circuit.Num {
	acc := circuit.NewNumAccumulator(circuit.PLUS)
	for _, v := range m.All() {
		acc.Add(read(v))
	}

	return m.factory.Accumulate(acc)
}

// Cardinality returns the number of arcs of the relation represented by this
// matrix, broadcast to a constant matrix whose cells all equal the result.
// In the fuzzy domain this is the bounded sum of the weights; in the integer
// domain it counts the tuples in the support.
func (m *Matrix) Cardinality() *Matrix {
	f := m.factory

	var c circuit.Num
	if f.Domain() == circuit.Fuzzy {
		c = m.bound(m.sumCells(toNum))
	} else {
		c = m.sumCells(f.DropNum)
	}

	return m.broadcast(c)
}

// Sum returns the sum of all elements of this matrix, broadcast to a constant
// matrix.  In the fuzzy domain the sum is bounded by one.
func (m *Matrix) Sum() *Matrix {
	return m.broadcast(m.bound(m.sumCells(toNum)))
}

// supportCount returns the unbounded sum of the boolean reading of every
// cell, i.e. the size of the support.
func (m *Matrix) supportCount() circuit.Num {
	return m.sumCells(m.factory.DropNum)
}

// broadcast returns a matrix of these dimensions holding the given scalar at
// every index.
func (m *Matrix) broadcast(v circuit.Num) *Matrix {
	full := fullSet(m.dims.Capacity())
	return NewConstant(m.dims, m.factory, full, v)
}

// Some states that at least one cell of this matrix is non-zero.
func (m *Matrix) Some() circuit.Bool {
	if m.cells.size() == 0 {
		return circuit.False
	}

	f := m.factory
	acc := circuit.NewBoolAccumulator(circuit.OR)

	for _, v := range m.All() {
		var occ circuit.Bool
		if m.binary {
			occ = m.toBool(v)
		} else {
			occ = f.Drop(toNum(v))
		}

		if acc.Add(occ) == circuit.True {
			return circuit.True
		}
	}

	return f.AccumulateBool(acc)
}

// None states that every cell of this matrix is zero.
func (m *Matrix) None() circuit.Bool {
	if m.cells.size() == 0 {
		return circuit.True
	}

	f := m.factory

	if m.binary {
		bools := make([]circuit.Bool, 0, m.cells.size())
		for _, v := range m.All() {
			bools = append(bools, m.toBool(v))
		}

		return f.Nand(bools...)
	}

	return f.Eq(m.supportCount(), circuit.Zero)
}

// One states that exactly one cell of this matrix is non-zero.
func (m *Matrix) One() circuit.Bool {
	return m.factory.Eq(m.Drop().supportCount(), circuit.One)
}

// Lone states that at most one cell of this matrix is non-zero.
func (m *Matrix) Lone() circuit.Bool {
	return m.factory.Lte(m.Drop().supportCount(), circuit.One)
}
