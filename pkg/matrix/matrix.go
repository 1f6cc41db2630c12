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

// Package matrix implements relations as sparse multidimensional tensors of
// scalar IR values, together with the relational algebra over them.  All
// cells of a matrix belong to a single factory; a matrix borrows its scalars
// from that factory and never outlives it.
package matrix

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
)

// Matrix is a sparse tensor of scalar values modelling a (possibly weighted)
// relation.  An absent index reads as ZERO.  A boolean matrix carries the
// additional invariant that every cell is {0,1}-valued.
type Matrix struct {
	dims    Dimensions
	factory *circuit.Factory
	cells   cells
	binary  bool
}

// New returns an empty matrix with the given dimensions.
func New(dims Dimensions, factory *circuit.Factory) *Matrix {
	return &Matrix{dims, factory, newTreeCells(), false}
}

// NewBinary returns an empty boolean matrix with the given dimensions.
func NewBinary(dims Dimensions, factory *circuit.Factory) *Matrix {
	return &Matrix{dims, factory, newTreeCells(), true}
}

// NewConstant returns a matrix holding the given scalar at every index of the
// given set, backed homogeneously.
func NewConstant(dims Dimensions, factory *circuit.Factory, indices *bitset.BitSet, value circuit.Num) *Matrix {
	if value == circuit.Zero {
		return New(dims, factory)
	}

	return &Matrix{dims, factory, newHomogeneousCells(indices.Clone(), value), false}
}

// NewDense returns an empty matrix backed densely over the contiguous index
// range [lo, hi].
func NewDense(dims Dimensions, factory *circuit.Factory, lo, hi int) *Matrix {
	return &Matrix{dims, factory, newRangeCells(lo, hi), false}
}

// Dimensions returns the shape of this matrix.
func (m *Matrix) Dimensions() Dimensions { return m.dims }

// Factory returns the factory owning this matrix's cells.
func (m *Matrix) Factory() *circuit.Factory { return m.factory }

// IsBoolean reports whether this matrix carries the {0,1} invariant.
func (m *Matrix) IsBoolean() bool { return m.binary }

// Density returns the number of present cells.
func (m *Matrix) Density() int { return m.cells.size() }

// Get returns the value at the given index, ZERO if absent.
func (m *Matrix) Get(index int) circuit.Num {
	if !m.dims.Validate(index) {
		panic(faults.NewTranslation(faults.CapacityExceeded,
			"index %d outside dimensions %s", index, m.dims))
	}

	return m.fastGet(index)
}

func (m *Matrix) fastGet(index int) circuit.Num {
	if v := m.cells.get(index); v != nil {
		return v
	}

	return circuit.Zero
}

// Set assigns the value at the given index.  Storing ZERO removes the cell.
func (m *Matrix) Set(index int, value circuit.Num) {
	if !m.dims.Validate(index) {
		panic(faults.NewTranslation(faults.CapacityExceeded,
			"index %d outside dimensions %s", index, m.dims))
	}

	m.fastSet(index, value)
}

func (m *Matrix) fastSet(index int, value circuit.Num) {
	if value == circuit.Zero {
		m.cells = m.cells.remove(index)
	} else {
		m.cells = m.cells.put(index, value)
	}
}

// All yields the present cells in ascending index order.
func (m *Matrix) All() iter.Seq2[int, circuit.Num] { return m.cells.all() }

// Between yields the present cells with lo <= index <= hi, ascending.
func (m *Matrix) Between(lo, hi int) iter.Seq2[int, circuit.Num] {
	return m.cells.between(lo, hi)
}

// First returns the value of the present cell with the smallest index, or
// ZERO when the matrix is empty.
func (m *Matrix) First() circuit.Num {
	if _, v, ok := first(m.cells); ok {
		return v
	}

	return circuit.Zero
}

// Indices returns the set of present cell indices.
func (m *Matrix) Indices() *bitset.BitSet {
	set := bitset.New(uint(m.dims.Capacity()))
	for i := range m.All() {
		set.Set(uint(i))
	}

	return set
}

// Clone returns a copy of this matrix.  Cells are shared: they are immutable
// values of the owning factory.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{m.dims, m.factory, m.cells.clone(), m.binary}
}

func (m *Matrix) String() string {
	var s strings.Builder

	fmt.Fprintf(&s, "dimensions: %s, elements: {", m.dims)

	sep := ""
	for i, v := range m.All() {
		fmt.Fprintf(&s, "%s%d=#%d", sep, i, v.Label())
		sep = ", "
	}

	s.WriteString("}")

	return s.String()
}

// fullSet returns the index set covering [0, n).
func fullSet(n int) *bitset.BitSet {
	set := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		set.Set(uint(i))
	}

	return set
}

// checkFactory ensures two matrices belong to the same factory.
func checkFactory(m, n *Matrix) {
	if m.factory != n.factory {
		panic(faults.NewTranslation(faults.DomainMismatch,
			"matrices belong to different factories"))
	}
}

// checkDimensions ensures two matrices have identical dimensions.
func checkDimensions(m, n *Matrix) {
	if !m.dims.Equals(n.dims) {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"dimension mismatch: %s vs %s", m.dims, n.dims))
	}
}

// toNum extracts the numeric component of a binary value, and is the identity
// otherwise.
func toNum(v circuit.Num) circuit.Num { return circuit.ToNum(v) }

// toBool drops the given value into the boolean realm, preferring the boolean
// component of a binary value.
func (m *Matrix) toBool(v circuit.Num) circuit.Bool {
	if bv, ok := v.(*circuit.BinaryValue); ok {
		return bv.Bool()
	}

	return m.factory.Drop(v)
}
