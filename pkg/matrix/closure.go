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
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
)

func (m *Matrix) requireSquare2(op string) {
	if m.dims.NumDimensions() != 2 || !m.dims.IsSquare() {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"%s requires a square binary relation, got dimensions %s", op, m.dims))
	}
}

// Closure returns the transitive closure of this matrix, computed by iterated
// squaring under the join/meet pair.  The number of rounds is logarithmic in
// the number of rows with any non-zero entry.
func (m *Matrix) Closure() *Matrix {
	m.requireSquare2("closure")

	if m.cells.size() == 0 {
		return m.Clone()
	}
	// Count the rows holding at least one entry.
	rowFactor := m.dims.Dimension(1)
	rowNum := 0
	row := -1

	for i := range m.All() {
		if r := i / rowFactor; r != row {
			row = r
			rowNum++
		}
	}

	ret := m

	for i := 1; i < rowNum; i *= 2 {
		ret = ret.Union(ret.Dot(ret))
	}

	if ret == m {
		return m.Clone()
	}

	return ret
}

// ReflexiveClosure returns the reflexive transitive closure of this matrix by
// divide and conquer into block matrices.  The block decomposition leaves a
// pair of fixed-point equations per split, which are appended to fpEq; the
// solver, not the translator, finalises the least fixed point.
func (m *Matrix) ReflexiveClosure(fpEq *[]circuit.Bool) *Matrix {
	m.requireSquare2("reflexive closure")

	f := m.factory
	ret := New(m.dims, f)
	n := m.dims.Dimension(0)

	// *0 = id
	if m.cells.size() == 0 {
		for i := 0; i < n; i++ {
			ret.Set(i*n+i, circuit.One)
		}

		return ret
	}

	if n == 1 {
		ret.fastSet(0, f.Max(toNum(m.fastGet(0)), circuit.One))
		return ret
	}

	// Split at the midpoint, rounding the upper-left block up.
	half := n / 2
	if n%2 != 0 {
		half++
	}

	p := n - half

	a11 := New(Square(half, 2), f)
	a22 := New(Square(p, 2), f)
	a12 := New(Rectangular([]int{half, p}), f)
	a21 := New(Rectangular([]int{p, half}), f)

	for i, v := range m.All() {
		col, row := i%n, i/n

		switch {
		case col < half && row < half:
			a11.Set(half*row+col, v)
		case col >= half && row >= half:
			a22.Set(p*(row-half)+col-half, v)
		case col < half: // row >= half
			a21.Set((row-half)*half+col, v)
		default: // col >= half && row < half
			a12.Set(row*p+col-half, v)
		}
	}

	// Per-block reflexive closures.
	a11star := a11.ReflexiveClosure(fpEq)
	a22star := a22.ReflexiveClosure(fpEq)
	// x11 = *(a11 + a12.*a22.a21)
	x11 := a11.Union(a12.Dot(a22star).Dot(a21)).ReflexiveClosure(fpEq)
	m.assignBlock(ret, x11, n, 0, 0)
	// x22 = *(a22 + a21.*a11.a12)
	x22 := a22.Union(a21.Dot(a11star).Dot(a12)).ReflexiveClosure(fpEq)
	m.assignBlock(ret, x22, n, half, half)
	// x12 = x11.a12.*a22
	x12 := x11.Dot(a12).Dot(a22star)
	m.assignBlock(ret, x12, n, 0, half)
	// x21 = x22.a21.*a11
	x21 := x22.Dot(a21).Dot(a11star)
	m.assignBlock(ret, x21, n, half, 0)

	// *a11.a12.x22 = x11.a12.*a22
	*fpEq = append(*fpEq, x12.Eq(a11star.Dot(a12).Dot(x22)))
	// *a22.a21.x11 = x22.a21.*a11
	*fpEq = append(*fpEq, x21.Eq(a22star.Dot(a21).Dot(x11)))

	return ret
}

// assignBlock copies a submatrix into ret at the given row/column offset of
// an n-sided square matrix.
func (m *Matrix) assignBlock(ret, block *Matrix, n, rowOffset, colOffset int) {
	cols := block.dims.Dimension(1)

	for i, v := range block.All() {
		row, col := i/cols, i%cols
		ret.Set(n*(rowOffset+row)+colOffset+col, v)
	}
}
