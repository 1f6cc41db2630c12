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
	"fmt"
	"math"
	"strings"

	"github.com/quantrel/go-quantrel/pkg/faults"
)

// Dimensions describes the shape of a matrix.  Indices are flat, row-major:
// the capacity is the product of all dimensions and a flat index i addresses
// the cell whose coordinate vector v satisfies i = sum v[k] * stride(k).
type Dimensions struct {
	dims     []int
	capacity int
}

// Square returns dimensions representing an n-dimensional cube with the given
// side.
func Square(side, n int) Dimensions {
	dims := make([]int, n)
	for i := range dims {
		dims[i] = side
	}

	return Rectangular(dims)
}

// Rectangular returns dimensions with the given sides.
func Rectangular(dims []int) Dimensions {
	capacity := 1

	for _, d := range dims {
		if d <= 0 {
			panic(faults.NewTranslation(faults.InvalidBounds, "non-positive dimension %d", d))
		}

		if capacity > math.MaxInt/d {
			panic(faults.NewTranslation(faults.CapacityExceeded, "matrix capacity overflows"))
		}

		capacity *= d
	}

	return Dimensions{dims, capacity}
}

// Capacity returns the number of addressable cells.
func (d Dimensions) Capacity() int { return d.capacity }

// NumDimensions returns the number of dimensions.
func (d Dimensions) NumDimensions() int { return len(d.dims) }

// Dimension returns the size of the ith dimension.
func (d Dimensions) Dimension(i int) int { return d.dims[i] }

// IsSquare reports whether every dimension has the same size.
func (d Dimensions) IsSquare() bool {
	for _, dim := range d.dims[1:] {
		if dim != d.dims[0] {
			return false
		}
	}

	return true
}

// Validate reports whether the given flat index is addressable.
func (d Dimensions) Validate(index int) bool {
	return index >= 0 && index < d.capacity
}

// Equals reports whether two dimensions are identical.
func (d Dimensions) Equals(o Dimensions) bool {
	if len(d.dims) != len(o.dims) {
		return false
	}

	for i := range d.dims {
		if d.dims[i] != o.dims[i] {
			return false
		}
	}

	return true
}

// Transpose returns these dimensions with the last two swapped.
func (d Dimensions) Transpose() Dimensions {
	n := len(d.dims)
	dims := make([]int, n)
	copy(dims, d.dims)
	dims[n-1], dims[n-2] = dims[n-2], dims[n-1]

	return Dimensions{dims, d.capacity}
}

// Cross returns the dimensions of the cross product of matrices with these
// and the other dimensions.
func (d Dimensions) Cross(o Dimensions) Dimensions {
	dims := make([]int, 0, len(d.dims)+len(o.dims))
	dims = append(dims, d.dims...)
	dims = append(dims, o.dims...)

	return Rectangular(dims)
}

// Dot returns the dimensions of the dot product of matrices with these and
// the other dimensions: the last dimension of this and the first of the other
// are contracted away.
func (d Dimensions) Dot(o Dimensions) Dimensions {
	if d.dims[len(d.dims)-1] != o.dims[0] {
		panic(faults.NewTranslation(faults.InvalidBounds,
			"dimensions incompatible for multiplication: %s . %s", d, o))
	}

	n := len(d.dims) + len(o.dims) - 2
	if n == 0 {
		// Contracting two vectors yields a scalar cell.
		return Rectangular([]int{1})
	}

	dims := make([]int, 0, n)
	dims = append(dims, d.dims[:len(d.dims)-1]...)
	dims = append(dims, o.dims[1:]...)

	return Rectangular(dims)
}

// Vector decomposes a flat index into its coordinate vector, writing into the
// given slice.
func (d Dimensions) Vector(index int, vector []int) {
	for i := len(d.dims) - 1; i >= 0; i-- {
		vector[i] = index % d.dims[i]
		index /= d.dims[i]
	}
}

// Index recomposes a coordinate vector into a flat index.
func (d Dimensions) Index(vector []int) int {
	index := 0
	for i, v := range vector {
		index = index*d.dims[i] + v
	}

	return index
}

func (d Dimensions) String() string {
	var s strings.Builder

	for i, dim := range d.dims {
		if i != 0 {
			s.WriteString("x")
		}

		fmt.Fprintf(&s, "%d", dim)
	}

	return s.String()
}
