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
package instance

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/shopspring/decimal"
)

// one is the default tuple weight.
var one = decimal.NewFromInt(1)

// TupleSet is a sparse set of same-arity tuples over a universe, addressed by
// flat row-major indices, optionally carrying a weight per tuple.  A tuple
// with no recorded weight has weight one.
type TupleSet struct {
	universe *Universe
	arity    int
	indices  *bitset.BitSet
	weights  map[int]decimal.Decimal
}

// NewTupleSet constructs an empty tuple set of the given arity.
func NewTupleSet(universe *Universe, arity int) *TupleSet {
	capacity := 1
	for i := 0; i < arity; i++ {
		capacity *= universe.Size()
	}

	return &TupleSet{universe, arity, bitset.New(uint(capacity)), nil}
}

// Universe returns the universe this set draws its atoms from.
func (t *TupleSet) Universe() *Universe { return t.universe }

// Arity returns the arity of the tuples in this set.
func (t *TupleSet) Arity() int { return t.arity }

// Capacity returns the number of addressable tuples, |universe|^arity.
func (t *TupleSet) Capacity() int {
	capacity := 1
	for i := 0; i < t.arity; i++ {
		capacity *= t.universe.Size()
	}

	return capacity
}

// Size returns the number of tuples in this set.
func (t *TupleSet) Size() int { return int(t.indices.Count()) }

// Contains reports whether the tuple at the given flat index is present.
func (t *TupleSet) Contains(index int) bool { return t.indices.Test(uint(index)) }

// Add inserts the tuple at the given flat index, with weight one.
func (t *TupleSet) Add(index int) {
	if index < 0 || index >= t.Capacity() {
		panic(faults.NewTranslation(faults.InvalidBounds, "tuple index %d out of range", index))
	}

	t.indices.Set(uint(index))
}

// AddWeighted inserts the tuple at the given flat index with the given
// weight.
func (t *TupleSet) AddWeighted(index int, weight decimal.Decimal) {
	t.Add(index)

	if t.weights == nil {
		t.weights = make(map[int]decimal.Decimal)
	}

	t.weights[index] = weight
}

// AddTuple inserts the tuple with the given atom names, returning an error on
// unknown atoms or arity mismatch.
func (t *TupleSet) AddTuple(atoms ...string) error {
	index, err := t.IndexOf(atoms...)
	if err != nil {
		return err
	}

	t.Add(index)

	return nil
}

// IndexOf flattens the given atom tuple into its flat index.
func (t *TupleSet) IndexOf(atoms ...string) (int, error) {
	if len(atoms) != t.arity {
		return 0, faults.NewTranslation(faults.InvalidBounds,
			"tuple %v has arity %d, expected %d", atoms, len(atoms), t.arity)
	}

	index := 0

	for _, atom := range atoms {
		i, ok := t.universe.Index(atom)
		if !ok {
			return 0, faults.NewTranslation(faults.InvalidBounds, "unknown atom %q", atom)
		}

		index = index*t.universe.Size() + i
	}

	return index, nil
}

// Weight returns the weight of the tuple at the given index (one if not
// explicitly recorded).
func (t *TupleSet) Weight(index int) decimal.Decimal {
	if w, ok := t.weights[index]; ok {
		return w
	}

	return one
}

// Weighted reports whether any tuple carries an explicit weight.
func (t *TupleSet) Weighted() bool { return len(t.weights) > 0 }

// All yields the present tuple indices in ascending order.
func (t *TupleSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, ok := t.indices.NextSet(0); ok; i, ok = t.indices.NextSet(i + 1) {
			if !yield(int(i)) {
				return
			}
		}
	}
}

// ContainsAll reports whether every tuple of the other set is in this set.
func (t *TupleSet) ContainsAll(other *TupleSet) bool {
	return other.indices.Difference(t.indices).None()
}

// Equals reports whether two sets hold exactly the same tuples (weights are
// not compared).
func (t *TupleSet) Equals(other *TupleSet) bool {
	return t.arity == other.arity && t.indices.Equal(other.indices)
}

// Clone returns a copy of this tuple set.
func (t *TupleSet) Clone() *TupleSet {
	var weights map[int]decimal.Decimal

	if t.weights != nil {
		weights = make(map[int]decimal.Decimal, len(t.weights))
		for k, v := range t.weights {
			weights[k] = v
		}
	}

	return &TupleSet{t.universe, t.arity, t.indices.Clone(), weights}
}

// Indices returns the underlying index set.
func (t *TupleSet) Indices() *bitset.BitSet { return t.indices }

// Tuple expands a flat index back into its atom names.
func (t *TupleSet) Tuple(index int) []string {
	atoms := make([]string, t.arity)
	n := t.universe.Size()

	for i := t.arity - 1; i >= 0; i-- {
		atoms[i] = t.universe.Atom(index % n)
		index /= n
	}

	return atoms
}
