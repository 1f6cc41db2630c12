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
	"iter"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/quantrel/go-quantrel/pkg/circuit"
)

// cells is the sparse backing of a matrix: a map from flat index to scalar,
// iterated in ascending index order.  An absent index reads as ZERO.  Three
// variants exist as performance hints with identical semantics: a sorted
// entry tree (general case), a dense array over a contiguous index range, and
// a homogeneous bitset where every present cell holds the same scalar.
//
// Mutators return the backing to use afterwards, since a write may force a
// variant change.
type cells interface {
	get(index int) circuit.Num
	put(index int, value circuit.Num) cells
	remove(index int) cells
	size() int
	clone() cells
	// all yields present entries in ascending index order.
	all() iter.Seq2[int, circuit.Num]
	// between yields present entries with lo <= index <= hi, ascending.
	between(lo, hi int) iter.Seq2[int, circuit.Num]
}

// first returns the entry with the smallest index, if any.
func first(c cells) (int, circuit.Num, bool) {
	for i, v := range c.all() {
		return i, v, true
	}

	return 0, nil, false
}

// ===================================================================
// Tree cells
// ===================================================================

type entry struct {
	index int
	value circuit.Num
}

// treeCells is the general backing: entries sorted by index.
type treeCells struct {
	entries []entry
}

func newTreeCells() *treeCells {
	return &treeCells{}
}

// find returns the position of the given index, or the position where it
// would be inserted.
func (c *treeCells) find(index int) (int, bool) {
	pos := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].index >= index
	})

	return pos, pos < len(c.entries) && c.entries[pos].index == index
}

func (c *treeCells) get(index int) circuit.Num {
	if pos, ok := c.find(index); ok {
		return c.entries[pos].value
	}

	return nil
}

func (c *treeCells) put(index int, value circuit.Num) cells {
	pos, ok := c.find(index)
	if ok {
		c.entries[pos].value = value
		return c
	}

	c.entries = append(c.entries, entry{})
	copy(c.entries[pos+1:], c.entries[pos:])
	c.entries[pos] = entry{index, value}

	return c
}

func (c *treeCells) remove(index int) cells {
	if pos, ok := c.find(index); ok {
		c.entries = append(c.entries[:pos], c.entries[pos+1:]...)
	}

	return c
}

func (c *treeCells) size() int { return len(c.entries) }

func (c *treeCells) clone() cells {
	entries := make([]entry, len(c.entries))
	copy(entries, c.entries)

	return &treeCells{entries}
}

func (c *treeCells) all() iter.Seq2[int, circuit.Num] {
	return func(yield func(int, circuit.Num) bool) {
		for _, e := range c.entries {
			if !yield(e.index, e.value) {
				return
			}
		}
	}
}

func (c *treeCells) between(lo, hi int) iter.Seq2[int, circuit.Num] {
	return func(yield func(int, circuit.Num) bool) {
		pos, _ := c.find(lo)
		for _, e := range c.entries[pos:] {
			if e.index > hi {
				return
			}

			if !yield(e.index, e.value) {
				return
			}
		}
	}
}

// ===================================================================
// Range cells
// ===================================================================

// rangeCells is a dense backing over the contiguous index range
// [offset, offset+len(values)).  Nil slots read as absent.
type rangeCells struct {
	offset int
	values []circuit.Num
	count  int
}

// newRangeCells constructs a dense backing covering the given range.
func newRangeCells(lo, hi int) *rangeCells {
	return &rangeCells{lo, make([]circuit.Num, hi-lo+1), 0}
}

func (c *rangeCells) covers(index int) bool {
	return index >= c.offset && index < c.offset+len(c.values)
}

func (c *rangeCells) get(index int) circuit.Num {
	if c.covers(index) {
		return c.values[index-c.offset]
	}

	return nil
}

func (c *rangeCells) put(index int, value circuit.Num) cells {
	if !c.covers(index) {
		return c.spill().put(index, value)
	}

	if c.values[index-c.offset] == nil {
		c.count++
	}

	c.values[index-c.offset] = value

	return c
}

func (c *rangeCells) remove(index int) cells {
	if c.covers(index) && c.values[index-c.offset] != nil {
		c.values[index-c.offset] = nil
		c.count--
	}

	return c
}

func (c *rangeCells) size() int { return c.count }

func (c *rangeCells) clone() cells {
	values := make([]circuit.Num, len(c.values))
	copy(values, c.values)

	return &rangeCells{c.offset, values, c.count}
}

// spill converts to the general backing on an out-of-range write.
func (c *rangeCells) spill() cells {
	tree := newTreeCells()
	for i, v := range c.all() {
		tree.put(i, v)
	}

	return tree
}

func (c *rangeCells) all() iter.Seq2[int, circuit.Num] {
	return c.between(c.offset, c.offset+len(c.values)-1)
}

func (c *rangeCells) between(lo, hi int) iter.Seq2[int, circuit.Num] {
	return func(yield func(int, circuit.Num) bool) {
		for i := max(lo, c.offset); i <= hi && i < c.offset+len(c.values); i++ {
			if v := c.values[i-c.offset]; v != nil {
				if !yield(i, v) {
					return
				}
			}
		}
	}
}

// ===================================================================
// Homogeneous cells
// ===================================================================

// homogeneousCells is the backing for constant matrices: every present index
// holds the same scalar.
type homogeneousCells struct {
	indices *bitset.BitSet
	value   circuit.Num
}

// newHomogeneousCells constructs a backing holding the given value at every
// index of the given set.
func newHomogeneousCells(indices *bitset.BitSet, value circuit.Num) *homogeneousCells {
	return &homogeneousCells{indices, value}
}

func (c *homogeneousCells) get(index int) circuit.Num {
	if c.indices.Test(uint(index)) {
		return c.value
	}

	return nil
}

func (c *homogeneousCells) put(index int, value circuit.Num) cells {
	if value == c.value {
		c.indices.Set(uint(index))
		return c
	}

	return c.spill().put(index, value)
}

func (c *homogeneousCells) remove(index int) cells {
	c.indices.Clear(uint(index))
	return c
}

func (c *homogeneousCells) size() int { return int(c.indices.Count()) }

func (c *homogeneousCells) clone() cells {
	return &homogeneousCells{c.indices.Clone(), c.value}
}

func (c *homogeneousCells) spill() cells {
	tree := newTreeCells()
	for i, v := range c.all() {
		tree.put(i, v)
	}

	return tree
}

func (c *homogeneousCells) all() iter.Seq2[int, circuit.Num] {
	return func(yield func(int, circuit.Num) bool) {
		for i, ok := c.indices.NextSet(0); ok; i, ok = c.indices.NextSet(i + 1) {
			if !yield(int(i), c.value) {
				return
			}
		}
	}
}

func (c *homogeneousCells) between(lo, hi int) iter.Seq2[int, circuit.Num] {
	return func(yield func(int, circuit.Num) bool) {
		for i, ok := c.indices.NextSet(uint(lo)); ok && int(i) <= hi; i, ok = c.indices.NextSet(i + 1) {
			if !yield(int(i), c.value) {
				return
			}
		}
	}
}
