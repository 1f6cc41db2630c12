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
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/faults"
)

// Bounds assigns each relation symbol a lower (must-be-in) and upper
// (may-be-in) tuple set over a common universe.  Relation iteration order is
// the order of binding, which makes primary variable allocation
// deterministic.
type Bounds struct {
	universe  *Universe
	relations []*ast.Relation
	lowers    map[*ast.Relation]*TupleSet
	uppers    map[*ast.Relation]*TupleSet
}

// NewBounds constructs empty bounds over the given universe.
func NewBounds(universe *Universe) *Bounds {
	return &Bounds{
		universe: universe,
		lowers:   make(map[*ast.Relation]*TupleSet),
		uppers:   make(map[*ast.Relation]*TupleSet),
	}
}

// Universe returns the universe of these bounds.
func (b *Bounds) Universe() *Universe { return b.universe }

// Relations returns the bound relations, in binding order.
func (b *Bounds) Relations() []*ast.Relation { return b.relations }

// Bound assigns lower and upper tuple sets to a relation.
func (b *Bounds) Bound(r *ast.Relation, lower, upper *TupleSet) error {
	if lower.Arity() != r.Arity() || upper.Arity() != r.Arity() {
		return faults.NewTranslation(faults.InvalidBounds,
			"bound arity does not match relation %s/%d", r.Name(), r.Arity())
	}

	if !upper.ContainsAll(lower) {
		return faults.NewTranslation(faults.InvalidBounds,
			"lower bound of %s is not contained in its upper bound", r.Name())
	}

	if _, ok := b.lowers[r]; !ok {
		b.relations = append(b.relations, r)
	}

	b.lowers[r] = lower
	b.uppers[r] = upper

	return nil
}

// BoundExactly binds a relation to exactly the given tuple set.
func (b *Bounds) BoundExactly(r *ast.Relation, tuples *TupleSet) error {
	return b.Bound(r, tuples, tuples)
}

// Lower returns the lower bound of the given relation, or nil if unbound.
func (b *Bounds) Lower(r *ast.Relation) *TupleSet { return b.lowers[r] }

// Upper returns the upper bound of the given relation, or nil if unbound.
func (b *Bounds) Upper(r *ast.Relation) *TupleSet { return b.uppers[r] }

// Exact reports whether every relation's lower bound equals its upper bound,
// in which case translation is trivial.
func (b *Bounds) Exact() bool {
	for _, r := range b.relations {
		if b.lowers[r] != b.uppers[r] && !b.lowers[r].Equals(b.uppers[r]) {
			return false
		}
	}

	return true
}

// Clone returns a copy of these bounds sharing the underlying tuple sets.
func (b *Bounds) Clone() *Bounds {
	clone := NewBounds(b.universe)
	clone.relations = append([]*ast.Relation(nil), b.relations...)

	for r, ts := range b.lowers {
		clone.lowers[r] = ts
	}

	for r, ts := range b.uppers {
		clone.uppers[r] = ts
	}

	return clone
}
