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
package translate

import (
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/matrix"
	"github.com/shopspring/decimal"
)

// VarRange is the contiguous range of primary variable labels assigned to a
// relation, both ends inclusive.
type VarRange struct {
	Min int
	Max int
}

// Size returns the number of labels in this range.
func (r VarRange) Size() int { return r.Max - r.Min + 1 }

// LeafInterpreter binds the unquantified leaves of a relational tree,
// relation symbols and constant expressions, to matrices of scalar values.
// It allocates the primary variables of the translation at construction and
// is immutable afterwards.
type LeafInterpreter struct {
	factory  *circuit.Factory
	universe *instance.Universe
	vars     map[*ast.Relation]VarRange
	order    []*ast.Relation
	lowers   map[*ast.Relation]*instance.TupleSet
	uppers   map[*ast.Relation]*instance.TupleSet
	// Set when this interpreter realises constant circuits from an exact
	// instance.
	constant bool
}

// Exact returns an interpreter for the given bounds, allocating a contiguous
// label range per relation in bounds order.
func Exact(bounds *instance.Bounds, config circuit.Config) *LeafInterpreter {
	li := &LeafInterpreter{
		universe: bounds.Universe(),
		vars:     make(map[*ast.Relation]VarRange),
		order:    bounds.Relations(),
		lowers:   make(map[*ast.Relation]*instance.TupleSet),
		uppers:   make(map[*ast.Relation]*instance.TupleSet),
	}

	numVars := 0

	for _, r := range bounds.Relations() {
		lower, upper := bounds.Lower(r), bounds.Upper(r)
		li.lowers[r] = lower
		li.uppers[r] = upper

		if n := upper.Size(); n > 0 {
			li.vars[r] = VarRange{numVars, numVars + n - 1}
			numVars += n
		}
	}

	li.factory = circuit.NewFactory(config)
	li.factory.AddVariables(numVars)

	return li
}

// ExactInstance returns a constant interpreter over the given instance, used
// to evaluate formulas without introducing variables.
func ExactInstance(inst *instance.Instance, config circuit.Config) *LeafInterpreter {
	li := &LeafInterpreter{
		factory:  circuit.NewFactory(config),
		universe: inst.Universe(),
		vars:     make(map[*ast.Relation]VarRange),
		order:    inst.Relations(),
		lowers:   make(map[*ast.Relation]*instance.TupleSet),
		uppers:   make(map[*ast.Relation]*instance.TupleSet),
		constant: true,
	}

	for _, r := range inst.Relations() {
		li.lowers[r] = inst.Tuples(r)
		li.uppers[r] = inst.Tuples(r)
	}

	return li
}

// Factory returns the factory of this interpreter.
func (li *LeafInterpreter) Factory() *circuit.Factory { return li.factory }

// Universe returns the universe of discourse.
func (li *LeafInterpreter) Universe() *instance.Universe { return li.universe }

// Vars returns the primary variable range of the given relation.
func (li *LeafInterpreter) Vars(r *ast.Relation) (VarRange, bool) {
	vr, ok := li.vars[r]
	return vr, ok
}

// VarMap returns the primary variable ranges of every relation.
func (li *LeafInterpreter) VarMap() map[*ast.Relation]VarRange {
	m := make(map[*ast.Relation]VarRange, len(li.vars))
	for r, vr := range li.vars {
		m[r] = vr
	}

	return m
}

// Interpret returns the matrix of scalar values representing the given
// relation, with dimensions n^arity.
func (li *LeafInterpreter) Interpret(r *ast.Relation) *matrix.Matrix {
	lower, ok := li.lowers[r]
	if !ok {
		panic(faults.NewTranslation(faults.UnboundLeaf, "unbound relation %s", r.Name()))
	}

	upper := li.uppers[r]
	dims := matrix.Square(li.universe.Size(), r.Arity())
	quantitative := r.IsQuantitative()

	var m *matrix.Matrix

	switch {
	case !quantitative:
		m = matrix.NewBinary(dims, li.factory)
	case contiguous(upper):
		// Contiguous upper bounds back densely.
		lo, hi := span(upper)
		m = matrix.NewDense(dims, li.factory, lo, hi)
	default:
		m = matrix.New(dims, li.factory)
	}

	if vr, ok := li.vars[r]; ok {
		varID := vr.Min
		for index := range upper.All() {
			cell := li.factory.Variable(varID)
			varID++

			switch {
			case lower.Contains(index) && !quantitative:
				// R[i] = 1; the allocated variable is pinned to one so the
				// model always reports this tuple with unit weight.
				cell.SetConstraint(circuit.NonZero)
				cell.SetAllowed([]*circuit.NumConst{circuit.One})
				m.Set(index, circuit.One)
			case lower.Contains(index):
				// R[i] != 0
				cell.SetConstraint(circuit.NonZero)
				m.Set(index, cell)
			case !quantitative:
				// R[i] = 0 | R[i] = 1
				m.Set(index, li.factory.ToBool(cell))
			default:
				// Free quantitative cell.
				m.Set(index, cell)
			}
		}

		return m
	}

	if li.constant {
		for index := range upper.All() {
			if quantitative && upper.Weighted() {
				m.Set(index, li.factory.Constant(upper.Weight(index)))
			} else {
				m.Set(index, circuit.One)
			}
		}
	}

	return m
}

// InterpretConst returns the canonical constant matrix of the given constant
// expression.
func (li *LeafInterpreter) InterpretConst(c *ast.ConstExpr) *matrix.Matrix {
	n := li.universe.Size()

	switch c.Kind() {
	case ast.UNIV:
		return matrix.NewConstant(matrix.Square(n, 1), li.factory, fullIndices(n), circuit.One)
	case ast.IDEN:
		dims := matrix.Square(n, 2)
		iden := bitset.New(uint(dims.Capacity()))

		for i := 0; i < n; i++ {
			iden.Set(uint(i*n + i))
		}

		return matrix.NewConstant(dims, li.factory, iden, circuit.One)
	case ast.NONE:
		return matrix.New(matrix.Square(n, 1), li.factory)
	default: // INTS: the atoms whose name denotes an integer
		ints := bitset.New(uint(n))

		for i := 0; i < n; i++ {
			if _, err := strconv.Atoi(li.universe.Atom(i)); err == nil {
				ints.Set(uint(i))
			}
		}

		return matrix.NewConstant(matrix.Square(n, 1), li.factory, ints, circuit.One)
	}
}

// InterpretConstInt returns a constant matrix broadcasting the given value
// over the full universe.
func (li *LeafInterpreter) InterpretConstInt(value decimal.Decimal) *matrix.Matrix {
	n := li.universe.Size()
	return matrix.NewConstant(matrix.Square(n, 1), li.factory, fullIndices(n), li.factory.Constant(value))
}

// span returns the smallest and largest tuple index of a non-empty set.
func span(ts *instance.TupleSet) (int, int) {
	lo, hi := -1, -1

	for i := range ts.All() {
		if lo < 0 {
			lo = i
		}

		hi = i
	}

	return lo, hi
}

// contiguous reports whether the indices of a set form a non-empty dense
// range.
func contiguous(ts *instance.TupleSet) bool {
	if ts.Size() == 0 {
		return false
	}

	lo, hi := span(ts)

	return hi-lo+1 == ts.Size()
}

func fullIndices(n int) *bitset.BitSet {
	set := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		set.Set(uint(i))
	}

	return set
}
