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
package circuit

import (
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/shopspring/decimal"
)

// Domain identifies the value domain of a factory.
type Domain uint8

// Supported domains.
const (
	// Integer weights.
	Integer Domain = iota
	// Fuzzy weights in [0, 1].
	Fuzzy
)

func (d Domain) String() string {
	if d == Integer {
		return "INTEGER"
	}

	return "FUZZY"
}

// Tnorm identifies the fuzzy conjunction/disjunction pair of a factory.  It
// is ignored in the integer domain.
type Tnorm uint8

// Supported t-norms.
const (
	// Godel is the min/max pair.
	Godel Tnorm = iota
	// Lukasiewicz is max(0,a+b-1) / min(a+b,1).
	Lukasiewicz
	// Product is a*b / a+b-a*b.
	Product
	// Drastic collapses to zero unless one side is one.
	Drastic
	// Einstein is ab/(1+(1-a)(1-b)) / (a+b)/(1+ab).
	Einstein
	// AddMin is min / min(a+b,1).
	AddMin
	// MaxProduct is a*b / max.
	MaxProduct
)

func (t Tnorm) String() string {
	switch t {
	case Godel:
		return "Godel"
	case Lukasiewicz:
		return "Lukasiewicz"
	case Product:
		return "Product"
	case Drastic:
		return "Drastic"
	case Einstein:
		return "Einstein"
	case AddMin:
		return "Add_Min"
	default:
		return "Max_Product"
	}
}

// ParseTnorm returns the t-norm with the given (case-sensitive) name.
func ParseTnorm(name string) (Tnorm, bool) {
	switch name {
	case "Godel", "Godelian":
		return Godel, true
	case "Lukasiewicz":
		return Lukasiewicz, true
	case "Product":
		return Product, true
	case "Drastic":
		return Drastic, true
	case "Einstein":
		return Einstein, true
	case "Add_Min", "AddMin":
		return AddMin, true
	case "Max_Product", "MaxProduct":
		return MaxProduct, true
	}

	return Godel, false
}

// Config determines the semiring a factory computes over.
type Config struct {
	Domain Domain
	Tnorm  Tnorm
}

// Number of decimal places considered in the fuzzy domain.
const decimalPlaces = 16

type binOp func(a, b Num) Num

// Factory is the single allocator of scalar values.  Every constructor method
// returns a canonicalised value: constants are folded and interned, identity
// elements eliminated, and trivial choices collapsed.  A factory is scoped to
// a single translation and is not safe for concurrent use.
//
// Builders raise faults (constant division by zero, factory mixing) by
// panicking with a *faults.Translation; the translation entry points recover
// these into ordinary errors.
type Factory struct {
	config Config
	// Next label to be allocated.
	label int
	// Primary variables, by label.
	vars map[int]*NumVar
	// One past the highest primary variable label.
	maxPrimary int
	// Interned constants, keyed by canonical decimal representation.
	consts map[string]*NumConst
	// Semiring operations, bound at construction.
	tnorm   binOp
	tconorm binOp
	meet    binOp
	join    binOp
}

// NewFactory constructs a factory for the given configuration, binding the
// semiring operations once rather than dispatching per call.
func NewFactory(config Config) *Factory {
	f := &Factory{
		config: config,
		vars:   make(map[int]*NumVar),
		consts: make(map[string]*NumConst),
	}
	//
	if config.Domain == Integer {
		f.tnorm, f.tconorm = f.MinZero, f.MaxZero
		f.meet, f.join = f.MinZero, f.MaxZero

		return f
	}

	switch config.Tnorm {
	case Lukasiewicz:
		// max(0, a + b - 1)
		f.tnorm = func(a, b Num) Num { return f.Max(Zero, f.Minus(f.Plus(a, b), One)) }
		// min(a + b, 1)
		f.tconorm = func(a, b Num) Num { return f.Min(f.Plus(a, b), One) }
	case Product:
		// a * b
		f.tnorm = f.Times
		// a + b - a * b
		f.tconorm = func(a, b Num) Num { return f.Minus(f.Plus(a, b), f.Times(a, b)) }
	case Drastic:
		// b = 1 => a, a = 1 => b, 0
		f.tnorm = func(a, b Num) Num {
			return f.Ite(f.Eq(b, One), a, f.Ite(f.Eq(a, One), b, Zero))
		}
		// b = 0 => a, a = 0 => b, 1
		f.tconorm = func(a, b Num) Num {
			return f.Ite(f.Eq(b, Zero), a, f.Ite(f.Eq(a, Zero), b, One))
		}
	case Einstein:
		// a * b / (1 + (1 - a) * (1 - b))
		f.tnorm = func(a, b Num) Num {
			return f.Divide(f.Times(a, b), f.Plus(One, f.Times(f.Minus(One, a), f.Minus(One, b))))
		}
		// (a + b) / (1 + a * b)
		f.tconorm = func(a, b Num) Num {
			return f.Divide(f.Plus(a, b), f.Plus(One, f.Times(a, b)))
		}
	case AddMin:
		f.tnorm = f.MinZero
		// bounded addition: min(a + b, 1)
		f.tconorm = func(a, b Num) Num { return f.Min(f.Plus(a, b), One) }
	case MaxProduct:
		f.tnorm = f.Times
		f.tconorm = f.MaxZero
	default: // Godel
		f.tnorm = f.MinZero
		f.tconorm = f.MaxZero
	}
	// The inner/outer operations of matrix product follow the chosen pair.
	f.meet, f.join = f.tnorm, f.tconorm

	return f
}

// Config returns the configuration of this factory.
func (f *Factory) Config() Config { return f.config }

// Domain returns the value domain of this factory.
func (f *Factory) Domain() Domain { return f.config.Domain }

func (f *Factory) nextLabel() int {
	l := f.label
	f.label++

	return l
}

// round canonicalises a decimal to sixteen places (half-up) in the fuzzy
// domain.
func (f *Factory) round(d decimal.Decimal) decimal.Decimal {
	if f.config.Domain == Fuzzy {
		return d.Round(decimalPlaces)
	}

	return d.Truncate(0)
}

// ===================================================================
// Constants
// ===================================================================

// Constant returns the interned constant for the given value, canonicalised
// to the factory domain.
func (f *Factory) Constant(value decimal.Decimal) *NumConst {
	value = f.round(value)
	//
	if value.IsZero() {
		return Zero
	} else if value.Equal(One.value) {
		return One
	}
	//
	key := value.String()
	if c, ok := f.consts[key]; ok {
		return c
	}

	c := &NumConst{value, f.nextLabel()}
	f.consts[key] = c

	return c
}

// IntConstant returns the interned constant for a given integer.
func (f *Factory) IntConstant(value int64) *NumConst {
	return f.Constant(decimal.NewFromInt(value))
}

// ===================================================================
// Variables
// ===================================================================

// FreshVariable creates a fresh primary numeric variable.
func (f *Factory) FreshVariable() *NumVar {
	v := &NumVar{label: f.nextLabel()}
	f.vars[v.label] = v
	f.maxPrimary = v.label + 1

	return v
}

// AddVariables adds the specified number of fresh primary variables.
func (f *Factory) AddVariables(n int) {
	for i := 0; i < n; i++ {
		f.FreshVariable()
	}
}

// Variable returns the primary variable with the given label.
func (f *Factory) Variable(label int) *NumVar {
	v, ok := f.vars[label]
	if !ok {
		panic(faults.NewTranslation(faults.UnboundLeaf, "no primary variable with label %d", label))
	}

	return v
}

// NumVariables returns the number of primary variables allocated so far.
func (f *Factory) NumVariables() int { return len(f.vars) }

// MaxVariable returns one past the highest primary variable label produced.
func (f *Factory) MaxVariable() int { return f.maxPrimary }

// Variables returns the primary variables allocated so far, in label order.
func (f *Factory) Variables() []*NumVar {
	vs := make([]*NumVar, 0, len(f.vars))

	for label := 0; label < f.maxPrimary; label++ {
		if v, ok := f.vars[label]; ok {
			vs = append(vs, v)
		}
	}

	return vs
}

// TrueVariable creates a fresh numeric variable constrained to be non-zero,
// i.e. strictly true from the boolean point of view.
func (f *Factory) TrueVariable() Num {
	v := f.FreshVariable()
	v.SetConstraint(NonZero)

	return v
}

// TrueVariableAt returns the non-zero-constrained variable with the given
// label, creating it if necessary.
func (f *Factory) TrueVariableAt(label int) Num {
	if label >= f.label {
		f.label = label + 1
	}

	v, ok := f.vars[label]
	if !ok {
		v = &NumVar{label: label}
		f.vars[label] = v
	}

	v.SetConstraint(NonZero)

	return v
}

// ===================================================================
// Lifting and dropping
// ===================================================================

// ToBool pairs the given variable with a fresh boolean counterpart, now
// constrained to the {0, 1} values.
func (f *Factory) ToBool(v *NumVar) *BinaryValue {
	v.SetAllowed([]*NumConst{Zero, One})

	return NewBinaryValue(v, &BoolVar{v.label})
}

// ToBinary lifts a boolean value into a binary numeric value.
func (f *Factory) ToBinary(b Bool) Num {
	if b == True {
		return One
	} else if b == False {
		return Zero
	}

	return NewBinaryValue(&ChoiceGate{ITE, f.nextLabel(), One, Zero, b}, b)
}

// Lift raises a boolean value into the numeric realm, introducing a fresh
// non-zero witness unless the value is the constant False.
func (f *Factory) Lift(b Bool) Num {
	if b == True {
		return f.TrueVariable()
	} else if b == False {
		return Zero
	}

	return &ChoiceGate{ITE, f.nextLabel(), f.TrueVariable(), Zero, b}
}

// Drop lowers a numeric value into its boolean reading (v != 0).
func (f *Factory) Drop(v Num) Bool {
	switch v := v.(type) {
	case *NumConst:
		return BoolConstant(v.Sign() != 0)
	case *NumVar:
		if v.IsTrue() {
			return True
		} else if v.IsFalse() {
			return False
		}
	case *BinaryValue:
		return v.Bool()
	}

	return f.Neq(v, Zero)
}

// DropNum lowers a numeric value into its boolean reading, in a numeric
// context: v != 0 ? 1 : 0.
func (f *Factory) DropNum(v Num) Num {
	switch v := v.(type) {
	case *BinaryValue:
		// The numeric side of a binary value is already {0,1}.
		return v.Num()
	case *NumConst:
		if v.Sign() == 0 {
			return Zero
		}

		return One
	case *NumVar:
		if v.IsTrue() {
			return One
		} else if v.IsFalse() {
			return Zero
		}
	}

	return f.Ite(f.Eq(v, Zero), Zero, One)
}

// ===================================================================
// Semiring
// ===================================================================

// Tnorm applies the conjunction of the configured semiring.
func (f *Factory) Tnorm(a, b Num) Num { return f.tnorm(a, b) }

// Tconorm applies the disjunction of the configured semiring.
func (f *Factory) Tconorm(a, b Num) Num { return f.tconorm(a, b) }

// Meet applies the inner operation of matrix product.
func (f *Factory) Meet(a, b Num) Num { return f.meet(a, b) }

// Join applies the outer operation of matrix product.
func (f *Factory) Join(a, b Num) Num { return f.join(a, b) }

// MinZero returns the minimum of the given values under the reading that zero
// means absence: if either side is zero, the result is zero.
func (f *Factory) MinZero(a, b Num) Num {
	if a == Zero || b == Zero {
		return Zero
	}
	// a != 0 && b != 0 ? min(a, b) : 0
	return f.Ite(f.And(f.Neq(a, Zero), f.Neq(b, Zero)), f.Min(a, b), Zero)
}

// MaxZero returns the maximum of the given values under the reading that zero
// means absence: a zero side short-circuits to the other.
func (f *Factory) MaxZero(a, b Num) Num {
	if a == Zero {
		return b
	} else if b == Zero {
		return a
	}
	// a != 0 && b != 0 ? max(a, b) : (a != 0 ? a : b)
	return f.Ite(f.And(f.Neq(a, Zero), f.Neq(b, Zero)),
		f.Max(a, b),
		f.Ite(f.Neq(a, Zero), a, b))
}

// ===================================================================
// Arithmetic
// ===================================================================

// foldArit computes op over two constants.  Division and modulo by a
// constant zero are arithmetic faults.
func (f *Factory) foldArit(op AritOp, a, b *NumConst) *NumConst {
	if (op == DIV || op == MOD) && b.Sign() == 0 {
		panic(faults.NewTranslation(faults.Arithmetic, "cannot divide by zero: %s %s 0", a.value, op))
	}

	var result decimal.Decimal

	switch op {
	case PLUS:
		result = a.value.Add(b.value)
	case MINUS:
		result = a.value.Sub(b.value)
	case TIMES:
		result = a.value.Mul(b.value)
	case DIV:
		if f.config.Domain == Integer {
			q, _ := a.value.QuoRem(b.value, 0)
			result = q
		} else {
			result = a.value.DivRound(b.value, decimalPlaces+4)
		}
	case MOD:
		result = a.value.Mod(b.value)
	}

	return f.Constant(result)
}

// Plus builds the addition of the two numeric values.
func (f *Factory) Plus(v0, v1 Num) Num {
	if v0 == Zero {
		return v1
	} else if v1 == Zero {
		return v0
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return f.foldArit(PLUS, c0, c1)
		}
	}

	return &AritGate{PLUS, f.nextLabel(), []Num{v0, v1}}
}

// PlusAll builds the addition of more than two numeric values.
func (f *Factory) PlusAll(inputs ...Num) Num {
	acc := NewNumAccumulator(PLUS)
	for _, v := range inputs {
		acc.Add(v)
	}

	return f.Accumulate(acc)
}

// Minus builds the difference between the two numeric values.
func (f *Factory) Minus(v0, v1 Num) Num {
	if v1 == Zero {
		return v0
	} else if v0 == Zero {
		return f.Negate(v1)
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return f.foldArit(MINUS, c0, c1)
		}
	}

	return &AritGate{MINUS, f.nextLabel(), []Num{v0, v1}}
}

// Times builds the product of the two numeric values.
func (f *Factory) Times(v0, v1 Num) Num {
	if v0 == One {
		return v1
	} else if v1 == One {
		return v0
	} else if v0 == Zero || v1 == Zero {
		return Zero
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return f.foldArit(TIMES, c0, c1)
		}
	}

	return &AritGate{TIMES, f.nextLabel(), []Num{v0, v1}}
}

// Divide builds the division of the two numeric values.  Constant division by
// zero faults immediately; a non-constant denominator is guarded, with the
// whole-circuit scan (DetectDivision) excluding models that make it zero.
func (f *Factory) Divide(v0, v1 Num) Num {
	if v1 == One {
		return v0
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return f.foldArit(DIV, c0, c1)
		}
	}

	return f.Ite(f.Eq(v1, Zero), Zero, &AritGate{DIV, f.nextLabel(), []Num{v0, v1}})
}

// Modulo builds the remainder of the two numeric values.
func (f *Factory) Modulo(v0, v1 Num) Num {
	if v1 == One {
		return Zero
	} else if v0 == v1 {
		return Zero
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return f.foldArit(MOD, c0, c1)
		}
	}

	return &AritGate{MOD, f.nextLabel(), []Num{v0, v1}}
}

// Min builds the minimum of the two numeric values.
func (f *Factory) Min(v0, v1 Num) Num {
	if v0 == v1 {
		return v0
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			if c0.value.GreaterThan(c1.value) {
				return c1
			}

			return c0
		}
	}

	return &ChoiceGate{MIN, f.nextLabel(), v0, v1, nil}
}

// Max builds the maximum of the two numeric values.
func (f *Factory) Max(v0, v1 Num) Num {
	if v0 == v1 {
		return v0
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			if c0.value.LessThan(c1.value) {
				return c1
			}

			return c0
		}
	}

	return &ChoiceGate{MAX, f.nextLabel(), v0, v1, nil}
}

// Ite specifies the choice between two numeric values with respect to the
// given condition.
func (f *Factory) Ite(cond Bool, v0, v1 Num) Num {
	if v0 == v1 {
		return v0
	} else if cond == True {
		return v0
	} else if cond == False {
		return v1
	}

	return &ChoiceGate{ITE, f.nextLabel(), v0, v1, cond}
}

// Guard selects the given value when the condition holds, and zero otherwise.
func (f *Factory) Guard(cond Bool, v Num) Num {
	return f.Ite(cond, v, Zero)
}

// Negate returns the arithmetic negation of the given numeric value.
func (f *Factory) Negate(v Num) Num {
	if c, ok := v.(*NumConst); ok {
		return f.Constant(c.value.Neg())
	}
	// neg(neg x) = x
	if g, ok := v.(*UnaryGate); ok && g.op == NEG {
		return g.input
	}

	return &UnaryGate{NEG, f.nextLabel(), v}
}

// Abs returns the absolute value of the given numeric value.
func (f *Factory) Abs(v Num) Num {
	if c, ok := v.(*NumConst); ok {
		if c.Sign() >= 0 {
			return c
		}

		return f.Constant(c.value.Neg())
	}
	// abs(abs x) = abs x
	if g, ok := v.(*UnaryGate); ok && g.op == ABS {
		return g
	}

	return &UnaryGate{ABS, f.nextLabel(), v}
}

// Signum applies the sign function to the given numeric value.
func (f *Factory) Signum(v Num) Num {
	if c, ok := v.(*NumConst); ok {
		switch {
		case c.Sign() > 0:
			return One
		case c.Sign() < 0:
			return f.IntConstant(-1)
		default:
			return Zero
		}
	}
	// sgn(sgn x) = sgn x
	if g, ok := v.(*UnaryGate); ok && g.op == SGN {
		return g
	}

	return &UnaryGate{SGN, f.nextLabel(), v}
}

// ===================================================================
// Comparisons
// ===================================================================

// foldCmp compares two constants.
func foldCmp(op CmpOp, a, b *NumConst) Bool {
	c := a.value.Cmp(b.value)

	var result bool

	switch op {
	case EQ:
		result = c == 0
	case LT:
		result = c < 0
	case LTE:
		result = c <= 0
	case GT:
		result = c > 0
	case GTE:
		result = c >= 0
	}

	return BoolConstant(result)
}

func (f *Factory) cmp(op CmpOp, v0, v1 Num) Bool {
	v0, v1 = ToNum(v0), ToNum(v1)

	if v0 == v1 {
		return BoolConstant(op == EQ || op == LTE || op == GTE)
	}

	if c0, ok0 := v0.(*NumConst); ok0 {
		if c1, ok1 := v1.(*NumConst); ok1 {
			return foldCmp(op, c0, c1)
		}
	}

	// A variable pinned on or off the zero value decides equality with zero.
	if op == EQ {
		if b, ok := zeroEq(v0, v1); ok {
			return b
		} else if b, ok := zeroEq(v1, v0); ok {
			return b
		}
	}

	return &CmpGate{op, f.nextLabel(), v0, v1}
}

func zeroEq(v, other Num) (Bool, bool) {
	nv, ok := v.(*NumVar)
	if !ok || other != Zero {
		return nil, false
	}

	if nv.IsTrue() {
		return False, true
	} else if nv.IsFalse() {
		return True, true
	}

	return nil, false
}

// Cmp builds the comparison of two numeric values under the given operator.
func (f *Factory) Cmp(op CmpOp, v0, v1 Num) Bool { return f.cmp(op, v0, v1) }

// Eq states that the given values must be equal.
func (f *Factory) Eq(v0, v1 Num) Bool { return f.cmp(EQ, v0, v1) }

// Neq states that the given values must be distinct.
func (f *Factory) Neq(v0, v1 Num) Bool { return f.Not(f.Eq(v0, v1)) }

// Lt states that v0 is strictly less than v1.
func (f *Factory) Lt(v0, v1 Num) Bool { return f.cmp(LT, v0, v1) }

// Lte states that v0 is at most v1.
func (f *Factory) Lte(v0, v1 Num) Bool { return f.cmp(LTE, v0, v1) }

// Gt states that v0 is strictly greater than v1.
func (f *Factory) Gt(v0, v1 Num) Bool { return f.cmp(GT, v0, v1) }

// Gte states that v0 is at least v1.
func (f *Factory) Gte(v0, v1 Num) Bool { return f.cmp(GTE, v0, v1) }

// ===================================================================
// Boolean connectives
// ===================================================================

// And returns the conjunction of the given boolean values.
func (f *Factory) And(inputs ...Bool) Bool {
	acc := NewBoolAccumulator(AND)

	for _, b := range inputs {
		if acc.Add(b) == False {
			return False
		}
	}

	return f.AccumulateBool(acc)
}

// Or returns the disjunction of the given boolean values.
func (f *Factory) Or(inputs ...Bool) Bool {
	acc := NewBoolAccumulator(OR)

	for _, b := range inputs {
		if acc.Add(b) == True {
			return True
		}
	}

	return f.AccumulateBool(acc)
}

// Nand returns the conjunction of the negations of the given boolean values.
func (f *Factory) Nand(inputs ...Bool) Bool {
	acc := NewBoolAccumulator(AND)

	for _, b := range inputs {
		if acc.Add(f.Not(b)) == False {
			return False
		}
	}

	return f.AccumulateBool(acc)
}

// Not returns the negation of the given boolean value.
func (f *Factory) Not(b Bool) Bool {
	switch b := b.(type) {
	case *BoolConst:
		return BoolConstant(!b.value)
	case *NotGate:
		return b.input
	}

	return &NotGate{f.nextLabel(), b}
}

// Implies returns a boolean value meaning a => b.
func (f *Factory) Implies(a, b Bool) Bool {
	return f.Or(f.Not(a), b)
}

// Iff returns a boolean value meaning a <=> b.
func (f *Factory) Iff(a, b Bool) Bool {
	return f.And(f.Implies(a, b), f.Implies(b, a))
}

// IteBool specifies the choice between two boolean values with respect to the
// given condition.
func (f *Factory) IteBool(cond, v0, v1 Bool) Bool {
	if v0 == v1 {
		return v0
	} else if cond == True {
		return v0
	} else if cond == False {
		return v1
	}

	return &BoolIte{f.nextLabel(), cond, v0, v1}
}
