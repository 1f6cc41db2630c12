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
	"math"

	"github.com/shopspring/decimal"
)

// Value is any node of the scalar IR: a constant, a variable or a gate.
// Every value carries a unique integer label within its factory.
type Value interface {
	// Label returns the unique identifier of this value.
	Label() int
}

// Bool is a boolean-valued node of the scalar IR.
type Bool interface {
	Value
	isBool()
}

// Num is a numeric-valued node of the scalar IR.
type Num interface {
	Value
	isNum()
}

// Labels of the shared constants.  ZERO and ONE are pinned at the very bottom
// of the label space so they can never collide with factory-allocated labels.
const (
	zeroLabel = math.MinInt32
	oneLabel  = math.MinInt32 + 1
	// Labels of the boolean constants.
	falseLabel = math.MinInt32 + 2
	trueLabel  = math.MinInt32 + 3
)

// ===================================================================
// Boolean constants
// ===================================================================

// BoolConst is a boolean constant.  Only two values exist, True and False,
// shared across all factories.
type BoolConst struct {
	value bool
	label int
}

// True is the shared truth constant.
var True Bool = &BoolConst{true, trueLabel}

// False is the shared falsehood constant.
var False Bool = &BoolConst{false, falseLabel}

// BoolConstant returns the boolean constant for a given value.
func BoolConstant(value bool) Bool {
	if value {
		return True
	}

	return False
}

// Label implementation for the Value interface.
func (p *BoolConst) Label() int { return p.label }

// Value returns the truth value of this constant.
func (p *BoolConst) Value() bool { return p.value }

func (p *BoolConst) isBool() {}

// ===================================================================
// Numeric constants
// ===================================================================

// NumConst is a numeric constant, either an integer or a decimal canonicalised
// to sixteen decimal places.  Constants are interned by their factory, so two
// constants with equal values are pointer-identical.  ZERO and ONE are shared
// across factories.
type NumConst struct {
	value decimal.Decimal
	label int
}

// Zero is the shared numeric constant 0, representing absence.
var Zero = &NumConst{decimal.Zero, zeroLabel}

// One is the shared numeric constant 1.
var One = &NumConst{decimal.NewFromInt(1), oneLabel}

// Label implementation for the Value interface.
func (p *NumConst) Label() int { return p.label }

// Value returns the decimal value of this constant.
func (p *NumConst) Value() decimal.Decimal { return p.value }

// Sign returns -1, 0 or +1 depending on the sign of this constant.
func (p *NumConst) Sign() int { return p.value.Sign() }

func (p *NumConst) isNum() {}

// ===================================================================
// Variables
// ===================================================================

// VarConstraint restricts the values a primary variable may take.
type VarConstraint uint8

// Variable constraints.
const (
	// Free places no constraint on the variable.
	Free VarConstraint = iota
	// NonZero forces the variable to differ from zero.
	NonZero
	// IsZero forces the variable to equal zero.
	IsZero
)

// NumVar is a primary numeric variable.  Primary variables are allocated by a
// factory in increasing label order and are immortal within a translation.
type NumVar struct {
	label      int
	constraint VarConstraint
	// Allowed values, when restricted to a finite set (e.g. {0, 1} for the
	// numeric side of a boolean cell).  Nil means unrestricted.
	allowed []*NumConst
}

// Label implementation for the Value interface.
func (p *NumVar) Label() int { return p.label }

// Constraint returns the value constraint attached to this variable.
func (p *NumVar) Constraint() VarConstraint { return p.constraint }

// SetConstraint updates the value constraint attached to this variable.
func (p *NumVar) SetConstraint(c VarConstraint) { p.constraint = c }

// Allowed returns the finite value set this variable ranges over, or nil.
func (p *NumVar) Allowed() []*NumConst { return p.allowed }

// SetAllowed restricts this variable to a finite value set.
func (p *NumVar) SetAllowed(values []*NumConst) { p.allowed = values }

// IsTrue holds when the constraint forces this variable to be non-zero.
func (p *NumVar) IsTrue() bool { return p.constraint == NonZero }

// IsFalse holds when the constraint forces this variable to be zero.
func (p *NumVar) IsFalse() bool { return p.constraint == IsZero }

func (p *NumVar) isNum() {}

// BoolVar is a fresh boolean atom.  Boolean atoms always pair with the
// numeric primary variable of the same label, and are emitted to SMT as a
// zero test on that variable.
type BoolVar struct {
	label int
}

// Label implementation for the Value interface.
func (p *BoolVar) Label() int { return p.label }

func (p *BoolVar) isBool() {}

// ===================================================================
// Binary values
// ===================================================================

// BinaryValue pairs a numeric value with its boolean counterpart, under the
// invariant num = (bool ? 1 : 0).  It is used when a cell must be addressed
// from both sides.
type BinaryValue struct {
	num Num
	b   Bool
}

// NewBinaryValue pairs a numeric value with its boolean counterpart.
func NewBinaryValue(num Num, b Bool) *BinaryValue {
	return &BinaryValue{num, b}
}

// Label implementation for the Value interface.
func (p *BinaryValue) Label() int { return p.num.Label() }

// Num returns the numeric side of this value.
func (p *BinaryValue) Num() Num { return p.num }

// Bool returns the boolean side of this value.
func (p *BinaryValue) Bool() Bool { return p.b }

func (p *BinaryValue) isNum() {}

// ToNum strips the binary pairing from a numeric value, if present.
func ToNum(v Num) Num {
	if bv, ok := v.(*BinaryValue); ok {
		return bv.Num()
	}

	return v
}
