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
package ast

// CompareOp identifies an expression comparison operator.
type CompareOp uint8

// Comparison operators.
const (
	// Subset requires cellwise containment.
	Subset CompareOp = iota
	// Equal requires cellwise equality.
	Equal
	// Less requires the weak order plus at least one strict cell.
	Less
	// LessEq requires the cellwise weak order.
	LessEq
	// Greater requires the weak order plus at least one strict cell.
	Greater
	// GreaterEq requires the cellwise weak order.
	GreaterEq
)

// CompareFormula compares two expressions.
type CompareFormula struct {
	op    CompareOp
	left  Expr
	right Expr
}

// NewCompareFormula compares two expressions under the given operator.
func NewCompareFormula(op CompareOp, left, right Expr) *CompareFormula {
	return &CompareFormula{op, left, right}
}

// Op returns the operator of this formula.
func (f *CompareFormula) Op() CompareOp { return f.op }

// Left returns the left operand of this formula.
func (f *CompareFormula) Left() Expr { return f.left }

// Right returns the right operand of this formula.
func (f *CompareFormula) Right() Expr { return f.right }

func (f *CompareFormula) node()    {}
func (f *CompareFormula) formula() {}

// MultOp identifies a multiplicity assertion.
type MultOp uint8

// Multiplicity assertions.
const (
	// SomeMult requires a non-zero cell.
	SomeMult MultOp = iota
	// NoMult requires every cell to be zero.
	NoMult
	// OneMult requires exactly one non-zero cell.
	OneMult
	// LoneMult requires at most one non-zero cell.
	LoneMult
)

// MultFormula asserts a multiplicity over an expression.
type MultFormula struct {
	op  MultOp
	sub Expr
}

// NewMultFormula asserts a multiplicity over an expression.
func NewMultFormula(op MultOp, sub Expr) *MultFormula { return &MultFormula{op, sub} }

// Op returns the multiplicity of this formula.
func (f *MultFormula) Op() MultOp { return f.op }

// Sub returns the operand of this formula.
func (f *MultFormula) Sub() Expr { return f.sub }

func (f *MultFormula) node()    {}
func (f *MultFormula) formula() {}

// Quantifier identifies a quantified formula.
type Quantifier uint8

// Quantifiers.
const (
	// All is universal quantification.
	All Quantifier = iota
	// Exists is existential quantification.
	Exists
)

// QuantFormula is a quantified formula over one or more declarations.
type QuantFormula struct {
	quantifier Quantifier
	decls      []*Decl
	body       Formula
}

// NewQuantFormula quantifies the body over the given declarations.
func NewQuantFormula(quantifier Quantifier, decls []*Decl, body Formula) *QuantFormula {
	return &QuantFormula{quantifier, decls, body}
}

// Quantifier returns the quantifier of this formula.
func (f *QuantFormula) Quantifier() Quantifier { return f.quantifier }

// Decls returns the declarations of this formula.
func (f *QuantFormula) Decls() []*Decl { return f.decls }

// Body returns the body of this formula.
func (f *QuantFormula) Body() Formula { return f.body }

func (f *QuantFormula) node()    {}
func (f *QuantFormula) formula() {}

// NotFormula negates a formula.
type NotFormula struct {
	sub Formula
}

// Not negates the given formula.
func Not(sub Formula) *NotFormula { return &NotFormula{sub} }

// Sub returns the negated formula.
func (f *NotFormula) Sub() Formula { return f.sub }

func (f *NotFormula) node()    {}
func (f *NotFormula) formula() {}

// BinFormulaOp identifies a binary connective.
type BinFormulaOp uint8

// Binary connectives.
const (
	// Conj is conjunction.
	Conj BinFormulaOp = iota
	// Disj is disjunction.
	Disj
	// Implies is implication.
	Implies
	// Iff is bi-implication.
	Iff
)

// BinFormula connects two formulas.
type BinFormula struct {
	op    BinFormulaOp
	left  Formula
	right Formula
}

// NewBinFormula connects two formulas with the given connective.
func NewBinFormula(op BinFormulaOp, left, right Formula) *BinFormula {
	return &BinFormula{op, left, right}
}

// Op returns the connective of this formula.
func (f *BinFormula) Op() BinFormulaOp { return f.op }

// Left returns the left operand of this formula.
func (f *BinFormula) Left() Formula { return f.left }

// Right returns the right operand of this formula.
func (f *BinFormula) Right() Formula { return f.right }

func (f *BinFormula) node()    {}
func (f *BinFormula) formula() {}

// NaryFormula connects zero or more formulas under one connective (Conj or
// Disj).
type NaryFormula struct {
	op   BinFormulaOp
	subs []Formula
}

// And returns the conjunction of the given formulas.
func And(subs ...Formula) *NaryFormula { return &NaryFormula{Conj, subs} }

// Or returns the disjunction of the given formulas.
func Or(subs ...Formula) *NaryFormula { return &NaryFormula{Disj, subs} }

// Op returns the connective of this formula.
func (f *NaryFormula) Op() BinFormulaOp { return f.op }

// Subs returns the operands of this formula.
func (f *NaryFormula) Subs() []Formula { return f.subs }

func (f *NaryFormula) node()    {}
func (f *NaryFormula) formula() {}

// BoolLit is a constant formula.
type BoolLit struct {
	value bool
}

// The constant formulas.
var (
	// TrueFormula is the constant truth.
	TrueFormula = &BoolLit{true}
	// FalseFormula is the constant falsehood.
	FalseFormula = &BoolLit{false}
)

// Value returns the truth value of this formula.
func (f *BoolLit) Value() bool { return f.value }

func (f *BoolLit) node()    {}
func (f *BoolLit) formula() {}
