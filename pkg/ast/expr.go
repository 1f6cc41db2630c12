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

import "github.com/shopspring/decimal"

// ===================================================================
// Leaves
// ===================================================================

// Relation is a relation symbol.  A quantitative relation carries arbitrary
// weights; a boolean relation only ever carries weight one.
type Relation struct {
	name         string
	arity        int
	quantitative bool
}

// NewRelation constructs a boolean relation symbol of the given arity.
func NewRelation(name string, arity int) *Relation {
	return &Relation{name, arity, false}
}

// NewQuantitativeRelation constructs a quantitative relation symbol of the
// given arity.
func NewQuantitativeRelation(name string, arity int) *Relation {
	return &Relation{name, arity, true}
}

// Name returns the name of this relation.
func (r *Relation) Name() string { return r.name }

// Arity implementation for the Expr interface.
func (r *Relation) Arity() int { return r.arity }

// IsQuantitative reports whether this relation may carry non-unit weights.
func (r *Relation) IsQuantitative() bool { return r.quantitative }

func (r *Relation) node() {}

// Variable is a quantification variable.  Variables are always unary.
type Variable struct {
	name string
}

// NewVariable constructs a fresh variable with the given name.
func NewVariable(name string) *Variable { return &Variable{name} }

// Name returns the name of this variable.
func (v *Variable) Name() string { return v.name }

// Arity implementation for the Expr interface.
func (v *Variable) Arity() int { return 1 }

func (v *Variable) node() {}

// ConstKind identifies a constant expression.
type ConstKind uint8

// Constant expressions.
const (
	// UNIV is the unary universe relation.
	UNIV ConstKind = iota
	// IDEN is the binary identity relation.
	IDEN
	// NONE is the empty unary relation.
	NONE
	// INTS is the unary relation of integer atoms.
	INTS
)

// ConstExpr is a constant relational expression.  The four constants are
// shared singletons.
type ConstExpr struct {
	kind ConstKind
}

// The constant expression singletons.
var (
	// Univ is the universe of atoms.
	Univ = &ConstExpr{UNIV}
	// Iden is the identity relation.
	Iden = &ConstExpr{IDEN}
	// None is the empty relation.
	None = &ConstExpr{NONE}
	// Ints is the relation of integer atoms.
	Ints = &ConstExpr{INTS}
)

// Kind returns which constant this expression is.
func (c *ConstExpr) Kind() ConstKind { return c.kind }

// Arity implementation for the Expr interface.
func (c *ConstExpr) Arity() int {
	if c.kind == IDEN {
		return 2
	}

	return 1
}

func (c *ConstExpr) node() {}

// ConstInt is a numeric literal, broadcast over the full universe.
type ConstInt struct {
	value decimal.Decimal
}

// NewConstInt constructs a numeric literal.
func NewConstInt(value decimal.Decimal) *ConstInt { return &ConstInt{value} }

// Value returns the literal value.
func (c *ConstInt) Value() decimal.Decimal { return c.value }

// Arity implementation for the Expr interface.
func (c *ConstInt) Arity() int { return 1 }

func (c *ConstInt) node() {}

// ===================================================================
// Composite expressions
// ===================================================================

// UnaryExprOp identifies a unary expression operator.
type UnaryExprOp uint8

// Unary expression operators.
const (
	// Transpose permutes the two columns of a binary relation.
	Transpose UnaryExprOp = iota
	// Closure is the transitive closure of a binary relation.
	Closure
	// ReflexiveClosure is the reflexive transitive closure.
	ReflexiveClosure
	// Drop reads a relation from the boolean point of view.
	Drop
	// Cardinality is the number of arcs, broadcast as a constant relation.
	Cardinality
	// SumCells is the sum of all weights, broadcast as a constant relation.
	SumCells
	// Negate negates every weight.
	Negate
	// Abs takes the absolute value of every weight.
	Abs
	// Signum takes the sign of every weight.
	Signum
)

// UnaryExpr applies a unary operator to an expression.
type UnaryExpr struct {
	op  UnaryExprOp
	sub Expr
}

// NewUnaryExpr applies a unary operator to an expression.
func NewUnaryExpr(op UnaryExprOp, sub Expr) *UnaryExpr { return &UnaryExpr{op, sub} }

// Op returns the operator of this expression.
func (e *UnaryExpr) Op() UnaryExprOp { return e.op }

// Sub returns the operand of this expression.
func (e *UnaryExpr) Sub() Expr { return e.sub }

// Arity implementation for the Expr interface.
func (e *UnaryExpr) Arity() int { return e.sub.Arity() }

func (e *UnaryExpr) node() {}

// BinaryExprOp identifies a binary expression operator.
type BinaryExprOp uint8

// Binary expression operators.
const (
	// Union is the cellwise tconorm.
	Union BinaryExprOp = iota
	// Intersection is the cellwise tnorm.
	Intersection
	// LeftIntersection gates the cellwise maximum on the left support.
	LeftIntersection
	// RightIntersection gates the cellwise maximum on the right support.
	RightIntersection
	// Difference removes the right relation from the left.
	Difference
	// Override replaces rows of the left by non-zero rows of the right.
	Override
	// Join is the relational (join-meet) composition.
	Join
	// Product is the cross (Kronecker) product.
	Product
	// DomainRestrict keeps rows whose first atom is in the left set.
	DomainRestrict
	// RangeRestrict keeps rows whose last atom is in the right set.
	RangeRestrict
	// KhatriRao is the column-wise Kronecker product.
	KhatriRao
	// Plus is cellwise bounded addition.
	Plus
	// Minus is cellwise bounded subtraction.
	Minus
	// Hadamard is cellwise multiplication.
	Hadamard
	// Divide is cellwise bounded division.
	Divide
	// Modulo is the cellwise remainder.
	Modulo
	// MultiJoin is standard matrix multiplication under plus/times.
	MultiJoin
)

// BinaryExpr applies a binary operator to two expressions.
type BinaryExpr struct {
	op    BinaryExprOp
	left  Expr
	right Expr
}

// NewBinaryExpr applies a binary operator to two expressions.
func NewBinaryExpr(op BinaryExprOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{op, left, right}
}

// Op returns the operator of this expression.
func (e *BinaryExpr) Op() BinaryExprOp { return e.op }

// Left returns the left operand of this expression.
func (e *BinaryExpr) Left() Expr { return e.left }

// Right returns the right operand of this expression.
func (e *BinaryExpr) Right() Expr { return e.right }

// Arity implementation for the Expr interface.
func (e *BinaryExpr) Arity() int {
	switch e.op {
	case Join, MultiJoin:
		return e.left.Arity() + e.right.Arity() - 2
	case Product:
		return e.left.Arity() + e.right.Arity()
	case KhatriRao:
		return e.left.Arity() + e.right.Arity() - 1
	default:
		return e.left.Arity()
	}
}

func (e *BinaryExpr) node() {}

// AlphaCut keeps the tuples whose weight is at least alpha, as a boolean
// relation.
type AlphaCut struct {
	sub   Expr
	alpha decimal.Decimal
}

// NewAlphaCut constructs an alpha-cut of the given expression.
func NewAlphaCut(sub Expr, alpha decimal.Decimal) *AlphaCut { return &AlphaCut{sub, alpha} }

// Sub returns the operand of this expression.
func (e *AlphaCut) Sub() Expr { return e.sub }

// Alpha returns the cut threshold.
func (e *AlphaCut) Alpha() decimal.Decimal { return e.alpha }

// Arity implementation for the Expr interface.
func (e *AlphaCut) Arity() int { return e.sub.Arity() }

func (e *AlphaCut) node() {}

// IfExpr chooses between two expressions of equal arity.
type IfExpr struct {
	cond Formula
	then Expr
	els  Expr
}

// NewIfExpr chooses between two expressions of equal arity.
func NewIfExpr(cond Formula, then, els Expr) *IfExpr { return &IfExpr{cond, then, els} }

// Cond returns the condition of this expression.
func (e *IfExpr) Cond() Formula { return e.cond }

// Then returns the expression taken when the condition holds.
func (e *IfExpr) Then() Expr { return e.then }

// Else returns the expression taken when the condition fails.
func (e *IfExpr) Else() Expr { return e.els }

// Arity implementation for the Expr interface.
func (e *IfExpr) Arity() int { return e.then.Arity() }

func (e *IfExpr) node() {}

// ProjectExpr projects an expression onto the given columns.
type ProjectExpr struct {
	sub  Expr
	cols []Expr
}

// NewProjectExpr projects an expression onto the given columns.
func NewProjectExpr(sub Expr, cols []Expr) *ProjectExpr { return &ProjectExpr{sub, cols} }

// Sub returns the operand of this expression.
func (e *ProjectExpr) Sub() Expr { return e.sub }

// Columns returns the column expressions.
func (e *ProjectExpr) Columns() []Expr { return e.cols }

// Arity implementation for the Expr interface.
func (e *ProjectExpr) Arity() int { return len(e.cols) }

func (e *ProjectExpr) node() {}

// Comprehension is the relation { decls | formula }.
type Comprehension struct {
	decls   []*Decl
	formula Formula
}

// NewComprehension constructs the relation { decls | formula }.
func NewComprehension(decls []*Decl, formula Formula) *Comprehension {
	return &Comprehension{decls, formula}
}

// Decls returns the declarations of this comprehension.
func (e *Comprehension) Decls() []*Decl { return e.decls }

// Formula returns the body of this comprehension.
func (e *Comprehension) Formula() Formula { return e.formula }

// Arity implementation for the Expr interface.
func (e *Comprehension) Arity() int { return len(e.decls) }

func (e *Comprehension) node() {}

// QtComprehension is the weighted relation { decls | body }, storing the
// numeric body under the declaration guard.
type QtComprehension struct {
	decls []*Decl
	body  Expr
}

// NewQtComprehension constructs the weighted relation { decls | body }.
func NewQtComprehension(decls []*Decl, body Expr) *QtComprehension {
	return &QtComprehension{decls, body}
}

// Decls returns the declarations of this comprehension.
func (e *QtComprehension) Decls() []*Decl { return e.decls }

// Body returns the numeric body of this comprehension.
func (e *QtComprehension) Body() Expr { return e.body }

// Arity implementation for the Expr interface.
func (e *QtComprehension) Arity() int { return len(e.decls) }

func (e *QtComprehension) node() {}

// SumExpr is the numeric quantifier sum decls | body, broadcast as a constant
// relation.
type SumExpr struct {
	decls []*Decl
	body  Expr
}

// NewSumExpr constructs the numeric quantifier sum decls | body.
func NewSumExpr(decls []*Decl, body Expr) *SumExpr { return &SumExpr{decls, body} }

// Decls returns the declarations of this sum.
func (e *SumExpr) Decls() []*Decl { return e.decls }

// Body returns the summand of this sum.
func (e *SumExpr) Body() Expr { return e.body }

// Arity implementation for the Expr interface.
func (e *SumExpr) Arity() int { return 1 }

func (e *SumExpr) node() {}

// ===================================================================
// Declarations
// ===================================================================

// Multiplicity constrains a declaration binding.
type Multiplicity uint8

// Declaration multiplicities.  Only ONE is translatable; anything else is a
// higher-order declaration.
const (
	// OneOf binds the variable to a single atom.
	OneOf Multiplicity = iota
	// SomeOf binds the variable to a non-empty subset.
	SomeOf
	// SetOf binds the variable to an arbitrary subset.
	SetOf
)

// Decl declares a quantification variable ranging over an expression.
type Decl struct {
	variable *Variable
	mult     Multiplicity
	expr     Expr
}

// NewDecl declares a variable ranging over the atoms of an expression.
func NewDecl(variable *Variable, expr Expr) *Decl {
	return &Decl{variable, OneOf, expr}
}

// NewDeclMult declares a variable with an explicit multiplicity.
func NewDeclMult(variable *Variable, mult Multiplicity, expr Expr) *Decl {
	return &Decl{variable, mult, expr}
}

// Variable returns the declared variable.
func (d *Decl) Variable() *Variable { return d.variable }

// Multiplicity returns the multiplicity of this declaration.
func (d *Decl) Multiplicity() Multiplicity { return d.mult }

// Expr returns the expression the variable ranges over.
func (d *Decl) Expr() Expr { return d.expr }
