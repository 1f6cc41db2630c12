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
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/matrix"
)

// translator walks a relational tree in a single post-order traversal,
// mapping expression nodes to matrices and formula nodes to boolean scalars.
// The environment and cache travel with the traversal as explicit state.
type translator struct {
	interp  *LeafInterpreter
	factory *circuit.Factory
	cache   *Cache
	env     *Environment
	// Side obligations emitted by reflexive closures.
	fixedPoint []circuit.Bool
	// Translations of relation and constant leaves, which never depend on
	// the environment.
	leaves map[ast.Node]*matrix.Matrix
}

func newTranslator(interp *LeafInterpreter, annotated *ast.Annotated) *translator {
	return &translator{
		interp:  interp,
		factory: interp.Factory(),
		cache:   NewCache(annotated),
		env:     EmptyEnv(),
		leaves:  make(map[ast.Node]*matrix.Matrix),
	}
}

// ===================================================================
// Formulas
// ===================================================================

func (t *translator) formula(f ast.Formula) circuit.Bool {
	if cached, ok := t.cache.Lookup(f, t.env); ok {
		return cached.(circuit.Bool)
	}

	b := t.formulaUncached(f)
	t.cache.Store(f, b, t.env)

	return b
}

func (t *translator) formulaUncached(f ast.Formula) circuit.Bool {
	fac := t.factory

	switch f := f.(type) {
	case *ast.BoolLit:
		return circuit.BoolConstant(f.Value())

	case *ast.NotFormula:
		t.env.FlipPolarity()
		sub := t.formula(f.Sub())
		t.env.FlipPolarity()

		return fac.Not(sub)

	case *ast.BinFormula:
		return t.connective(f.Op(), t.formula(f.Left()), t.formula(f.Right()))

	case *ast.NaryFormula:
		return t.nary(f)

	case *ast.CompareFormula:
		left, right := t.expr(f.Left()), t.expr(f.Right())

		switch f.Op() {
		case ast.Subset:
			return left.Subset(right)
		case ast.Equal:
			return left.Eq(right)
		case ast.Less:
			return left.Lt(right)
		case ast.LessEq:
			return left.Lte(right)
		case ast.Greater:
			return left.Gt(right)
		default:
			return left.Gte(right)
		}

	case *ast.MultFormula:
		sub := t.expr(f.Sub())

		switch f.Op() {
		case ast.SomeMult:
			return sub.Some()
		case ast.NoMult:
			return sub.None()
		case ast.OneMult:
			return sub.One()
		default:
			return sub.Lone()
		}

	case *ast.QuantFormula:
		if f.Quantifier() == ast.All {
			acc := circuit.NewBoolAccumulator(circuit.AND)
			t.all(f.Decls(), f.Body(), 0, circuit.False, acc)

			return fac.AccumulateBool(acc)
		}

		acc := circuit.NewBoolAccumulator(circuit.OR)
		t.some(f.Decls(), f.Body(), 0, circuit.True, acc)

		return fac.AccumulateBool(acc)

	default:
		panic(faults.NewTranslation(faults.UnboundLeaf, "unexpected formula node %T", f))
	}
}

func (t *translator) connective(op ast.BinFormulaOp, left, right circuit.Bool) circuit.Bool {
	switch op {
	case ast.Conj:
		return t.factory.And(left, right)
	case ast.Disj:
		return t.factory.Or(left, right)
	case ast.Implies:
		return t.factory.Implies(left, right)
	default:
		return t.factory.Iff(left, right)
	}
}

func (t *translator) nary(f *ast.NaryFormula) circuit.Bool {
	var op circuit.NaryOp
	if f.Op() == ast.Conj {
		op = circuit.AND
	} else if f.Op() == ast.Disj {
		op = circuit.OR
	} else {
		panic(faults.NewTranslation(faults.UnboundLeaf, "n-ary formula with non-associative connective"))
	}

	acc := circuit.NewBoolAccumulator(op)
	for _, sub := range f.Subs() {
		if dom := acc.Add(t.formula(sub)); dom != nil {
			return dom
		}
	}

	return t.factory.AccumulateBool(acc)
}

// all accumulates !declConstraints | body over the cartesian product of the
// declaration supports.
func (t *translator) all(decls []*ast.Decl, body ast.Formula, current int, constraints circuit.Bool, acc *circuit.BoolAccumulator) {
	fac := t.factory

	if current == len(decls) {
		acc.Add(fac.Or(constraints, t.formula(body)))
		return
	}

	d := decls[current]
	t.checkDecl(d)

	for index, v := range t.expr(d.Expr()).All() {
		saved := t.env
		t.env = t.env.Extend(d.Variable(), t.unit(index), index)
		t.all(decls, body, current+1, fac.Or(constraints, fac.Not(fac.Drop(v))), acc)
		t.env = saved
	}
}

// some accumulates declConstraints & body over the cartesian product of the
// declaration supports.
func (t *translator) some(decls []*ast.Decl, body ast.Formula, current int, constraints circuit.Bool, acc *circuit.BoolAccumulator) {
	fac := t.factory

	if current == len(decls) {
		acc.Add(fac.And(constraints, t.formula(body)))
		return
	}

	d := decls[current]
	t.checkDecl(d)

	for index, v := range t.expr(d.Expr()).All() {
		saved := t.env
		t.env = t.env.Extend(d.Variable(), t.unit(index), index)
		t.some(decls, body, current+1, fac.And(constraints, fac.Drop(v)), acc)
		t.env = saved
	}
}

func (t *translator) checkDecl(d *ast.Decl) {
	if d.Multiplicity() != ast.OneOf {
		panic(faults.NewTranslation(faults.HigherOrder,
			"declaration of %s has a higher-order multiplicity", d.Variable().Name()))
	}

	if d.Expr().Arity() != 1 {
		panic(faults.NewTranslation(faults.HigherOrder,
			"declaration of %s ranges over a non-unary expression", d.Variable().Name()))
	}
}

// unit returns the boolean unit vector holding ONE at the given atom index.
func (t *translator) unit(index int) *matrix.Matrix {
	m := matrix.NewBinary(matrix.Square(t.interp.Universe().Size(), 1), t.factory)
	m.Set(index, circuit.One)

	return m
}

// ===================================================================
// Expressions
// ===================================================================

func (t *translator) expr(e ast.Expr) *matrix.Matrix {
	// Relation and constant leaves bypass the environment cache.
	switch e := e.(type) {
	case *ast.Relation:
		return t.leaf(e, func() *matrix.Matrix { return t.interp.Interpret(e) })
	case *ast.ConstExpr:
		return t.leaf(e, func() *matrix.Matrix { return t.interp.InterpretConst(e) })
	case *ast.ConstInt:
		return t.leaf(e, func() *matrix.Matrix { return t.interp.InterpretConstInt(e.Value()) })
	case *ast.Variable:
		if m, ok := t.env.Lookup(e); ok {
			return m
		}

		panic(faults.NewTranslation(faults.UnboundLeaf, "unbound variable %s", e.Name()))
	}

	if cached, ok := t.cache.Lookup(e, t.env); ok {
		return cached.(*matrix.Matrix)
	}

	m := t.exprUncached(e)
	t.cache.Store(e, m, t.env)

	return m
}

func (t *translator) leaf(e ast.Expr, interpret func() *matrix.Matrix) *matrix.Matrix {
	if m, ok := t.leaves[e]; ok {
		return m
	}

	m := interpret()
	t.leaves[e] = m

	return m
}

func (t *translator) exprUncached(e ast.Expr) *matrix.Matrix {
	fac := t.factory

	switch e := e.(type) {
	case *ast.UnaryExpr:
		sub := t.expr(e.Sub())

		switch e.Op() {
		case ast.Transpose:
			return sub.Transpose()
		case ast.Closure:
			return sub.Closure()
		case ast.ReflexiveClosure:
			return sub.ReflexiveClosure(&t.fixedPoint)
		case ast.Drop:
			return sub.Drop()
		case ast.Cardinality:
			return sub.Cardinality()
		case ast.SumCells:
			return sub.Sum()
		case ast.Negate:
			return sub.Negate()
		case ast.Abs:
			return sub.Abs()
		default:
			return sub.Signum()
		}

	case *ast.BinaryExpr:
		left, right := t.expr(e.Left()), t.expr(e.Right())
		return t.binary(e.Op(), left, right)

	case *ast.AlphaCut:
		return t.expr(e.Sub()).AlphaCut(fac.Constant(e.Alpha()))

	case *ast.IfExpr:
		cond := t.formula(e.Cond())
		return t.expr(e.Then()).Choice(cond, t.expr(e.Else()))

	case *ast.ProjectExpr:
		sub := t.expr(e.Sub())
		columns := make([]circuit.Num, len(e.Columns()))

		for i, col := range e.Columns() {
			columns[i] = t.scalar(col)
		}

		return sub.Project(columns)

	case *ast.Comprehension:
		m := matrix.New(matrix.Square(t.interp.Universe().Size(), len(e.Decls())), fac)
		t.comprehension(e.Decls(), e.Formula(), 0, circuit.True, 0, m)

		return m

	case *ast.QtComprehension:
		m := matrix.New(matrix.Square(t.interp.Universe().Size(), len(e.Decls())), fac)
		t.qtComprehension(e.Decls(), e.Body(), 0, circuit.True, 0, m)

		return m

	case *ast.SumExpr:
		acc := circuit.NewNumAccumulator(circuit.PLUS)
		t.sum(e.Decls(), e.Body(), 0, circuit.True, acc)

		return t.broadcast(fac.Accumulate(acc))

	default:
		panic(faults.NewTranslation(faults.UnboundLeaf, "unexpected expression node %T", e))
	}
}

func (t *translator) binary(op ast.BinaryExprOp, left, right *matrix.Matrix) *matrix.Matrix {
	switch op {
	case ast.Union:
		return left.Union(right)
	case ast.Intersection:
		return left.Intersection(right)
	case ast.LeftIntersection:
		return left.LeftIntersection(right)
	case ast.RightIntersection:
		return left.RightIntersection(right)
	case ast.Difference:
		return left.Difference(right)
	case ast.Override:
		return left.Override(right)
	case ast.Join:
		return left.Dot(right)
	case ast.MultiJoin:
		return left.MultiDot(right)
	case ast.Product:
		return left.Cross(right)
	case ast.DomainRestrict:
		return right.Domain(left)
	case ast.RangeRestrict:
		return left.Range(right)
	case ast.KhatriRao:
		return left.KhatriRao(right)
	case ast.Plus:
		return left.Plus(right)
	case ast.Minus:
		return left.Minus(right)
	case ast.Hadamard:
		return left.Product(right)
	case ast.Divide:
		return left.Divide(right)
	default:
		return left.Modulo(right)
	}
}

// scalar reads an expression used in a numeric position: the shared value of
// its broadcast translation.
func (t *translator) scalar(e ast.Expr) circuit.Num {
	return circuit.ToNum(t.expr(e).First())
}

// broadcast returns a constant unary matrix holding the given scalar at every
// atom.
func (t *translator) broadcast(v circuit.Num) *matrix.Matrix {
	n := t.interp.Universe().Size()
	m := matrix.New(matrix.Square(n, 1), t.factory)

	for i := 0; i < n; i++ {
		m.Set(i, v)
	}

	return m
}

// comprehension fills the result matrix of { decls | formula }: the cell of
// each declaration tuple holds formula & declConstraints.
func (t *translator) comprehension(decls []*ast.Decl, body ast.Formula, current int, constraints circuit.Bool, partial int, m *matrix.Matrix) {
	fac := t.factory

	if current == len(decls) {
		if value := fac.And(constraints, t.formula(body)); value != circuit.False {
			m.Set(partial, fac.ToBinary(value))
		}

		return
	}

	d := decls[current]
	t.checkDecl(d)

	n := t.interp.Universe().Size()

	for index, v := range t.expr(d.Expr()).All() {
		saved := t.env
		t.env = t.env.Extend(d.Variable(), t.unit(index), index)
		t.comprehension(decls, body, current+1, fac.And(constraints, fac.Drop(v)), partial*n+index, m)
		t.env = saved
	}
}

// qtComprehension fills the result matrix of the weighted comprehension
// { decls | e }, storing the numeric body under the declaration guard.
func (t *translator) qtComprehension(decls []*ast.Decl, body ast.Expr, current int, constraints circuit.Bool, partial int, m *matrix.Matrix) {
	fac := t.factory

	if current == len(decls) {
		m.Set(partial, fac.Guard(constraints, t.scalar(body)))
		return
	}

	d := decls[current]
	t.checkDecl(d)

	n := t.interp.Universe().Size()

	for index, v := range t.expr(d.Expr()).All() {
		saved := t.env
		t.env = t.env.Extend(d.Variable(), t.unit(index), index)
		t.qtComprehension(decls, body, current+1, fac.And(constraints, fac.Drop(v)), partial*n+index, m)
		t.env = saved
	}
}

// sum accumulates the summands of sum decls | e, guarding each by its
// declaration constraints.
func (t *translator) sum(decls []*ast.Decl, body ast.Expr, current int, constraints circuit.Bool, acc *circuit.NumAccumulator) {
	fac := t.factory

	if current == len(decls) {
		acc.Add(fac.Guard(constraints, t.scalar(body)))
		return
	}

	d := decls[current]
	t.checkDecl(d)

	for index, v := range t.expr(d.Expr()).All() {
		saved := t.env
		t.env = t.env.Extend(d.Variable(), t.unit(index), index)
		t.sum(decls, body, current+1, fac.And(constraints, fac.Drop(v)), acc)
		t.env = saved
	}
}
