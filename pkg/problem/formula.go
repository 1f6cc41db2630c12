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
package problem

import (
	"errors"
	"fmt"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/sexp"
	"github.com/shopspring/decimal"
)

func oneFormula(op string, args []ast.Node) (ast.Formula, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects one formula", op)
	}

	f, ok := args[0].(ast.Formula)
	if !ok {
		return nil, fmt.Errorf("%s expects a formula", op)
	}

	return f, nil
}

// translator builds the formula translator lazily, after the relations are
// known.
func (p *parser) translator() *sexp.Translator[ast.Node] {
	if p.nodes != nil {
		return p.nodes
	}

	t := sexp.NewTranslator[ast.Node]()
	p.nodes = t

	t.AddSymbolRule(p.symbol)

	// Connectives.
	t.AddRecursiveRule("and", p.naryFormula(ast.Conj))
	t.AddRecursiveRule("or", p.naryFormula(ast.Disj))
	t.AddRecursiveRule("implies", p.binFormula(ast.Implies))
	t.AddRecursiveRule("iff", p.binFormula(ast.Iff))
	t.AddRecursiveRule("not", func(args []ast.Node) (ast.Node, error) {
		f, err := oneFormula("not", args)
		if err != nil {
			return nil, err
		}

		return ast.Not(f), nil
	})

	// Comparisons.
	t.AddRecursiveRule("in", p.compare(ast.Subset))
	t.AddRecursiveRule("=", p.compare(ast.Equal))
	t.AddRecursiveRule("<", p.compare(ast.Less))
	t.AddRecursiveRule("<=", p.compare(ast.LessEq))
	t.AddRecursiveRule(">", p.compare(ast.Greater))
	t.AddRecursiveRule(">=", p.compare(ast.GreaterEq))

	// Multiplicities double as quantifiers when given a binding list.
	t.AddListRule("some", p.multOrQuant(ast.SomeMult, ast.Exists))
	t.AddListRule("all", p.quantifier(ast.All))
	t.AddRecursiveRule("no", p.multiplicity(ast.NoMult))
	t.AddRecursiveRule("one", p.multiplicity(ast.OneMult))
	t.AddRecursiveRule("lone", p.multiplicity(ast.LoneMult))

	// Relational operators.
	t.AddRecursiveRule("+", p.binExpr(ast.Union))
	t.AddRecursiveRule("&", p.binExpr(ast.Intersection))
	t.AddRecursiveRule("l&", p.binExpr(ast.LeftIntersection))
	t.AddRecursiveRule("r&", p.binExpr(ast.RightIntersection))
	t.AddRecursiveRule("-", p.binExpr(ast.Difference))
	t.AddRecursiveRule("++", p.binExpr(ast.Override))
	t.AddRecursiveRule(".", p.binExpr(ast.Join))
	t.AddRecursiveRule("mdot", p.binExpr(ast.MultiJoin))
	t.AddRecursiveRule("->", p.binExpr(ast.Product))
	t.AddRecursiveRule("<:", p.binExpr(ast.DomainRestrict))
	t.AddRecursiveRule(":>", p.binExpr(ast.RangeRestrict))
	t.AddRecursiveRule("kr", p.binExpr(ast.KhatriRao))

	// Numeric operators.
	t.AddRecursiveRule("add", p.binExpr(ast.Plus))
	t.AddRecursiveRule("sub", p.binExpr(ast.Minus))
	t.AddRecursiveRule("mul", p.binExpr(ast.Hadamard))
	t.AddRecursiveRule("div", p.binExpr(ast.Divide))
	t.AddRecursiveRule("mod", p.binExpr(ast.Modulo))

	// Unary operators.
	t.AddRecursiveRule("~", p.unaryExpr(ast.Transpose))
	t.AddRecursiveRule("^", p.unaryExpr(ast.Closure))
	t.AddRecursiveRule("*", p.unaryExpr(ast.ReflexiveClosure))
	t.AddRecursiveRule("drop", p.unaryExpr(ast.Drop))
	t.AddRecursiveRule("#", p.unaryExpr(ast.Cardinality))
	t.AddRecursiveRule("neg", p.unaryExpr(ast.Negate))
	t.AddRecursiveRule("abs", p.unaryExpr(ast.Abs))
	t.AddRecursiveRule("sgn", p.unaryExpr(ast.Signum))

	// Alpha cut: (alpha e threshold).
	t.AddListRule("alpha", func(elements []sexp.SExp) (ast.Node, error) {
		if len(elements) != 3 {
			return nil, errors.New("alpha expects an expression and a threshold")
		}

		e, err := p.expr(elements[1])
		if err != nil {
			return nil, err
		}

		text, _ := sexp.SymbolValue(elements[2])

		threshold, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid alpha threshold %q", text)
		}

		return ast.NewAlphaCut(e, threshold), nil
	})

	// Choice: (ite f e1 e2).
	t.AddListRule("ite", func(elements []sexp.SExp) (ast.Node, error) {
		if len(elements) != 4 {
			return nil, errors.New("ite expects a condition and two expressions")
		}

		cond, err := p.formulaArg(elements[1])
		if err != nil {
			return nil, err
		}

		then, err := p.expr(elements[2])
		if err != nil {
			return nil, err
		}

		els, err := p.expr(elements[3])
		if err != nil {
			return nil, err
		}

		return ast.NewIfExpr(cond, then, els), nil
	})

	// Projection: (project e col+).
	t.AddRecursiveRule("project", func(args []ast.Node) (ast.Node, error) {
		if len(args) < 2 {
			return nil, errors.New("project expects an expression and columns")
		}

		sub, ok := args[0].(ast.Expr)
		if !ok {
			return nil, errors.New("project expects an expression")
		}

		cols := make([]ast.Expr, len(args)-1)

		for i, a := range args[1:] {
			col, ok := a.(ast.Expr)
			if !ok {
				return nil, errors.New("project columns must be expressions")
			}

			cols[i] = col
		}

		return ast.NewProjectExpr(sub, cols), nil
	})

	// Comprehensions and sums.
	t.AddListRule("set", func(elements []sexp.SExp) (ast.Node, error) {
		decls, body, err := p.binding("set", elements)
		if err != nil {
			return nil, err
		}

		f, ok := body.(ast.Formula)
		if !ok {
			return nil, errors.New("set expects a formula body")
		}

		return ast.NewComprehension(decls, f), nil
	})
	t.AddListRule("setq", func(elements []sexp.SExp) (ast.Node, error) {
		decls, body, err := p.binding("setq", elements)
		if err != nil {
			return nil, err
		}

		e, ok := body.(ast.Expr)
		if !ok {
			return nil, errors.New("setq expects an expression body")
		}

		return ast.NewQtComprehension(decls, e), nil
	})
	t.AddListRule("sum", func(elements []sexp.SExp) (ast.Node, error) {
		if len(elements) == 2 {
			// (sum e): the sum of all cells of an expression.
			e, err := p.expr(elements[1])
			if err != nil {
				return nil, err
			}

			return ast.NewUnaryExpr(ast.SumCells, e), nil
		}

		decls, body, err := p.binding("sum", elements)
		if err != nil {
			return nil, err
		}

		e, ok := body.(ast.Expr)
		if !ok {
			return nil, errors.New("sum expects an expression body")
		}

		return ast.NewSumExpr(decls, e), nil
	})

	return t
}

// node translates one s-expression into an AST node.
func (p *parser) node(e sexp.SExp) (ast.Node, error) {
	return p.translator().Translate(e)
}

func (p *parser) expr(e sexp.SExp) (ast.Expr, error) {
	n, err := p.node(e)
	if err != nil {
		return nil, err
	}

	x, ok := n.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("expected an expression, got %s", e)
	}

	return x, nil
}

func (p *parser) formulaArg(e sexp.SExp) (ast.Formula, error) {
	n, err := p.node(e)
	if err != nil {
		return nil, err
	}

	f, ok := n.(ast.Formula)
	if !ok {
		return nil, fmt.Errorf("expected a formula, got %s", e)
	}

	return f, nil
}

// symbol resolves a terminal: a constant expression, a numeric literal, a
// declared relation, or a quantification variable.
func (p *parser) symbol(name string) (ast.Node, error) {
	switch name {
	case "univ":
		return ast.Univ, nil
	case "iden":
		return ast.Iden, nil
	case "none":
		return ast.None, nil
	case "ints":
		return ast.Ints, nil
	case "true":
		return ast.TrueFormula, nil
	case "false":
		return ast.FalseFormula, nil
	}

	if d, err := decimal.NewFromString(name); err == nil {
		return ast.NewConstInt(d), nil
	}

	if r, ok := p.relations[name]; ok {
		return r, nil
	}

	// Anything else is a quantification variable; same name, same variable.
	if v, ok := p.variables[name]; ok {
		return v, nil
	}

	v := ast.NewVariable(name)
	p.variables[name] = v

	return v, nil
}

// binding reads the (name ((x e)+) body) shape shared by quantifiers,
// comprehensions and sums.
func (p *parser) binding(name string, elements []sexp.SExp) ([]*ast.Decl, ast.Node, error) {
	if len(elements) != 3 {
		return nil, nil, fmt.Errorf("%s expects a binding list and a body", name)
	}

	bindings, ok := elements[1].(*sexp.List)
	if !ok {
		return nil, nil, fmt.Errorf("%s expects a binding list", name)
	}

	decls := make([]*ast.Decl, 0, bindings.Len())

	for _, b := range bindings.Elements {
		pair, ok := b.(*sexp.List)
		if !ok || pair.Len() != 2 {
			return nil, nil, fmt.Errorf("malformed binding %s", b)
		}

		varName, ok := sexp.SymbolValue(pair.Elements[0])
		if !ok {
			return nil, nil, fmt.Errorf("malformed binding %s", b)
		}

		rangeExpr, err := p.expr(pair.Elements[1])
		if err != nil {
			return nil, nil, err
		}

		n, err := p.symbol(varName)
		if err != nil {
			return nil, nil, err
		}

		v, ok := n.(*ast.Variable)
		if !ok {
			return nil, nil, fmt.Errorf("binding name %q is already a relation", varName)
		}

		decls = append(decls, ast.NewDecl(v, rangeExpr))
	}

	body, err := p.node(elements[2])
	if err != nil {
		return nil, nil, err
	}

	return decls, body, nil
}

func (p *parser) quantifier(q ast.Quantifier) sexp.ListRule[ast.Node] {
	return func(elements []sexp.SExp) (ast.Node, error) {
		decls, body, err := p.binding("quantifier", elements)
		if err != nil {
			return nil, err
		}

		f, ok := body.(ast.Formula)
		if !ok {
			return nil, errors.New("quantified body must be a formula")
		}

		return ast.NewQuantFormula(q, decls, f), nil
	}
}

// multOrQuant disambiguates (some e) from (some ((x e)) f) by the shape of
// the first argument.
func (p *parser) multOrQuant(m ast.MultOp, q ast.Quantifier) sexp.ListRule[ast.Node] {
	return func(elements []sexp.SExp) (ast.Node, error) {
		if len(elements) == 3 {
			return p.quantifier(q)(elements)
		}

		if len(elements) == 2 {
			e, err := p.expr(elements[1])
			if err != nil {
				return nil, err
			}

			return ast.NewMultFormula(m, e), nil
		}

		return nil, errors.New("some expects an expression or a binding list and a body")
	}
}

func (p *parser) multiplicity(m ast.MultOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("multiplicity expects one expression")
		}

		e, ok := args[0].(ast.Expr)
		if !ok {
			return nil, errors.New("multiplicity expects an expression")
		}

		return ast.NewMultFormula(m, e), nil
	}
}

func (p *parser) naryFormula(op ast.BinFormulaOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		subs := make([]ast.Formula, len(args))

		for i, a := range args {
			f, ok := a.(ast.Formula)
			if !ok {
				return nil, errors.New("connective arguments must be formulas")
			}

			subs[i] = f
		}

		if op == ast.Conj {
			return ast.And(subs...), nil
		}

		return ast.Or(subs...), nil
	}
}

func (p *parser) binFormula(op ast.BinFormulaOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 2 {
			return nil, errors.New("connective expects two formulas")
		}

		left, ok1 := args[0].(ast.Formula)
		right, ok2 := args[1].(ast.Formula)

		if !ok1 || !ok2 {
			return nil, errors.New("connective arguments must be formulas")
		}

		return ast.NewBinFormula(op, left, right), nil
	}
}

func (p *parser) compare(op ast.CompareOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 2 {
			return nil, errors.New("comparison expects two expressions")
		}

		left, ok1 := args[0].(ast.Expr)
		right, ok2 := args[1].(ast.Expr)

		if !ok1 || !ok2 {
			return nil, errors.New("comparison arguments must be expressions")
		}

		return ast.NewCompareFormula(op, left, right), nil
	}
}

func (p *parser) binExpr(op ast.BinaryExprOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 2 {
			return nil, errors.New("operator expects two expressions")
		}

		left, ok1 := args[0].(ast.Expr)
		right, ok2 := args[1].(ast.Expr)

		if !ok1 || !ok2 {
			return nil, errors.New("operator arguments must be expressions")
		}

		return ast.NewBinaryExpr(op, left, right), nil
	}
}

func (p *parser) unaryExpr(op ast.UnaryExprOp) sexp.RecursiveRule[ast.Node] {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 1 {
			return nil, errors.New("operator expects one expression")
		}

		e, ok := args[0].(ast.Expr)
		if !ok {
			return nil, errors.New("operator argument must be an expression")
		}

		return ast.NewUnaryExpr(op, e), nil
	}
}
