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

// Package problem reads a quantitative relational problem from its
// s-expression debug format: a universe, per-relation bounds with optional
// tuple weights, solving options, and a formula.  It is a harness for the
// core pipeline, not a surface language.
package problem

import (
	"errors"
	"fmt"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/sexp"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/quantrel/go-quantrel/pkg/solver"
	"github.com/shopspring/decimal"
)

// Problem is a parsed problem, ready for solving.
type Problem struct {
	Universe *instance.Universe
	Bounds   *instance.Bounds
	Formula  ast.Formula
	Options  solver.Options
}

// Parse reads a problem from its s-expression source.
func Parse(source string) (*Problem, error) {
	terms, err := sexp.ParseAll(source)
	if err != nil {
		return nil, err
	}

	p := &parser{
		relations: make(map[string]*ast.Relation),
		variables: make(map[string]*ast.Variable),
	}

	return p.problem(terms)
}

type parser struct {
	universe  *instance.Universe
	bounds    *instance.Bounds
	relations map[string]*ast.Relation
	variables map[string]*ast.Variable
	options   solver.Options
	formula   ast.Formula
	nodes     *sexp.Translator[ast.Node]
}

func (p *parser) problem(terms []sexp.SExp) (*Problem, error) {
	for _, term := range terms {
		list, ok := term.(*sexp.List)
		if !ok || list.Len() == 0 {
			return nil, fmt.Errorf("expected a declaration list, got %s", term)
		}

		head, _ := sexp.SymbolValue(list.Elements[0])

		var err error

		switch head {
		case "universe":
			err = p.parseUniverse(list)
		case "relation":
			err = p.parseRelation(list)
		case "option":
			err = p.parseOption(list)
		case "formula":
			err = p.parseFormula(list)
		default:
			err = fmt.Errorf("unknown declaration %q", head)
		}

		if err != nil {
			return nil, err
		}
	}

	if p.universe == nil {
		return nil, errors.New("no universe declared")
	}

	if p.formula == nil {
		return nil, errors.New("no formula declared")
	}

	return &Problem{p.universe, p.bounds, p.formula, p.options}, nil
}

func (p *parser) parseUniverse(list *sexp.List) error {
	if p.universe != nil {
		return errors.New("duplicate universe declaration")
	}

	atoms, ok := (&sexp.List{Elements: list.Elements[1:]}).Symbols()
	if !ok {
		return errors.New("universe atoms must be symbols")
	}

	universe, err := instance.NewUniverse(atoms)
	if err != nil {
		return err
	}

	p.universe = universe
	p.bounds = instance.NewBounds(universe)

	return nil
}

// parseRelation reads (relation name arity [quantitative] (lower tuple*)
// (upper tuple*)).  A tuple is (atom+ [weight]).
func (p *parser) parseRelation(list *sexp.List) error {
	if p.universe == nil {
		return errors.New("universe must be declared before relations")
	}

	if list.Len() < 3 {
		return fmt.Errorf("malformed relation declaration %s", list)
	}

	name, _ := sexp.SymbolValue(list.Elements[1])
	arityText, _ := sexp.SymbolValue(list.Elements[2])

	arity, err := decimal.NewFromString(arityText)
	if err != nil || !arity.IsInteger() || arity.Sign() <= 0 {
		return fmt.Errorf("relation %s has invalid arity %q", name, arityText)
	}

	rest := list.Elements[3:]
	quantitative := false

	if len(rest) > 0 {
		if s, ok := sexp.SymbolValue(rest[0]); ok && s == "quantitative" {
			quantitative = true
			rest = rest[1:]
		}
	}

	var r *ast.Relation
	if quantitative {
		r = ast.NewQuantitativeRelation(name, int(arity.IntPart()))
	} else {
		r = ast.NewRelation(name, int(arity.IntPart()))
	}

	lower := instance.NewTupleSet(p.universe, r.Arity())
	upper := instance.NewTupleSet(p.universe, r.Arity())

	for _, bound := range rest {
		boundList, ok := bound.(*sexp.List)
		if !ok || boundList.Len() == 0 {
			return fmt.Errorf("malformed bound in relation %s", name)
		}

		kind, _ := sexp.SymbolValue(boundList.Elements[0])

		var target *instance.TupleSet

		switch kind {
		case "lower":
			target = lower
		case "upper":
			target = upper
		default:
			return fmt.Errorf("unknown bound kind %q in relation %s", kind, name)
		}

		for _, tuple := range boundList.Elements[1:] {
			if err := p.parseTuple(target, r, tuple); err != nil {
				return err
			}
		}
	}

	// Lower-bound tuples are implicitly in the upper bound.
	for index := range lower.All() {
		if !upper.Contains(index) {
			upper.AddWeighted(index, lower.Weight(index))
		}
	}

	if err := p.bounds.Bound(r, lower, upper); err != nil {
		return err
	}

	p.relations[name] = r

	return nil
}

func (p *parser) parseTuple(target *instance.TupleSet, r *ast.Relation, tuple sexp.SExp) error {
	list, ok := tuple.(*sexp.List)
	if !ok {
		return fmt.Errorf("malformed tuple %s in relation %s", tuple, r.Name())
	}

	parts, ok := list.Symbols()
	if !ok {
		return fmt.Errorf("malformed tuple %s in relation %s", tuple, r.Name())
	}

	// A trailing numeric part is the tuple weight.
	weight := decimal.NewFromInt(1)
	weighted := false

	if len(parts) == r.Arity()+1 {
		w, err := decimal.NewFromString(parts[len(parts)-1])
		if err != nil {
			return fmt.Errorf("invalid weight %q in relation %s", parts[len(parts)-1], r.Name())
		}

		weight = w
		weighted = true
		parts = parts[:len(parts)-1]
	}

	index, err := target.IndexOf(parts...)
	if err != nil {
		return err
	}

	if weighted {
		target.AddWeighted(index, weight)
	} else {
		target.Add(index)
	}

	return nil
}

// parseOption reads (option name value).
func (p *parser) parseOption(list *sexp.List) error {
	if list.Len() != 3 {
		return fmt.Errorf("malformed option %s", list)
	}

	name, _ := sexp.SymbolValue(list.Elements[1])
	value, _ := sexp.SymbolValue(list.Elements[2])

	switch name {
	case "solver":
		kind, ok := smt.ParseSolverKind(value)
		if !ok {
			return fmt.Errorf("unknown solver %q", value)
		}

		p.options.Solver = kind
	case "domain":
		switch value {
		case "INTEGER", "integer":
			p.options.Domain = circuit.Integer
		case "FUZZY", "fuzzy":
			p.options.Domain = circuit.Fuzzy
		default:
			return fmt.Errorf("unknown domain %q", value)
		}
	case "tnorm":
		t, ok := circuit.ParseTnorm(value)
		if !ok {
			return fmt.Errorf("unknown t-norm %q", value)
		}

		p.options.Tnorm = t
	case "binary":
		p.options.BinaryPath = value
	case "incremental":
		p.options.Incremental = value == "true"
	case "max-weight":
		w, err := decimal.NewFromString(value)
		if err != nil || !w.IsInteger() {
			return fmt.Errorf("invalid max-weight %q", value)
		}

		max := w.IntPart()
		p.options.MaxWeight = &max
	default:
		return fmt.Errorf("unknown option %q", name)
	}

	return nil
}

func (p *parser) parseFormula(list *sexp.List) error {
	if p.formula != nil {
		return errors.New("duplicate formula declaration")
	}

	if list.Len() != 2 {
		return fmt.Errorf("malformed formula declaration %s", list)
	}

	node, err := p.node(list.Elements[1])
	if err != nil {
		return err
	}

	formula, ok := node.(ast.Formula)
	if !ok {
		return errors.New("the declared formula is an expression, not a formula")
	}

	p.formula = formula

	return nil
}
