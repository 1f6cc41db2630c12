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

// Package translate lowers relational formulas over finite bounds into
// numeric circuits.  The deep builders raise typed faults by panicking; the
// entry points of this package recover them into ordinary errors, so a
// translation either succeeds completely or surfaces its first fault with no
// partial results.
package translate

import (
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/matrix"
)

// Translation is the result of lowering a problem: the root circuit, the
// fixed-point obligations of reflexive closures, and the primary variable
// allocation needed to lift a model back into an instance.
type Translation struct {
	bounds     *instance.Bounds
	config     circuit.Config
	factory    *circuit.Factory
	interp     *LeafInterpreter
	root       circuit.Bool
	fixedPoint []circuit.Bool
	varMap     map[*ast.Relation]VarRange
}

// Translate lowers the given formula under the given bounds.
func Translate(formula ast.Formula, bounds *instance.Bounds, config circuit.Config) (tr *Translation, err error) {
	defer faults.Recover(&err)

	interp := Exact(bounds, config)
	annotated := ast.Annotate(formula)
	tx := newTranslator(interp, annotated)
	root := tx.formula(formula)

	return &Translation{
		bounds:     bounds,
		config:     config,
		factory:    interp.Factory(),
		interp:     interp,
		root:       root,
		fixedPoint: tx.fixedPoint,
		varMap:     interp.VarMap(),
	}, nil
}

// Evaluate translates the given formula against an exact instance, folding
// it to a constant truth value without introducing variables.
func Evaluate(formula ast.Formula, inst *instance.Instance, config circuit.Config) (value bool, err error) {
	defer faults.Recover(&err)

	interp := ExactInstance(inst, config)
	annotated := ast.Annotate(formula)
	tx := newTranslator(interp, annotated)

	root, ok := tx.formula(formula).(*circuit.BoolConst)
	if !ok {
		return false, faults.NewTranslation(faults.UnboundLeaf,
			"formula did not fold to a constant over an exact instance")
	}

	return root.Value(), nil
}

// EvaluateExpr translates the given expression against an exact instance,
// yielding its constant matrix.
func EvaluateExpr(e ast.Expr, inst *instance.Instance, config circuit.Config) (m *matrix.Matrix, err error) {
	defer faults.Recover(&err)

	interp := ExactInstance(inst, config)
	annotated := ast.Annotate(e)
	tx := newTranslator(interp, annotated)

	return tx.expr(e), nil
}

// Bounds returns the bounds of this translation.
func (tr *Translation) Bounds() *instance.Bounds { return tr.bounds }

// Config returns the factory configuration of this translation.
func (tr *Translation) Config() circuit.Config { return tr.config }

// Factory returns the factory owning every scalar of this translation.
func (tr *Translation) Factory() *circuit.Factory { return tr.factory }

// Root returns the root circuit of the translated formula.
func (tr *Translation) Root() circuit.Bool { return tr.root }

// FixedPoint returns the fixed-point equations emitted by reflexive
// closures.
func (tr *Translation) FixedPoint() []circuit.Bool { return tr.fixedPoint }

// PrimaryVars returns the label range assigned to the given relation.
func (tr *Translation) PrimaryVars(r *ast.Relation) (VarRange, bool) {
	vr, ok := tr.varMap[r]
	return vr, ok
}

// VarMap returns the label range of every relation.
func (tr *Translation) VarMap() map[*ast.Relation]VarRange { return tr.varMap }

// NumPrimaryVariables returns the number of primary variables allocated.
func (tr *Translation) NumPrimaryVariables() int { return tr.factory.MaxVariable() }

// Trivial reports whether the root circuit folded to a constant, so no
// solver call is needed.
func (tr *Translation) Trivial() bool {
	_, ok := tr.root.(*circuit.BoolConst)
	return ok && len(tr.fixedPoint) == 0
}

// TriviallySat reports whether a trivial translation folded to truth.
func (tr *Translation) TriviallySat() bool {
	c, ok := tr.root.(*circuit.BoolConst)
	return ok && c.Value()
}
