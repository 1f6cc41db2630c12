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
package smt

import (
	"fmt"
	"strings"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/shopspring/decimal"
)

// BuildOptions parameterise the serialisation of a circuit.
type BuildOptions struct {
	// MaxWeight bounds every integer primary variable from above, when set.
	MaxWeight *int64
	// Incremental requests incremental solving.
	Incremental bool
}

// Build serialises the given circuits into an SMT-LIB specification: one
// function declaration per primary variable with its range constraints, one
// definition per gate, then the root assertion, the fixed-point assertions and
// a single division-by-zero guard.
func Build(factory *circuit.Factory, root circuit.Bool, fixedPoint []circuit.Bool, opts BuildOptions) *Specification {
	e := &emitter{
		factory: factory,
		refs:    make(map[circuit.Value]string),
		numFS:   make(map[int]string),
	}

	// Primary variable declarations and their range constraints.
	for _, v := range factory.Variables() {
		e.declare(v, opts)
	}

	// Root formula.
	e.assert(e.boolRef(root))

	// Reflexive-closure fixed points.
	for _, eq := range fixedPoint {
		e.assert(e.boolRef(eq))
	}

	// Division-by-zero guard.
	detector := circuit.DetectDivision(factory, append([]circuit.Bool{root}, fixedPoint...)...)
	if detector.HasDivision() {
		e.assert(fmt.Sprintf("(not %s)", e.boolRef(detector.DivisionByZero())))
	}

	logic := LogicInteger
	if factory.Domain() == circuit.Fuzzy {
		logic = LogicFuzzy
	}

	return &Specification{
		Logic:              logic,
		Body:               e.body.String(),
		NumFS:              e.numFS,
		NumVariables:       factory.NumVariables(),
		NumFunctionSymbols: factory.NumVariables() + e.defines,
		NumAssertions:      e.asserts,
		Incremental:        opts.Incremental,
	}
}

// BuildTrivial returns a specification for a problem decided during
// translation.
func BuildTrivial(factory *circuit.Factory, value bool, opts BuildOptions) *Specification {
	logic := LogicInteger
	if factory.Domain() == circuit.Fuzzy {
		logic = LogicFuzzy
	}

	return &Specification{
		Logic:        logic,
		NumFS:        make(map[int]string),
		Incremental:  opts.Incremental,
		Trivial:      true,
		TrivialValue: value,
	}
}

// emitter serialises a circuit DAG.  Every gate becomes a define-fun in
// dependency order, so shared subterms are emitted exactly once.
type emitter struct {
	factory *circuit.Factory
	body    strings.Builder
	refs    map[circuit.Value]string
	numFS   map[int]string
	asserts int
	defines int
}

func (e *emitter) sort() string {
	if e.factory.Domain() == circuit.Fuzzy {
		return "Real"
	}

	return "Int"
}

func (e *emitter) assert(expr string) {
	fmt.Fprintf(&e.body, "(assert %s)\n", expr)
	e.asserts++
}

// declare emits the function symbol of a primary variable together with its
// value constraints.
func (e *emitter) declare(v *circuit.NumVar, opts BuildOptions) {
	name := fmt.Sprintf("v%d", v.Label())
	e.refs[v] = name
	e.numFS[v.Label()] = name

	fmt.Fprintf(&e.body, "(declare-fun %s () %s)\n", name, e.sort())

	zero := e.literal(decimal.Zero)
	one := e.literal(decimal.NewFromInt(1))

	// Domain range.
	if e.factory.Domain() == circuit.Fuzzy {
		e.assert(fmt.Sprintf("(and (>= %s %s) (<= %s %s))", name, zero, name, one))
	} else {
		e.assert(fmt.Sprintf("(>= %s %s)", name, zero))

		if opts.MaxWeight != nil {
			e.assert(fmt.Sprintf("(<= %s %s)", name, e.literal(decimal.NewFromInt(*opts.MaxWeight))))
		}
	}

	// Value constraint.
	switch v.Constraint() {
	case circuit.NonZero:
		e.assert(fmt.Sprintf("(distinct %s %s)", name, zero))
	case circuit.IsZero:
		e.assert(fmt.Sprintf("(= %s %s)", name, zero))
	}

	// Finite value set.
	if allowed := v.Allowed(); len(allowed) > 0 {
		alts := make([]string, len(allowed))
		for i, c := range allowed {
			alts[i] = fmt.Sprintf("(= %s %s)", name, e.literal(c.Value()))
		}

		if len(alts) == 1 {
			e.assert(alts[0])
		} else {
			e.assert(fmt.Sprintf("(or %s)", strings.Join(alts, " ")))
		}
	}
}

// literal formats a numeric literal for the active sort.
func (e *emitter) literal(d decimal.Decimal) string {
	s := d.Abs().String()

	if e.factory.Domain() == circuit.Fuzzy && !strings.Contains(s, ".") {
		s += ".0"
	}

	if d.Sign() < 0 {
		return fmt.Sprintf("(- %s)", s)
	}

	return s
}

// define emits a function definition for a gate and returns its name.
func (e *emitter) define(v circuit.Value, sort, expr string) string {
	name := fmt.Sprintf("g%d", v.Label())
	e.refs[v] = name
	e.defines++
	fmt.Fprintf(&e.body, "(define-fun %s () %s %s)\n", name, sort, expr)

	return name
}

// boolRef returns the SMT expression denoting a boolean value, defining any
// gates it depends on first.
func (e *emitter) boolRef(b circuit.Bool) string {
	if ref, ok := e.refs[b]; ok {
		return ref
	}

	switch b := b.(type) {
	case *circuit.BoolConst:
		if b.Value() {
			return "true"
		}

		return "false"

	case *circuit.BoolVar:
		// Boolean atoms pair with the numeric variable of the same label.
		ref := fmt.Sprintf("(distinct v%d %s)", b.Label(), e.literal(decimal.Zero))
		e.refs[b] = ref

		return ref

	case *circuit.NotGate:
		return e.define(b, "Bool", fmt.Sprintf("(not %s)", e.boolRef(b.Input())))

	case *circuit.NaryGate:
		inputs := make([]string, len(b.Inputs()))
		for i, input := range b.Inputs() {
			inputs[i] = e.boolRef(input)
		}

		return e.define(b, "Bool", fmt.Sprintf("(%s %s)", b.Op(), strings.Join(inputs, " ")))

	case *circuit.BoolIte:
		return e.define(b, "Bool", fmt.Sprintf("(ite %s %s %s)",
			e.boolRef(b.Cond()), e.boolRef(b.Then()), e.boolRef(b.Else())))

	case *circuit.CmpGate:
		left, right := e.numRef(b.Left()), e.numRef(b.Right())

		var expr string
		if b.Op() == circuit.EQ {
			expr = fmt.Sprintf("(= %s %s)", left, right)
		} else {
			expr = fmt.Sprintf("(%s %s %s)", b.Op(), left, right)
		}

		return e.define(b, "Bool", expr)

	default:
		panic(fmt.Sprintf("unexpected boolean value %T", b))
	}
}

// numRef returns the SMT expression denoting a numeric value, defining any
// gates it depends on first.
func (e *emitter) numRef(v circuit.Num) string {
	if ref, ok := e.refs[v]; ok {
		return ref
	}

	switch v := v.(type) {
	case *circuit.NumConst:
		return e.literal(v.Value())

	case *circuit.NumVar:
		// Declared up front; reaching here means the variable escaped
		// allocation, which is a bug in the caller.
		panic(fmt.Sprintf("undeclared primary variable %d", v.Label()))

	case *circuit.BinaryValue:
		return e.numRef(v.Num())

	case *circuit.AritGate:
		inputs := make([]string, len(v.Inputs()))
		for i, input := range v.Inputs() {
			inputs[i] = e.numRef(input)
		}

		return e.define(v, e.sort(), fmt.Sprintf("(%s %s)", e.aritOp(v.Op()), strings.Join(inputs, " ")))

	case *circuit.ChoiceGate:
		left, right := e.numRef(v.Left()), e.numRef(v.Right())

		var expr string

		switch v.Op() {
		case circuit.MIN:
			expr = fmt.Sprintf("(ite (<= %s %s) %s %s)", left, right, left, right)
		case circuit.MAX:
			expr = fmt.Sprintf("(ite (>= %s %s) %s %s)", left, right, left, right)
		default:
			expr = fmt.Sprintf("(ite %s %s %s)", e.boolRef(v.Cond()), left, right)
		}

		return e.define(v, e.sort(), expr)

	case *circuit.UnaryGate:
		input := e.numRef(v.Input())

		var expr string

		switch v.Op() {
		case circuit.NEG:
			expr = fmt.Sprintf("(- %s)", input)
		case circuit.ABS:
			expr = fmt.Sprintf("(ite (< %s %s) (- %s) %s)", input, e.literal(decimal.Zero), input, input)
		default: // SGN
			expr = fmt.Sprintf("(ite (> %s %s) %s (ite (< %s %s) (- %s) %s))",
				input, e.literal(decimal.Zero), e.literal(decimal.NewFromInt(1)),
				input, e.literal(decimal.Zero), e.literal(decimal.NewFromInt(1)), e.literal(decimal.Zero))
		}

		return e.define(v, e.sort(), expr)

	default:
		panic(fmt.Sprintf("unexpected numeric value %T", v))
	}
}

// aritOp maps an arithmetic operator to its SMT name for the active sort.
func (e *emitter) aritOp(op circuit.AritOp) string {
	switch op {
	case circuit.DIV:
		if e.factory.Domain() == circuit.Fuzzy {
			return "/"
		}

		return "div"
	case circuit.MOD:
		return "mod"
	default:
		return op.String()
	}
}
